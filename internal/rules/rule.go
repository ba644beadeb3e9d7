package rules

import (
	"regexp"
	"strings"

	"github.com/gnolang/modernize/internal/pattern"
	"github.com/gnolang/modernize/internal/resolver"
	tt "github.com/gnolang/modernize/internal/types"
)

// Match is one occurrence of a rule's matcher in the text.
type Match struct {
	Start  int
	End    int
	Text   string
	Groups map[string]string
}

// Matcher finds all non-overlapping occurrences of a pattern, leftmost first.
type Matcher interface {
	FindAll(text string) []Match
	String() string
}

// Literal matches an exact substring.
type Literal string

func (l Literal) FindAll(text string) []Match {
	if l == "" {
		return nil
	}
	var matches []Match
	needle := string(l)
	for pos := 0; pos <= len(text)-len(needle); {
		i := strings.Index(text[pos:], needle)
		if i < 0 {
			break
		}
		start := pos + i
		matches = append(matches, Match{Start: start, End: start + len(needle), Text: needle})
		pos = start + len(needle)
	}
	return matches
}

func (l Literal) String() string {
	return "literal " + string(l)
}

// Regex matches a regular expression. Named groups are exposed as Match.Groups.
type Regex struct {
	Re *regexp.Regexp
}

// MustRegex compiles expr into a Regex matcher.
func MustRegex(expr string) Regex {
	return Regex{Re: regexp.MustCompile(expr)}
}

func (r Regex) FindAll(text string) []Match {
	locs := r.Re.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	names := r.Re.SubexpNames()
	matches := make([]Match, 0, len(locs))
	for _, loc := range locs {
		m := Match{Start: loc[0], End: loc[1], Text: text[loc[0]:loc[1]]}
		for i, name := range names {
			if name == "" || loc[2*i] < 0 {
				continue
			}
			if m.Groups == nil {
				m.Groups = make(map[string]string)
			}
			m.Groups[name] = text[loc[2*i]:loc[2*i+1]]
		}
		matches = append(matches, m)
	}
	return matches
}

func (r Regex) String() string {
	return "regex " + r.Re.String()
}

// Pattern matches a hole pattern, see package pattern.
type Pattern struct {
	Compiled *pattern.Compiled
}

// MustPattern compiles a hole pattern into a Pattern matcher.
func MustPattern(source string) Pattern {
	return Pattern{Compiled: pattern.MustCompile(source)}
}

func (p Pattern) FindAll(text string) []Match {
	return Regex{Re: p.Compiled.Regexp}.FindAll(text)
}

func (p Pattern) String() string {
	return "pattern " + p.Compiled.Source
}

// Replacer produces the replacement text for a match. Context-sensitive
// replacers also report the intent they resolved.
type Replacer interface {
	Replace(m Match, ctx resolver.Context) (string, tt.Intent)
}

// Template expands a rewrite template with the match's named groups.
type Template struct {
	T *pattern.Template
}

// MustTemplate parses a rewrite template.
func MustTemplate(source string) Template {
	return Template{T: pattern.MustParseTemplate(source)}
}

func (t Template) Replace(m Match, _ resolver.Context) (string, tt.Intent) {
	return t.T.Expand(m.Groups), tt.IntentDefault
}

// Func adapts a function to the Replacer interface.
type Func func(m Match, ctx resolver.Context) (string, tt.Intent)

func (f Func) Replace(m Match, ctx resolver.Context) (string, tt.Intent) {
	return f(m, ctx)
}

// Guard decides whether a match should be rewritten. Guards see the same
// context the replacer would.
type Guard func(m Match, ctx resolver.Context) bool

// Rule is one declarative legacy-to-modern rewrite.
//
// A rule must be a pure function of the text it is given: it may not keep state
// between matches or between calls.
type Rule struct {
	ID          string
	Category    tt.Category
	Order       int
	Description string
	Matcher     Matcher
	Replace     Replacer
	Guard       Guard

	// ContextSensitive marks rules whose replacement depends on the text
	// around the match rather than the match alone.
	ContextSensitive bool
}

// Accepts reports whether the rule's guard lets the match through.
func (r Rule) Accepts(m Match, ctx resolver.Context) bool {
	return r.Guard == nil || r.Guard(m, ctx)
}
