// Package directive parses `modernize:ignore` comments that keep rules away
// from parts of a document.
package directive

import "strings"

const (
	ignorePrefix     = "modernize:ignore"
	ignoreFilePrefix = "modernize:ignore-file"
)

var commentMarkers = []string{"//", "#", "/*", "*", "<!--", "--"}

// Set holds the ignore scopes of one document.
type Set struct {
	scopes []scope
}

// scope is a byte range in the document where the listed rules (or all rules,
// when the list is empty) are suppressed.
type scope struct {
	rules map[string]struct{}
	start int
	end   int
}

// Parse scans text for directives. Text without directives yields an empty set.
func Parse(text string) *Set {
	set := &Set{}
	if !strings.Contains(text, ignorePrefix) {
		return set
	}

	lines := splitLines(text)
	leading := true
	for i, ln := range lines {
		body := text[ln.start:ln.end]
		trimmed := strings.TrimSpace(body)
		standalone := isComment(trimmed)

		if idx := strings.Index(body, ignoreFilePrefix); idx >= 0 && leading && standalone {
			set.scopes = append(set.scopes, scope{
				rules: parseRuleNames(body[idx+len(ignoreFilePrefix):]),
				start: 0,
				end:   len(text),
			})
			continue
		}
		if trimmed != "" && !standalone {
			leading = false
		}

		idx := strings.Index(body, ignorePrefix)
		if idx < 0 || strings.HasPrefix(body[idx:], ignoreFilePrefix) {
			continue
		}

		sc := scope{
			rules: parseRuleNames(body[idx+len(ignorePrefix):]),
			start: ln.start,
			end:   ln.end,
		}
		// a standalone directive also covers the line below it
		if standalone && i+1 < len(lines) {
			sc.end = lines[i+1].end
		}
		set.scopes = append(set.scopes, sc)
	}
	return set
}

// Empty reports whether the set has no scopes.
func (s *Set) Empty() bool {
	return s == nil || len(s.scopes) == 0
}

// Suppressed reports whether rule must not rewrite a match starting at offset.
func (s *Set) Suppressed(rule string, offset int) bool {
	if s == nil {
		return false
	}
	for _, sc := range s.scopes {
		if offset < sc.start || offset > sc.end {
			continue
		}
		if len(sc.rules) == 0 {
			return true
		}
		if _, ok := sc.rules[rule]; ok {
			return true
		}
	}
	return false
}

type line struct {
	start int
	end   int // exclusive, not counting the newline
}

func splitLines(text string) []line {
	var lines []line
	start := 0
	for {
		i := strings.IndexByte(text[start:], '\n')
		if i < 0 {
			lines = append(lines, line{start: start, end: len(text)})
			return lines
		}
		lines = append(lines, line{start: start, end: start + i})
		start += i + 1
	}
}

func isComment(trimmed string) bool {
	for _, m := range commentMarkers {
		if strings.HasPrefix(trimmed, m) {
			return true
		}
	}
	return false
}

// parseRuleNames parses the optional `:rule-a,rule-b` suffix of a directive.
// No suffix means every rule.
func parseRuleNames(rest string) map[string]struct{} {
	rules := make(map[string]struct{})
	if !strings.HasPrefix(rest, ":") {
		return rules
	}
	rest = rest[1:]
	if i := strings.IndexAny(rest, " \t"); i >= 0 {
		rest = rest[:i]
	}
	for _, suffix := range []string{"*/", "-->"} {
		rest = strings.TrimSuffix(rest, suffix)
	}
	for _, name := range strings.Split(rest, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			rules[name] = struct{}{}
		}
	}
	return rules
}
