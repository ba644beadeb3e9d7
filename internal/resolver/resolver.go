// Package resolver inspects the text around a match and classifies the usage
// intent that context-sensitive rules use to pick a replacement.
package resolver

import (
	"strings"
	"unicode/utf8"

	tt "github.com/gnolang/modernize/internal/types"
)

// Signal is a set of keywords that indicate one intent.
type Signal struct {
	Intent   tt.Intent
	Keywords []string
}

// signals are checked in order; the first set with a keyword present in the
// window wins. Keywords are lowercase.
var signals = []Signal{
	{
		Intent:   tt.IntentSearch,
		Keywords: []string{"search", "ada-doc", "query", "cheap", "low-cost", "low cost", "cost-sensitive", "budget"},
	},
	{
		Intent:   tt.IntentReasoning,
		Keywords: []string{"complex", "step by step", "step-by-step", "solve", "math", "reasoning", "reason", "proof", "prove", "analyze", "logic"},
	},
	{
		Intent:   tt.IntentRetrieval,
		Keywords: []string{"doc", "document", "embedding", "high-quality", "high quality", "retriev", "semantic"},
	},
}

// Signals returns a copy of the keyword sets in priority order.
func Signals() []Signal {
	out := make([]Signal, len(signals))
	for i, s := range signals {
		out[i] = Signal{Intent: s.Intent, Keywords: append([]string(nil), s.Keywords...)}
	}
	return out
}

// Context is a read-only view of a match inside the text a rule is scanning.
type Context struct {
	Text   string
	Start  int
	End    int
	Radius int
}

// Window returns the text the classifier looks at.
func (c Context) Window() string {
	return Window(c.Text, c.Start, c.End, c.Radius)
}

// Classify classifies the window, considering only the allowed intents.
func (c Context) Classify(allowed ...tt.Intent) tt.Intent {
	return Classify(c.Window(), allowed...)
}

// EnclosingCall returns the name of the call whose argument list contains the match.
func (c Context) EnclosingCall() string {
	return EnclosingCall(c.Text, c.Start)
}

// InString reports whether the match starts inside a string literal.
func (c Context) InString() bool {
	return InString(c.Text, c.Start)
}

// EnclosingGroup returns the argument list or object literal around the match.
func (c Context) EnclosingGroup() (string, bool) {
	return EnclosingGroup(c.Text, c.Start)
}

// Window returns the text within radius bytes of [start, end), widened to rune
// boundaries. A radius <= 0 selects the whole text.
func Window(text string, start, end, radius int) string {
	if radius <= 0 {
		return text
	}
	lo := max(start-radius, 0)
	hi := min(end+radius, len(text))
	for lo > 0 && !utf8.RuneStart(text[lo]) {
		lo--
	}
	for hi < len(text) && !utf8.RuneStart(text[hi]) {
		hi++
	}
	return text[lo:hi]
}

// Classify returns the first intent among the signals whose keywords appear in
// window. Intents not listed in allowed are skipped; with no allowed list every
// intent is considered. No signal resolves to IntentDefault.
func Classify(window string, allowed ...tt.Intent) tt.Intent {
	lower := strings.ToLower(window)
	for _, s := range signals {
		if len(allowed) > 0 && !contains(allowed, s.Intent) {
			continue
		}
		for _, kw := range s.Keywords {
			if strings.Contains(lower, kw) {
				return s.Intent
			}
		}
	}
	return tt.IntentDefault
}

func contains(intents []tt.Intent, i tt.Intent) bool {
	for _, x := range intents {
		if x == i {
			return true
		}
	}
	return false
}
