package types

import (
	"go/token"
	"strings"
	"unicode/utf8"
)

// Intent is the usage intent classified from the text around a match.
type Intent int

const (
	IntentDefault Intent = iota
	IntentReasoning
	IntentRetrieval
	IntentSearch
)

func (i Intent) String() string {
	switch i {
	case IntentDefault:
		return "default"
	case IntentReasoning:
		return "reasoning"
	case IntentRetrieval:
		return "retrieval"
	case IntentSearch:
		return "search"
	default:
		return "unknown"
	}
}

// Category groups rules into families.
type Category string

const (
	CategoryCallShape  Category = "call-shape"
	CategoryAccessPath Category = "access-path"
	CategoryParameter  Category = "parameter"
	CategoryModel      Category = "model"
	CategoryCustom     Category = "custom"
)

// Rewrite records a single replacement made by a rule.
//
// Start and End are positions in the text the rule operated on, which is the
// output of every rule that ran before it.
type Rewrite struct {
	Rule        string
	Category    Category
	Filename    string
	Original    string
	Replacement string
	Intent      Intent `json:",omitempty"`
	Start       token.Position
	End         token.Position
}

// Result is the outcome of a single normalization call.
type Result struct {
	Text    string
	Applied []Rewrite
}

// Changed reports whether any rule rewrote the input.
func (r Result) Changed() bool {
	return len(r.Applied) > 0
}

// PositionAt converts a byte offset in text to a 1-based line/column position.
// Columns count runes, not bytes.
func PositionAt(text string, offset int) token.Position {
	if offset > len(text) {
		offset = len(text)
	}
	if offset < 0 {
		offset = 0
	}
	prefix := text[:offset]
	line := strings.Count(prefix, "\n") + 1
	lineStart := strings.LastIndexByte(prefix, '\n') + 1
	return token.Position{
		Offset: offset,
		Line:   line,
		Column: utf8.RuneCountInString(prefix[lineStart:]) + 1,
	}
}
