package pattern

import (
	"fmt"
	"strings"
)

// Template is a parsed rewrite template. Holes are filled from captures.
type Template struct {
	source string
	nodes  []Node
}

// ParseTemplate parses a rewrite template such as `:[recv].chat.completions.create(`.
func ParseTemplate(source string) (*Template, error) {
	nodes, err := ParseString(source)
	if err != nil {
		return nil, fmt.Errorf("parse template %q: %w", source, err)
	}
	return &Template{source: source, nodes: nodes}, nil
}

// MustParseTemplate is like ParseTemplate but panics on error.
func MustParseTemplate(source string) *Template {
	t, err := ParseTemplate(source)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Template) String() string {
	return t.source
}

// Holes returns the hole names referenced by the template, in order.
func (t *Template) Holes() []string {
	var names []string
	for _, node := range t.nodes {
		if h, ok := node.(HoleNode); ok {
			names = append(names, h.Name)
		}
	}
	return names
}

// Expand replaces holes with the corresponding captures.
// A hole with no capture is kept as written.
func (t *Template) Expand(captures map[string]string) string {
	var result strings.Builder
	for _, node := range t.nodes {
		switch n := node.(type) {
		case LiteralNode:
			result.WriteString(n.Value)
		case HoleNode:
			if value, ok := captures[n.Name]; ok {
				result.WriteString(value)
			} else {
				fmt.Fprintf(&result, ":[%s]", n.Name)
			}
		}
	}
	return result.String()
}
