package pattern

import (
	"fmt"
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

var holeRegex = map[HoleType]string{
	HoleAny:        `[^{};\n]+?`,
	HoleIdentifier: `[A-Za-z_$][A-Za-z0-9_$]*`,
	HoleNumber:     `[0-9]+`,
	HoleString:     `"(?:[^"\\\n]|\\.)*"|'(?:[^'\\\n]|\\.)*'|` + "`[^`]*`",
	HoleWhitespace: `\s*`,
}

// Compiled is a hole pattern translated to a regular expression.
type Compiled struct {
	Source string
	Regexp *regexp.Regexp
	Holes  []string
}

// Compile translates a hole pattern into a regular expression with one named
// group per hole. Whitespace in literals matches any non-empty whitespace run.
// Patterns that start or end on a word character are anchored on a word
// boundary, so `max_tokens` never matches inside `max_tokens_limit`.
func Compile(source string) (*Compiled, error) {
	nodes, err := ParseString(source)
	if err != nil {
		return nil, fmt.Errorf("parse pattern %q: %w", source, err)
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("pattern %q is empty", source)
	}

	var sb strings.Builder
	var holes []string
	seen := make(map[string]bool)

	if touchesWord(nodes[0], true) {
		sb.WriteString(`\b`)
	}
	for i, node := range nodes {
		switch n := node.(type) {
		case LiteralNode:
			sb.WriteString(literalRegex(n.Value))
		case HoleNode:
			if seen[n.Name] {
				return nil, fmt.Errorf("pattern %q: hole %q is used more than once", source, n.Name)
			}
			seen[n.Name] = true
			holes = append(holes, n.Name)

			expr := holeRegex[n.Type]
			if n.Type == HoleAny && i == len(nodes)-1 {
				// a trailing hole has no delimiter to stop at, so take the rest of the line
				expr = `[^{};\n]+`
			}
			fmt.Fprintf(&sb, `(?P<%s>%s)`, n.Name, expr)
		}
	}
	if touchesWord(nodes[len(nodes)-1], false) {
		sb.WriteString(`\b`)
	}

	re, err := regexp.Compile(sb.String())
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", source, err)
	}
	return &Compiled{Source: source, Regexp: re, Holes: holes}, nil
}

// MustCompile is like Compile but panics on error. Use it for patterns known
// at build time.
func MustCompile(source string) *Compiled {
	c, err := Compile(source)
	if err != nil {
		panic(err)
	}
	return c
}

func literalRegex(value string) string {
	parts := whitespaceRegex.Split(value, -1)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return strings.Join(parts, `\s+`)
}

// touchesWord reports whether the node begins (head) or ends (!head)
// with a regexp word character.
func touchesWord(node Node, head bool) bool {
	switch n := node.(type) {
	case HoleNode:
		return n.Type == HoleIdentifier || n.Type == HoleNumber
	case LiteralNode:
		if n.Value == "" {
			return false
		}
		c := n.Value[len(n.Value)-1]
		if head {
			c = n.Value[0]
		}
		return isIdentifierChar(c)
	}
	return false
}
