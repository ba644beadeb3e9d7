package pattern

import "fmt"

// HoleType defines what a hole is allowed to capture.
type HoleType int

const (
	HoleAny        HoleType = iota // :[name]
	HoleIdentifier                 // :[name:identifier]
	HoleNumber                     // :[name:number]
	HoleString                     // :[name:string]
	HoleWhitespace                 // :[name:ws]
)

func (h HoleType) String() string {
	switch h {
	case HoleAny:
		return "any"
	case HoleIdentifier:
		return "identifier"
	case HoleNumber:
		return "number"
	case HoleString:
		return "string"
	case HoleWhitespace:
		return "ws"
	default:
		return "unknown"
	}
}

var holeTypes = map[string]HoleType{
	"":           HoleAny,
	"any":        HoleAny,
	"identifier": HoleIdentifier,
	"id":         HoleIdentifier,
	"number":     HoleNumber,
	"string":     HoleString,
	"ws":         HoleWhitespace,
	"whitespace": HoleWhitespace,
}

// Node represents a parsed pattern element that can be either a literal or a hole
type Node interface {
	String() string
}

// LiteralNode represents a literal string value in the pattern
type LiteralNode struct {
	Value string
}

func (l LiteralNode) String() string {
	return fmt.Sprintf("Literal(%q)", l.Value)
}

// HoleNode represents a named capture in the pattern
type HoleNode struct {
	Name string
	Type HoleType
}

func (h HoleNode) String() string {
	if h.Type == HoleAny {
		return fmt.Sprintf("Hole(%q)", h.Name)
	}
	return fmt.Sprintf("Hole(%q, %s)", h.Name, h.Type)
}

// Parse converts a sequence of tokens into a slice of Nodes.
// Returns an error for an unknown hole type or an unexpected token.
func Parse(tokens []Token) ([]Node, error) {
	var nodes []Node
	for _, token := range tokens {
		switch token.Type {
		case TokenEOF:
			return nodes, nil
		case TokenLiteral:
			nodes = append(nodes, LiteralNode{Value: token.Value})
		case TokenHole:
			typ, ok := holeTypes[token.Kind]
			if !ok {
				return nil, fmt.Errorf("line %d col %d: unknown hole type %q", token.Line, token.Col, token.Kind)
			}
			nodes = append(nodes, HoleNode{Name: token.Value, Type: typ})
		default:
			return nil, fmt.Errorf("unexpected token type: %v", token.Type)
		}
	}
	return nodes, nil
}

// ParseString lexes and parses a pattern in one step.
func ParseString(input string) ([]Node, error) {
	tokens, err := Lex(input)
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}
