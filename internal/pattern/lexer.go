package pattern

import (
	"fmt"
	"strings"
)

// TokenType defines the type of a token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenLiteral
	TokenHole
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenLiteral:
		return "Literal"
	case TokenHole:
		return "Hole"
	default:
		return "Unknown"
	}
}

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value string
	// Kind is the raw hole type annotation (`:[name:kind]`). Only set on holes.
	Kind string
	Line int
	Col  int
}

// Lex performs lexical analysis on the input string
// and returns a sequence of tokens.
//
// Holes may be written in the short form `:[name]`, the long form `:[[name]]`,
// or with a type annotation `:[name:identifier]`. A backslash escapes the next byte.
func Lex(input string) ([]Token, error) {
	var tokens []Token
	var literal strings.Builder

	line, col := 1, 1
	litLine, litCol := 1, 1
	i := 0

	flushLiteral := func() {
		if literal.Len() > 0 {
			tokens = append(tokens, Token{
				Type:  TokenLiteral,
				Value: literal.String(),
				Line:  litLine,
				Col:   litCol,
			})
			literal.Reset()
		}
	}

	advance := func(c byte) {
		if c == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}

	for i < len(input) {
		c := input[i]

		if literal.Len() == 0 {
			litLine, litCol = line, col
		}

		if c == '\\' {
			if i+1 >= len(input) {
				return nil, fmt.Errorf("line %d col %d: '\\' escape is at the end of input", line, col)
			}
			next := input[i+1]
			literal.WriteByte(next)
			advance(c)
			advance(next)
			i += 2
			continue
		}

		if c == ':' && i+1 < len(input) && input[i+1] == '[' {
			flushLiteral()
			startLine, startCol := line, col

			long := i+2 < len(input) && input[i+2] == '['
			open := 2
			if long {
				open = 3
			}
			i += open
			col += open

			for i < len(input) && isWhitespace(input[i]) {
				advance(input[i])
				i++
			}
			if i >= len(input) {
				return nil, fmt.Errorf("line %d col %d: hole is not terminated", line, col)
			}
			if !isIdentifierStart(input[i]) {
				return nil, fmt.Errorf("line %d col %d: hole name must start with alphabet or '_'", line, col)
			}

			name := readIdentifier(input, &i)
			col += len(name)

			kind := ""
			if i < len(input) && input[i] == ':' {
				i++
				col++
				if i >= len(input) || !isIdentifierStart(input[i]) {
					return nil, fmt.Errorf("line %d col %d: hole type is missing after ':'", line, col)
				}
				kind = readIdentifier(input, &i)
				col += len(kind)
			}

			for i < len(input) && isWhitespace(input[i]) {
				advance(input[i])
				i++
			}

			closing := "]"
			if long {
				closing = "]]"
			}
			if !strings.HasPrefix(input[i:], closing) {
				return nil, fmt.Errorf("line %d col %d: hole termination %q is missing", line, col, closing)
			}
			i += len(closing)
			col += len(closing)

			tokens = append(tokens, Token{
				Type:  TokenHole,
				Value: name,
				Kind:  kind,
				Line:  startLine,
				Col:   startCol,
			})
			continue
		}

		literal.WriteByte(c)
		advance(c)
		i++
	}

	flushLiteral()

	tokens = append(tokens, Token{
		Type: TokenEOF,
		Line: line,
		Col:  col,
	})

	return tokens, nil
}

func readIdentifier(input string, i *int) string {
	start := *i
	for *i < len(input) && isIdentifierChar(input[*i]) {
		*i++
	}
	return input[start:*i]
}

func isIdentifierStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isIdentifierChar(c byte) bool {
	return isIdentifierStart(c) || isDigit(c)
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
