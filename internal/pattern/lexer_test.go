package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLex(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		expected []Token
		wantErr  bool
	}{
		{
			name:  "plain literal",
			input: "openai.Completion.create(",
			expected: []Token{
				{Type: TokenLiteral, Value: "openai.Completion.create(", Line: 1, Col: 1},
				{Type: TokenEOF, Line: 1, Col: 26},
			},
		},
		{
			name:  "short hole",
			input: ":[recv].create(",
			expected: []Token{
				{Type: TokenHole, Value: "recv", Line: 1, Col: 1},
				{Type: TokenLiteral, Value: ".create(", Line: 1, Col: 8},
				{Type: TokenEOF, Line: 1, Col: 16},
			},
		},
		{
			name:  "long hole with type",
			input: "x[:[[idx:number]]]",
			expected: []Token{
				{Type: TokenLiteral, Value: "x[", Line: 1, Col: 1},
				{Type: TokenHole, Value: "idx", Kind: "number", Line: 1, Col: 3},
				{Type: TokenLiteral, Value: "]", Line: 1, Col: 18},
				{Type: TokenEOF, Line: 1, Col: 19},
			},
		},
		{
			name:  "escaped colon",
			input: `key\:[0]`,
			expected: []Token{
				{Type: TokenLiteral, Value: "key:[0]", Line: 1, Col: 1},
				{Type: TokenEOF, Line: 1, Col: 9},
			},
		},
		{
			name:  "multiline literal keeps start position",
			input: "a\n:[b]",
			expected: []Token{
				{Type: TokenLiteral, Value: "a\n", Line: 1, Col: 1},
				{Type: TokenHole, Value: "b", Line: 2, Col: 1},
				{Type: TokenEOF, Line: 2, Col: 5},
			},
		},
		{
			name:    "unterminated hole",
			input:   ":[name",
			wantErr: true,
		},
		{
			name:    "hole name starts with digit",
			input:   ":[1abc]",
			wantErr: true,
		},
		{
			name:    "missing type after colon",
			input:   ":[name:]",
			wantErr: true,
		},
		{
			name:    "trailing escape",
			input:   `abc\`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tokens, err := Lex(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, tokens)
		})
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	nodes, err := ParseString(":[recv:identifier].choices[:[idx:number]].text")
	require.NoError(t, err)
	assert.Equal(t, []Node{
		HoleNode{Name: "recv", Type: HoleIdentifier},
		LiteralNode{Value: ".choices["},
		HoleNode{Name: "idx", Type: HoleNumber},
		LiteralNode{Value: "].text"},
	}, nodes)

	_, err = ParseString(":[x:block]")
	assert.Error(t, err)
}

func TestNodeString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, `Literal("a")`, LiteralNode{Value: "a"}.String())
	assert.Equal(t, `Hole("x")`, HoleNode{Name: "x"}.String())
	assert.Equal(t, `Hole("x", string)`, HoleNode{Name: "x", Type: HoleString}.String())
}
