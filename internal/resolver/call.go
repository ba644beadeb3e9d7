package resolver

import "strings"

type opener struct {
	char   byte
	offset int
}

// EnclosingCall returns the dotted name of the innermost call whose argument
// list contains pos, e.g. "client.chat.completions.create". Object and array
// literals between the call and pos are looked through. Brackets inside string
// literals are ignored. Returns "" when pos is not inside a named call.
func EnclosingCall(text string, pos int) string {
	if pos > len(text) {
		pos = len(text)
	}
	stack := openBrackets(text[:pos])
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].char != '(' {
			continue
		}
		if name := callName(text, stack[i].offset); name != "" {
			return name
		}
	}
	return ""
}

// InString reports whether pos lies inside a string literal. Markdown code
// fences are not literals, so code inside them is scanned as code.
func InString(text string, pos int) bool {
	if pos > len(text) {
		pos = len(text)
	}
	for i := 0; i < pos; i++ {
		switch text[i] {
		case '"', '\'', '`':
			end, ok := literalEnd(text, i)
			if !ok {
				i = end
				continue
			}
			if pos < end || (pos == end && end < len(text) && text[end] == text[i]) {
				return true
			}
			i = end
		}
	}
	return false
}

// EnclosingGroup returns the text of the innermost parenthesized or braced
// group containing pos, brackets included. The group runs to the end of text
// when it is not closed. ok is false at top level.
func EnclosingGroup(text string, pos int) (group string, ok bool) {
	if pos > len(text) {
		pos = len(text)
	}
	stack := openBrackets(text[:pos])
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].char == '[' {
			continue
		}
		start := stack[i].offset
		return text[start:closingOffset(text, start)], true
	}
	return "", false
}

// closingOffset returns the offset just past the bracket that closes the one
// at start, or len(text).
func closingOffset(text string, start int) int {
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '"', '\'', '`':
			i, _ = literalEnd(text, i)
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(text)
}

// openBrackets returns the brackets still open at the end of text.
func openBrackets(text string) []opener {
	var stack []opener
	for i := 0; i < len(text); i++ {
		switch c := text[i]; c {
		case '"', '\'', '`':
			i, _ = literalEnd(text, i)
		case '(', '[', '{':
			stack = append(stack, opener{char: c, offset: i})
		case ')', ']', '}':
			if n := len(stack); n > 0 && stack[n-1].char == matching(c) {
				stack = stack[:n-1]
			}
		}
	}
	return stack
}

// literalEnd returns the offset of the last byte of the literal starting at
// i. Triple-quoted strings run to the matching triple quote. A run of three or
// more backticks is a code fence; ok is false and end is the last backtick.
func literalEnd(text string, i int) (end int, ok bool) {
	quote := text[i]
	triple := strings.Repeat(string(quote), 3)
	if !strings.HasPrefix(text[i:], triple) {
		return skipString(text, i), true
	}
	if quote == '`' {
		end = i
		for end+1 < len(text) && text[end+1] == '`' {
			end++
		}
		return end, false
	}
	if j := strings.Index(text[i+3:], triple); j >= 0 {
		return i + 3 + j + 2, true
	}
	return len(text), true
}

// skipString returns the offset of the closing quote of the literal starting
// at i, or the last offset scanned if the literal is not closed.
func skipString(text string, i int) int {
	quote := text[i]
	for j := i + 1; j < len(text); j++ {
		switch text[j] {
		case '\\':
			j++
		case quote:
			return j
		case '\n':
			if quote != '`' {
				return j
			}
		}
	}
	return len(text)
}

func matching(c byte) byte {
	switch c {
	case ')':
		return '('
	case ']':
		return '['
	case '}':
		return '{'
	}
	return 0
}

// callName reads the dotted identifier chain that ends right before the
// parenthesis at offset.
func callName(text string, offset int) string {
	end := offset
	for end > 0 && (text[end-1] == ' ' || text[end-1] == '\t') {
		end--
	}
	start := end
	for start > 0 && isNameChar(text[start-1]) {
		start--
	}
	return strings.Trim(text[start:end], ".")
}

func isNameChar(c byte) bool {
	return c == '.' || c == '_' || c == '$' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
