/*
Package pattern implements the Comby-style hole language used to write rewrite
rules declaratively.

# Holes

A pattern is literal text with named holes. Each hole captures part of the
input and can be referenced from the rewrite template.

 1. Short form: :[name]
 2. Long form: :[[name]]
 3. Typed form: :[name:type]

Supported types:

  - any (default): text up to the next literal, never crossing '{', '}', ';' or a newline
  - identifier: [A-Za-z_$][A-Za-z0-9_$]*
  - number: a run of decimal digits
  - string: a single, double or backtick quoted literal
  - ws: a possibly empty run of whitespace

A backslash escapes the next byte, so `key\:[0]` is the literal text "key:[0]".

# Matching

Literal whitespace matches any non-empty whitespace run. A pattern that begins
or ends with a word character is anchored on a word boundary.

	c := pattern.MustCompile(":[recv:identifier].Completion.create(")
	t := pattern.MustParseTemplate(":[recv].chat.completions.create(")

Compiled patterns are plain *regexp.Regexp values with one named group per hole,
so they are safe for concurrent use.
*/
package pattern
