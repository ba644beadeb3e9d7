package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/modernize/internal/resolver"
	tt "github.com/gnolang/modernize/internal/types"
)

func TestDefaultCatalogOrder(t *testing.T) {
	t.Parallel()
	c, err := DefaultCatalog(ModelSet{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"completion-create-call",
		"chat-completion-create-call",
		"embedding-create-call",
		"create-completion-call",
		"create-embedding-call",
		"completions-endpoint-call",
		"unwrap-axios-data",
		"choice-text-dot-access",
		"choice-text-index-access",
		"embedding-index-access",
		"max-tokens-param",
		"engine-param",
		"prompt-to-messages",
		"general-model",
		"low-cost-model",
		"embedding-model",
		"search-embedding-model",
	}, c.IDs())
	assert.Equal(t, 17, c.Len())

	// categories never interleave
	var seen []tt.Category
	for _, r := range c.Rules() {
		if len(seen) == 0 || seen[len(seen)-1] != r.Category {
			seen = append(seen, r.Category)
		}
	}
	assert.Equal(t, []tt.Category{
		tt.CategoryCallShape, tt.CategoryAccessPath, tt.CategoryParameter, tt.CategoryModel,
	}, seen)
}

func TestCatalogValidation(t *testing.T) {
	t.Parallel()
	ok := Rule{ID: "a", Matcher: Literal("x"), Replace: MustTemplate("y")}

	tests := []struct {
		name  string
		rules []Rule
		err   error
	}{
		{"empty id", []Rule{{Matcher: Literal("x"), Replace: MustTemplate("y")}}, ErrEmptyID},
		{"duplicate", []Rule{ok, ok}, ErrDuplicateRule},
		{"nil matcher", []Rule{{ID: "b", Replace: MustTemplate("y")}}, ErrNilMatcher},
		{"nil replacer", []Rule{{ID: "b", Matcher: Literal("x")}}, ErrNilReplacer},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewCatalog(tc.rules...)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestCatalogStableOrderAndLookup(t *testing.T) {
	t.Parallel()
	c, err := NewCatalog(
		Rule{ID: "late", Order: 20, Matcher: Literal("a"), Replace: MustTemplate("b")},
		Rule{ID: "first", Order: 10, Matcher: Literal("a"), Replace: MustTemplate("b")},
		Rule{ID: "second", Order: 10, Matcher: Literal("a"), Replace: MustTemplate("b")},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "late"}, c.IDs())

	r, ok := c.Lookup("late")
	require.True(t, ok)
	assert.Equal(t, 20, r.Order)
	_, ok = c.Lookup("missing")
	assert.False(t, ok)

	// Rules returns a copy
	rs := c.Rules()
	rs[0].ID = "mutated"
	assert.Equal(t, "first", c.IDs()[0])

	extended, err := c.With(Rule{ID: "early", Order: 1, Matcher: Literal("a"), Replace: MustTemplate("b")})
	require.NoError(t, err)
	assert.Equal(t, []string{"early", "first", "second", "late"}, extended.IDs())
	assert.Equal(t, 3, c.Len())

	_, err = c.With(Rule{ID: "first", Matcher: Literal("a"), Replace: MustTemplate("b")})
	assert.ErrorIs(t, err, ErrDuplicateRule)
}

func TestMatchers(t *testing.T) {
	t.Parallel()

	lit := Literal(".data.choices[").FindAll("a.data.choices[0] b.data.choices[1]")
	require.Len(t, lit, 2)
	assert.Equal(t, 1, lit[0].Start)
	assert.Equal(t, 15, lit[0].End)
	assert.Empty(t, Literal("").FindAll("abc"))
	assert.Empty(t, Literal("zz").FindAll("z"))

	re := MustRegex(`(?P<k>\w+)=(?P<v>\d+)?`).FindAll("a=1 b=")
	require.Len(t, re, 2)
	assert.Equal(t, map[string]string{"k": "a", "v": "1"}, re[0].Groups)
	assert.Equal(t, map[string]string{"k": "b"}, re[1].Groups)

	p := MustPattern(":[recv:identifier].Completion.create(").FindAll("x = openai.Completion.create(")
	require.Len(t, p, 1)
	assert.Equal(t, "openai", p[0].Groups["recv"])
	assert.Equal(t, "openai.Completion.create(", p[0].Text)
	assert.Empty(t, MustPattern(":[recv:identifier].Completion.create(").FindAll("openai.ChatCompletion.create("))
}

func TestStructuralRuleBoundaries(t *testing.T) {
	t.Parallel()
	c, err := DefaultCatalog(ModelSet{})
	require.NoError(t, err)

	tests := []struct {
		rule  string
		input string
		match bool
	}{
		{"completion-create-call", "openai.Completion.create(", true},
		{"completion-create-call", "openai.ChatCompletion.create(", false},
		{"completion-create-call", "openai.Completion.acreate(", false},
		{"create-completion-call", "openai.createChatCompletion(", true},
		{"create-completion-call", "openai.recreateCompletion(", false},
		{"max-tokens-param", "max_tokens=5", true},
		{"max-tokens-param", "max_tokens_limit=5", false},
		{"max-tokens-param", "max_completion_tokens=5", false},
		{"max-tokens-param", `note = "set max_tokens=5"`, false},
		{"engine-param", `openai.Completion.create(engine="x")`, true},
		{"engine-param", "create(engine=ENGINE, prompt=p)", true},
		{"engine-param", `{ "engine": "x", "max_tokens": 5 }`, true},
		{"engine-param", `engine="x"`, false},
		{"engine-param", `pd.read_parquet(path, engine="pyarrow")`, false},
		{"engine-param", `create(prompt=p, note="engine='x'")`, false},
		{"engine-param", "engine: it could", false},
		{"engine-param", "engine=create_engine(url)", false},
		{"engine-param", `engine=="x"`, false},
		{"engine-param", "search_engine='x'", false},
		{"unwrap-axios-data", "r.data.choices[0].text", true},
		{"unwrap-axios-data", "r.data.choices[0].text_offset", false},
		{"unwrap-axios-data", "r.data.choices[0].message.content", false},
		{"unwrap-axios-data", "api = new OpenAIApi(c)\nr.data.choices[0].message.content", true},
		{"unwrap-axios-data", `log("r.data.choices[0].text")`, false},
		{"prompt-to-messages", `openai.chat.completions.create(prompt="hi")`, true},
		{"prompt-to-messages", `openai.chat.completions.create(messages=[{"content": "the prompt: draft, then"}])`, false},
		{"choice-text-dot-access", "r.choices[0].text", true},
		{"choice-text-dot-access", "r.choices[0].text_offset", false},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.rule+"/"+tc.input, func(t *testing.T) {
			t.Parallel()
			r, ok := c.Lookup(tc.rule)
			require.True(t, ok)

			accepted := false
			for _, m := range r.Matcher.FindAll(tc.input) {
				ctx := resolver.Context{Text: tc.input, Start: m.Start, End: m.End}
				if r.Accepts(m, ctx) {
					accepted = true
				}
			}
			assert.Equal(t, tc.match, accepted)
		})
	}
}

func TestEndsArgument(t *testing.T) {
	t.Parallel()
	assert.True(t, endsArgument(`"x",`, 3))
	assert.True(t, endsArgument(`"x"  )`, 3))
	assert.True(t, endsArgument(`"x"`, 3))
	assert.True(t, endsArgument("\"x\"\n", 3))
	assert.False(t, endsArgument(`"x" + y`, 3))
	assert.False(t, endsArgument(`"x".strip()`, 3))
}
