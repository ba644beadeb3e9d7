package internal

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/modernize/internal/rules"
	tt "github.com/gnolang/modernize/internal/types"
)

const legacyJS = `const response = await openai.createCompletion({
  model: "text-davinci-003",
  prompt: "Say hello",
  max_tokens: 50,
});
console.log(response.data.choices[0].text);
`

const modernJS = `const response = await openai.chat.completions.create({
  model: "gpt-4o-mini",
  messages: [{ role: "user", content: "Say hello" }],
  max_completion_tokens: 50,
});
console.log(response.choices[0].message.content);
`

const legacyPython = `import openai

response = openai.Completion.create(
    engine="davinci",
    prompt="Solve this complex math problem step by step: 12 * 7",
    max_tokens=100,
)
print(response["choices"][0]["text"])
`

const modernPython = `import openai

response = openai.chat.completions.create(
    model="gpt-4o",
    messages=[{"role": "user", "content": "Solve this complex math problem step by step: 12 * 7"}],
    max_completion_tokens=100,
)
print(response.choices[0].message.content)
`

const alreadyModern = `const completion = await client.chat.completions.create({
  model: "gpt-4o-mini",
  messages: [{ role: "user", content: "Hello" }],
  max_completion_tokens: 50,
});
console.log(completion.choices[0].message.content);
const emb = await client.embeddings.create({ model: "text-embedding-3-small", input: "hi" });
console.log(emb.data[0].embedding);
`

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	catalog, err := rules.DefaultCatalog(rules.ModelSet{})
	require.NoError(t, err)
	engine, err := NewEngine(catalog, opts...)
	require.NoError(t, err)
	return engine
}

func TestNormalize(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "javascript v3 completion",
			input:    legacyJS,
			expected: modernJS,
		},
		{
			name:     "python completion with reasoning prompt",
			input:    legacyPython,
			expected: modernPython,
		},
		{
			name: "embedding with document context",
			input: `docs = openai.Embedding.create(
    model="text-embedding-ada-002",
    input=["High quality document embedding for retrieval"],
)`,
			expected: `docs = openai.embeddings.create(
    model="text-embedding-3-large",
    input=["High quality document embedding for retrieval"],
)`,
		},
		{
			name:     "embedding with search context",
			input:    `vec = client.embeddings.create(model='text-embedding-ada-002', input=search_query)`,
			expected: `vec = client.embeddings.create(model='text-embedding-3-small', input=search_query)`,
		},
		{
			name:     "search embedding model",
			input:    `const e = await openai.createEmbedding({ model: "text-search-ada-doc-001", input });`,
			expected: `const e = await openai.embeddings.create({ model: "text-embedding-3-small", input });`,
		},
		{
			name:     "low cost models collapse",
			input:    `models = ["text-curie-001", 'text-babbage-001', "text-ada-001"]`,
			expected: `models = ["gpt-4o-mini", 'gpt-4o-mini', "gpt-4o-mini"]`,
		},
		{
			name:     "bare family names as model values",
			input:    "a = { model: \"curie\" }\nb = dict(default_model='babbage')\nc = { \"engine\": `ada` }",
			expected: "a = { model: \"gpt-4o-mini\" }\nb = dict(default_model='gpt-4o-mini')\nc = { \"engine\": `gpt-4o-mini` }",
		},
		{
			name:     "bare family names in other positions are kept",
			input:    `artists = {"name": "ada", "painter": "davinci"}; if model == "curie": pass`,
			expected: `artists = {"name": "ada", "painter": "davinci"}; if model == "curie": pass`,
		},
		{
			name:     "model id inside a longer string is kept",
			input:    `note = "we used 'text-davinci-003' before"`,
			expected: `note = "we used 'text-davinci-003' before"`,
		},
		{
			name:     "chat completion call",
			input:    `r = openai.ChatCompletion.create(model="gpt-4o", messages=msgs)`,
			expected: `r = openai.chat.completions.create(model="gpt-4o", messages=msgs)`,
		},
		{
			name:     "legacy completions endpoint",
			input:    `r = client.completions.create(model="gpt-3.5-turbo-instruct", prompt=text)`,
			expected: `r = client.chat.completions.create(model="gpt-4o-mini", messages=[{"role": "user", "content": text}])`,
		},
		{
			name:     "create chat completion",
			input:    `await api.createChatCompletion({ model: "gpt-4o", messages })`,
			expected: `await api.chat.completions.create({ model: "gpt-4o", messages })`,
		},
		{
			name:     "embedding index access",
			input:    `vector = result['data'][0]['embedding']`,
			expected: `vector = result.data[0].embedding`,
		},
		{
			name:     "quoted max_tokens key",
			input:    `{"model": "gpt-4o", "max_tokens": 20}`,
			expected: `{"model": "gpt-4o", "max_completion_tokens": 20}`,
		},
		{
			name:     "engine given a variable",
			input:    "const opts = { engine: ENGINE_NAME, max_tokens: 10 };",
			expected: "const opts = { model: ENGINE_NAME, max_completion_tokens: 10 };",
		},
		{
			name:     "prompt outside a chat call is kept",
			input:    `img = client.images.generate(prompt="a cat", n=1)`,
			expected: `img = client.images.generate(prompt="a cat", n=1)`,
		},
		{
			name:     "prompt expression is kept",
			input:    `client.chat.completions.create(model="gpt-4o", prompt=prefix + body)`,
			expected: `client.chat.completions.create(model="gpt-4o", prompt=prefix + body)`,
		},
		{
			name:     "comparison is not a parameter",
			input:    `if max_tokens == 5 and engine == "davinci-like": pass`,
			expected: `if max_tokens == 5 and engine == "davinci-like": pass`,
		},
		{
			name:     "ignore directive",
			input:    "model = \"davinci\"  # modernize:ignore\nmodel = \"davinci\"",
			expected: "model = \"davinci\"  # modernize:ignore\nmodel = \"gpt-4o-mini\"",
		},
		{
			name: "modern chat response through a raw http client",
			input: `const res = await axios.post("https://api.openai.com/v1/chat/completions", body);
console.log(res.data.choices[0].message.content);`,
			expected: `const res = await axios.post("https://api.openai.com/v1/chat/completions", body);
console.log(res.data.choices[0].message.content);`,
		},
		{
			name: "v3 chat response",
			input: `const openai = new OpenAIApi(configuration);
const r = await openai.createChatCompletion({ model: "gpt-4o", messages });
console.log(r.data.choices[0].message.content);`,
			expected: `const openai = new OpenAIApi(configuration);
const r = await openai.chat.completions.create({ model: "gpt-4o", messages });
console.log(r.choices[0].message.content);`,
		},
		{
			name:     "prompt inside a message string is kept",
			input:    `client.chat.completions.create(model="gpt-4o", messages=[{"role": "user", "content": "Rewrite the prompt: draft, then answer"}])`,
			expected: `client.chat.completions.create(model="gpt-4o", messages=[{"role": "user", "content": "Rewrite the prompt: draft, then answer"}])`,
		},
		{
			name:     "engine of an unrelated call is kept",
			input:    `df = pd.read_parquet(path, engine="pyarrow")`,
			expected: `df = pd.read_parquet(path, engine="pyarrow")`,
		},
		{
			name:     "engine in a request dict",
			input:    `params = dict(engine="text-davinci-003", prompt=q)`,
			expected: `params = dict(model="gpt-4o-mini", prompt=q)`,
		},
		{
			name: "markdown code fence",
			input: "Upgrade this:\n\n```python\nopenai.Completion.create(engine=\"davinci\", prompt=\"hi\")\n```\n",
			expected: "Upgrade this:\n\n```python\nopenai.chat.completions.create(model=\"gpt-4o-mini\", messages=[{\"role\": \"user\", \"content\": \"hi\"}])\n```\n",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := engine.Normalize(tc.input)
			assert.Equal(t, tc.expected, got)
			assert.Equal(t, got, engine.Normalize(got), "normalization must be idempotent")
		})
	}
}

func TestNormalizeRemovesLegacyForms(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	out := engine.Normalize(legacyJS + legacyPython)
	for _, legacy := range []string{
		"createCompletion(", ".Completion.create(", "choices[0].text", `["choices"][0]["text"]`,
		"max_tokens", "engine=", `"text-davinci-003"`, `"davinci"`, "prompt",
	} {
		assert.NotContains(t, out, legacy)
	}
	assert.Contains(t, out, "chat.completions.create(")
	assert.Contains(t, out, "choices[0].message.content")
	assert.Contains(t, out, `model="gpt-4o"`)
}

func TestNormalizeModernInputIsUnchanged(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	for _, input := range []string{alreadyModern, modernJS, modernPython, ""} {
		result := engine.NormalizeWithTrace(input)
		assert.Equal(t, input, result.Text)
		assert.Empty(t, result.Applied)
		assert.False(t, result.Changed())
	}
}

func TestNormalizeProseIsUnchanged(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	prose := `Ada Lovelace described the analytical engine: it could solve math step by step.
The prompt: write a poem about curie and babbage. Mind the max tokens budget.
Choices were made; the text was final.`
	assert.Equal(t, prose, engine.Normalize(prose))
}

func TestNormalizeMixedDocument(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	out := engine.Normalize(alreadyModern + "\n" + legacyJS)
	require.True(t, strings.HasPrefix(out, alreadyModern), "modern part must be byte-identical")
	assert.Equal(t, alreadyModern+"\n"+modernJS, out)
}

func TestMixedDocumentWithRawHTTPClient(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	const rest = `const res = await axios.post("https://api.openai.com/v1/chat/completions", {
  model: "gpt-4o-mini",
  messages: [{ role: "user", content: "Rewrite the prompt: draft, then answer" }],
});
console.log(res.data.choices[0].message.content);
const df = pd.read_parquet(path, engine="pyarrow");
`
	out := engine.Normalize(rest + legacyJS)
	assert.Equal(t, rest+modernJS, out)
	assert.Equal(t, out, engine.Normalize(out))
}

func TestNormalizeWithTrace(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	result := engine.NormalizeWithTrace(legacyPython)
	assert.Equal(t, engine.Normalize(legacyPython), result.Text)
	require.True(t, result.Changed())

	var ids []string
	for _, rw := range result.Applied {
		ids = append(ids, rw.Rule)
	}
	assert.Equal(t, []string{
		"completion-create-call",
		"choice-text-index-access",
		"max-tokens-param",
		"engine-param",
		"prompt-to-messages",
		"general-model",
	}, ids)

	last := result.Applied[len(result.Applied)-1]
	assert.Equal(t, tt.CategoryModel, last.Category)
	assert.Equal(t, `"davinci"`, last.Original)
	assert.Equal(t, `"gpt-4o"`, last.Replacement)
	assert.Equal(t, tt.IntentReasoning, last.Intent)
	assert.Equal(t, 4, last.Start.Line)

	first := result.Applied[0]
	assert.Equal(t, "openai.Completion.create(", first.Original)
	assert.Equal(t, 3, first.Start.Line)
	assert.Equal(t, 12, first.Start.Column)
}

func TestIgnoredRules(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t, WithIgnoredRules("general-model", "max-tokens-param"))

	out := engine.Normalize(`openai.Completion.create(engine="davinci", max_tokens=5)`)
	assert.Equal(t, `openai.chat.completions.create(model="davinci", max_tokens=5)`, out)

	catalog, err := rules.DefaultCatalog(rules.ModelSet{})
	require.NoError(t, err)
	_, err = NewEngine(catalog, WithIgnoredRules("no-such-rule"))
	assert.ErrorIs(t, err, rules.ErrUnknownRule)

	_, err = NewEngine(nil)
	assert.Error(t, err)
}

func TestContextRadius(t *testing.T) {
	t.Parallel()
	input := `a = openai.chat.completions.create(model="text-davinci-003", messages=m1)
` + strings.Repeat("# filler line\n", 20) +
		`b = openai.chat.completions.create(model="text-davinci-003", messages=m2)  # solve step by step
`

	whole := newTestEngine(t).Normalize(input)
	assert.Equal(t, 2, strings.Count(whole, `"gpt-4o"`))

	narrow := newTestEngine(t, WithRadius(40)).Normalize(input)
	assert.Equal(t, 1, strings.Count(narrow, `"gpt-4o-mini"`))
	assert.Equal(t, 1, strings.Count(narrow, `"gpt-4o"`))
	assert.Less(t, strings.Index(narrow, `"gpt-4o-mini"`), strings.Index(narrow, `"gpt-4o"`))
}

func TestCustomModelTargets(t *testing.T) {
	t.Parallel()
	catalog, err := rules.DefaultCatalog(rules.ModelSet{CostOptimized: "gpt-4.1-mini"})
	require.NoError(t, err)
	engine, err := NewEngine(catalog)
	require.NoError(t, err)

	assert.Equal(t, `model = "gpt-4.1-mini"`, engine.Normalize(`model = "ada"`))
}

// Rules in independent families must give the same result whatever their
// relative order.
func TestOrderInvarianceOfIndependentRules(t *testing.T) {
	t.Parallel()
	independent := map[string]bool{
		"choice-text-index-access": true,
		"embedding-index-access":   true,
		"max-tokens-param":         true,
	}

	base, err := rules.DefaultCatalog(rules.ModelSet{})
	require.NoError(t, err)

	reordered := base.Rules()
	next := 299
	for i := range reordered {
		if independent[reordered[i].ID] {
			reordered[i].Order = next
			next--
		}
	}
	shuffled, err := rules.NewCatalog(reordered...)
	require.NoError(t, err)

	e1, err := NewEngine(base)
	require.NoError(t, err)
	e2, err := NewEngine(shuffled)
	require.NoError(t, err)

	for _, input := range []string{legacyJS, legacyPython, alreadyModern} {
		assert.Equal(t, e1.Normalize(input), e2.Normalize(input))
	}
}

// engine-param only renames the key; the model value is remapped by the model
// rules, and the result must not depend on which of the two runs first.
func TestParameterRenameComposesWithModelRemap(t *testing.T) {
	t.Parallel()
	base, err := rules.DefaultCatalog(rules.ModelSet{})
	require.NoError(t, err)

	ids := base.IDs()
	assert.Less(t, indexOf(ids, "engine-param"), indexOf(ids, "general-model"))

	swapped := base.Rules()
	for i := range swapped {
		if swapped[i].ID == "general-model" {
			swapped[i].Order = 1
		}
	}
	modelFirst, err := rules.NewCatalog(swapped...)
	require.NoError(t, err)

	input := `openai.Completion.create(engine="text-davinci-003", prompt="hi")`
	want := `openai.chat.completions.create(model="gpt-4o-mini", messages=[{"role": "user", "content": "hi"}])`

	e1, err := NewEngine(base)
	require.NoError(t, err)
	e2, err := NewEngine(modelFirst)
	require.NoError(t, err)
	assert.Equal(t, want, e1.Normalize(input))
	assert.Equal(t, want, e2.Normalize(input))
}

func TestConcurrentNormalize(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)
	inputs := []string{legacyJS, legacyPython, alreadyModern}
	want := make([]string, len(inputs))
	for i, in := range inputs {
		want[i] = engine.Normalize(in)
	}

	var wg sync.WaitGroup
	for n := 0; n < 16; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			i := n % len(inputs)
			assert.Equal(t, want[i], engine.Normalize(inputs[i]))
		}(n)
	}
	wg.Wait()
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
