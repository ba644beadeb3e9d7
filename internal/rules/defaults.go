package rules

import (
	"regexp"
	"strings"

	"github.com/gnolang/modernize/internal/resolver"
	tt "github.com/gnolang/modernize/internal/types"
)

const (
	stringLiteral = `"(?:[^"\\\n]|\\.)*"|'(?:[^'\\\n]|\\.)*'|` + "`[^`]*`"
	identChain    = `[A-Za-z_$][A-Za-z0-9_$]*(?:\.[A-Za-z_$][A-Za-z0-9_$]*)*`

	chatCreate = "chat.completions.create"
	v3Client   = "OpenAIApi"
)

// sdkCalls are the call names, current and legacy, that take request parameters.
var sdkCalls = []string{
	"completions.create", "embeddings.create",
	"Completion.create", "Completion.acreate",
	"Embedding.create", "Embedding.acreate",
	"createCompletion", "createChatCompletion", "createEmbedding",
}

// requestKey finds a request parameter other than engine.
var requestKey = regexp.MustCompile(`\b(?:prompt|max_tokens|max_completion_tokens|messages|model)["']?\s*(?::|=[^=])`)

// structuralRules rewrite call shapes and response access paths. They run
// before any value-level rule.
func structuralRules() []Rule {
	return []Rule{
		{
			ID:          "completion-create-call",
			Category:    tt.CategoryCallShape,
			Order:       100,
			Description: "Completion.create( becomes chat.completions.create(",
			Matcher:     MustPattern(":[recv:identifier].Completion.create("),
			Replace:     MustTemplate(":[recv].chat.completions.create("),
		},
		{
			ID:          "chat-completion-create-call",
			Category:    tt.CategoryCallShape,
			Order:       110,
			Description: "ChatCompletion.create( becomes chat.completions.create(",
			Matcher:     MustPattern(":[recv:identifier].ChatCompletion.create("),
			Replace:     MustTemplate(":[recv].chat.completions.create("),
		},
		{
			ID:          "embedding-create-call",
			Category:    tt.CategoryCallShape,
			Order:       120,
			Description: "Embedding.create( becomes embeddings.create(",
			Matcher:     MustPattern(":[recv:identifier].Embedding.create("),
			Replace:     MustTemplate(":[recv].embeddings.create("),
		},
		{
			ID:          "create-completion-call",
			Category:    tt.CategoryCallShape,
			Order:       130,
			Description: "createCompletion( and createChatCompletion( become chat.completions.create(",
			Matcher:     MustRegex(`\b(?P<recv>[A-Za-z_$][A-Za-z0-9_$]*)\.create(?:Chat)?Completion\(`),
			Replace:     MustTemplate(":[recv].chat.completions.create("),
		},
		{
			ID:          "create-embedding-call",
			Category:    tt.CategoryCallShape,
			Order:       140,
			Description: "createEmbedding( becomes embeddings.create(",
			Matcher:     MustPattern(":[recv:identifier].createEmbedding("),
			Replace:     MustTemplate(":[recv].embeddings.create("),
		},
		{
			ID:          "completions-endpoint-call",
			Category:    tt.CategoryCallShape,
			Order:       150,
			Description: "the legacy completions endpoint becomes chat.completions",
			Matcher:     MustPattern(":[recv:identifier].completions.create("),
			Replace:     MustTemplate(":[recv].chat.completions.create("),
			Guard: func(m Match, _ resolver.Context) bool {
				return m.Groups["recv"] != "chat"
			},
		},
		{
			ID:          "unwrap-axios-data",
			Category:    tt.CategoryAccessPath,
			Order:       200,
			Description: "v3 responses wrapped choices in .data",
			Matcher:     MustRegex(`\.data\.choices\[(?P<idx>[0-9]+)\]\.(?P<field>text|message)\b`),
			Guard: func(m Match, ctx resolver.Context) bool {
				if ctx.InString() {
					return false
				}
				// .data.choices[N].message is also what a raw HTTP client
				// returns for a current chat request.
				return m.Groups["field"] == "text" || strings.Contains(ctx.Text, v3Client)
			},
			Replace: Func(func(m Match, _ resolver.Context) (string, tt.Intent) {
				if m.Groups["field"] == "text" {
					return ".choices[" + m.Groups["idx"] + "].message.content", tt.IntentDefault
				}
				return ".choices[" + m.Groups["idx"] + "].message", tt.IntentDefault
			}),
		},
		{
			ID:          "choice-text-dot-access",
			Category:    tt.CategoryAccessPath,
			Order:       210,
			Description: ".choices[N].text becomes .choices[N].message.content",
			Matcher:     MustPattern(".choices[:[idx:number]].text"),
			Replace:     MustTemplate(".choices[:[idx]].message.content"),
		},
		{
			ID:          "choice-text-index-access",
			Category:    tt.CategoryAccessPath,
			Order:       220,
			Description: `["choices"][N]["text"] becomes .choices[N].message.content`,
			Matcher:     MustRegex(`\[\s*["']choices["']\s*\]\s*\[\s*(?P<idx>[0-9]+)\s*\]\s*\[\s*["']text["']\s*\]`),
			Replace:     MustTemplate(".choices[:[idx]].message.content"),
		},
		{
			ID:          "embedding-index-access",
			Category:    tt.CategoryAccessPath,
			Order:       230,
			Description: `["data"][N]["embedding"] becomes .data[N].embedding`,
			Matcher:     MustRegex(`\[\s*["']data["']\s*\]\s*\[\s*(?P<idx>[0-9]+)\s*\]\s*\[\s*["']embedding["']\s*\]`),
			Replace:     MustTemplate(".data[:[idx]].embedding"),
		},
	}
}

// parameterRules rename legacy parameters. engine-param only renames the key;
// the model rules remap its value afterwards.
func parameterRules() []Rule {
	return []Rule{
		{
			ID:          "max-tokens-param",
			Category:    tt.CategoryParameter,
			Order:       300,
			Description: "max_tokens becomes max_completion_tokens",
			Matcher:     MustRegex(`(?P<lq>["']?)\bmax_tokens(?P<rq>["']?)(?P<sep>\s*:|=)`),
			Replace:     MustTemplate(":[lq]max_completion_tokens:[rq]:[sep]"),
			Guard: func(m Match, ctx resolver.Context) bool {
				return m.Groups["lq"] == m.Groups["rq"] && !followedBy(ctx.Text, m.End, '=') && !ctx.InString()
			},
		},
		{
			ID:          "engine-param",
			Category:    tt.CategoryParameter,
			Order:       310,
			Description: "engine becomes model in a request: an SDK call or a literal holding other request parameters",
			Matcher: MustRegex(`(?P<lq>["']?)\bengine(?P<rq>["']?)(?P<sep>\s*:\s*|=)` +
				`(?:(?P<vq>["'` + "`" + `])|(?P<ident>` + identChain + `))`),
			Guard: func(m Match, ctx resolver.Context) bool {
				if m.Groups["lq"] != m.Groups["rq"] || ctx.InString() {
					return false
				}
				if m.Groups["vq"] == "" && !endsArgument(ctx.Text, m.End) {
					return false
				}
				return inRequest(ctx)
			},
			Replace: Func(func(m Match, _ resolver.Context) (string, tt.Intent) {
				g := m.Groups
				return g["lq"] + "model" + g["rq"] + g["sep"] + g["vq"] + g["ident"], tt.IntentDefault
			}),
		},
		{
			ID:               "prompt-to-messages",
			Category:         tt.CategoryParameter,
			Order:            320,
			Description:      "a prompt argument of a chat completion call becomes a single user message",
			Matcher:          MustRegex(`\bprompt(?P<sep>\s*:\s*|=)(?P<value>` + stringLiteral + `|` + identChain + `)`),
			ContextSensitive: true,
			Guard: func(m Match, ctx resolver.Context) bool {
				return !ctx.InString() && endsArgument(ctx.Text, m.End) &&
					strings.HasSuffix(ctx.EnclosingCall(), chatCreate)
			},
			Replace: Func(func(m Match, _ resolver.Context) (string, tt.Intent) {
				sep, value := m.Groups["sep"], m.Groups["value"]
				if strings.Contains(sep, ":") {
					return "messages" + sep + `[{ role: "user", content: ` + value + ` }]`, tt.IntentDefault
				}
				return `messages=[{"role": "user", "content": ` + value + `}]`, tt.IntentDefault
			}),
		},
	}
}

// modelRules builds one rule per legacy model family.
func modelRules(models ModelSet) []Rule {
	out := make([]Rule, 0, len(families))
	for _, f := range families {
		out = append(out, ModelRule(f, models))
	}
	return out
}

// DefaultRules returns the built-in rules, unordered.
func DefaultRules(models ModelSet) []Rule {
	var all []Rule
	all = append(all, structuralRules()...)
	all = append(all, parameterRules()...)
	all = append(all, modelRules(models.WithDefaults())...)
	return all
}

// DefaultCatalog returns the built-in catalog using the given model targets.
func DefaultCatalog(models ModelSet) (*Catalog, error) {
	models = models.WithDefaults()
	if err := models.Validate(); err != nil {
		return nil, err
	}
	return NewCatalog(DefaultRules(models)...)
}

// inRequest reports whether the match is an argument of an SDK call, or sits in
// an argument list or object literal that also holds another request parameter.
func inRequest(ctx resolver.Context) bool {
	call := ctx.EnclosingCall()
	for _, name := range sdkCalls {
		if strings.HasSuffix(call, name) {
			return true
		}
	}
	group, ok := ctx.EnclosingGroup()
	return ok && requestKey.MatchString(group)
}

func followedBy(text string, pos int, c byte) bool {
	return pos < len(text) && text[pos] == c
}

// endsArgument reports whether the value that ends at pos is a whole argument,
// i.e. the next non-blank byte closes or separates it.
func endsArgument(text string, pos int) bool {
	for ; pos < len(text); pos++ {
		switch text[pos] {
		case ' ', '\t', '\r':
			continue
		case ',', ')', '}', '\n':
			return true
		default:
			return false
		}
	}
	return true
}
