package rules

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/gnolang/modernize/internal/resolver"
	tt "github.com/gnolang/modernize/internal/types"
)

var (
	ErrEmptyTarget  = errors.New("model target is empty")
	ErrLegacyTarget = errors.New("model target is a legacy identifier")
)

// Target names a slot in a ModelSet.
type Target int

const (
	TargetCostOptimized Target = iota
	TargetHighCapability
	TargetEmbeddingLarge
	TargetEmbeddingSmall
)

func (t Target) String() string {
	switch t {
	case TargetCostOptimized:
		return "cost_optimized"
	case TargetHighCapability:
		return "high_capability"
	case TargetEmbeddingLarge:
		return "embedding_large"
	case TargetEmbeddingSmall:
		return "embedding_small"
	default:
		return "unknown"
	}
}

// ModelSet holds the modern model identifiers legacy models are mapped to.
type ModelSet struct {
	HighCapability string `yaml:"high_capability,omitempty" json:"high_capability,omitempty"`
	CostOptimized  string `yaml:"cost_optimized,omitempty" json:"cost_optimized,omitempty"`
	EmbeddingLarge string `yaml:"embedding_large,omitempty" json:"embedding_large,omitempty"`
	EmbeddingSmall string `yaml:"embedding_small,omitempty" json:"embedding_small,omitempty"`
}

// DefaultModels returns the built-in modern targets.
func DefaultModels() ModelSet {
	return ModelSet{
		HighCapability: "gpt-4o",
		CostOptimized:  "gpt-4o-mini",
		EmbeddingLarge: "text-embedding-3-large",
		EmbeddingSmall: "text-embedding-3-small",
	}
}

// WithDefaults fills empty slots from DefaultModels.
func (m ModelSet) WithDefaults() ModelSet {
	d := DefaultModels()
	if m.HighCapability == "" {
		m.HighCapability = d.HighCapability
	}
	if m.CostOptimized == "" {
		m.CostOptimized = d.CostOptimized
	}
	if m.EmbeddingLarge == "" {
		m.EmbeddingLarge = d.EmbeddingLarge
	}
	if m.EmbeddingSmall == "" {
		m.EmbeddingSmall = d.EmbeddingSmall
	}
	return m
}

// Resolve returns the identifier for a target.
func (m ModelSet) Resolve(t Target) string {
	switch t {
	case TargetHighCapability:
		return m.HighCapability
	case TargetEmbeddingLarge:
		return m.EmbeddingLarge
	case TargetEmbeddingSmall:
		return m.EmbeddingSmall
	default:
		return m.CostOptimized
	}
}

// Validate rejects empty targets and targets that would themselves be
// rewritten, which would make normalization non-idempotent.
func (m ModelSet) Validate() error {
	for _, t := range []Target{TargetHighCapability, TargetCostOptimized, TargetEmbeddingLarge, TargetEmbeddingSmall} {
		id := m.Resolve(t)
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%w: %s", ErrEmptyTarget, t)
		}
		if IsLegacyModel(id) {
			return fmt.Errorf("%w: %s = %q", ErrLegacyTarget, t, id)
		}
	}
	return nil
}

// DecisionTable maps a classified intent to a target. Intents without an entry
// resolve to Default.
type DecisionTable struct {
	Default  Target
	ByIntent map[tt.Intent]Target
}

// Decide returns the target for an intent.
func (d DecisionTable) Decide(i tt.Intent) Target {
	if t, ok := d.ByIntent[i]; ok {
		return t
	}
	return d.Default
}

// Intents returns the intents the table distinguishes, in ascending order.
func (d DecisionTable) Intents() []tt.Intent {
	intents := make([]tt.Intent, 0, len(d.ByIntent))
	for i := range d.ByIntent {
		intents = append(intents, i)
	}
	sort.Slice(intents, func(a, b int) bool { return intents[a] < intents[b] })
	return intents
}

// Family is a group of legacy model identifiers that share a decision table.
type Family struct {
	ID          string
	Order       int
	Description string
	Legacy      []string
	Table       DecisionTable
}

// ContextSensitive reports whether the family's replacement depends on intent.
func (f Family) ContextSensitive() bool {
	return len(f.Table.ByIntent) > 0
}

// families is the legacy model catalog.
var families = []Family{
	{
		ID:          "general-model",
		Order:       400,
		Description: "general-purpose completion models; multi-step reasoning goes to the high-capability model",
		Legacy: []string{
			"text-davinci-003", "text-davinci-002", "text-davinci-001",
			"davinci", "code-davinci-002", "gpt-3.5-turbo-instruct",
		},
		Table: DecisionTable{
			Default:  TargetCostOptimized,
			ByIntent: map[tt.Intent]Target{tt.IntentReasoning: TargetHighCapability},
		},
	},
	{
		ID:          "low-cost-model",
		Order:       410,
		Description: "low-cost text models collapse to the cost-optimized chat model",
		Legacy: []string{
			"text-curie-001", "text-babbage-001", "text-ada-001",
			"curie", "babbage", "ada",
		},
		Table: DecisionTable{Default: TargetCostOptimized},
	},
	{
		ID:          "embedding-model",
		Order:       420,
		Description: "ada-002 embeddings; search usage goes small, everything else large",
		Legacy:      []string{"text-embedding-ada-002"},
		Table: DecisionTable{
			Default: TargetEmbeddingLarge,
			ByIntent: map[tt.Intent]Target{
				tt.IntentSearch:    TargetEmbeddingSmall,
				tt.IntentRetrieval: TargetEmbeddingLarge,
			},
		},
	},
	{
		ID:          "search-embedding-model",
		Order:       430,
		Description: "first generation search and similarity embeddings go to the small embedding model",
		Legacy: []string{
			"text-search-ada-doc-001", "text-search-ada-query-001",
			"text-search-babbage-doc-001", "text-search-babbage-query-001",
			"text-search-curie-doc-001", "text-search-curie-query-001",
			"text-search-davinci-doc-001", "text-search-davinci-query-001",
			"text-similarity-ada-001", "text-similarity-babbage-001",
			"text-similarity-curie-001", "text-similarity-davinci-001",
		},
		Table: DecisionTable{Default: TargetEmbeddingSmall},
	},
}

// Families returns a copy of the legacy model catalog.
func Families() []Family {
	out := make([]Family, len(families))
	for i, f := range families {
		out[i] = f.clone()
	}
	return out
}

func (f Family) clone() Family {
	f.Legacy = append([]string(nil), f.Legacy...)
	if f.Table.ByIntent != nil {
		byIntent := make(map[tt.Intent]Target, len(f.Table.ByIntent))
		for i, t := range f.Table.ByIntent {
			byIntent[i] = t
		}
		f.Table.ByIntent = byIntent
	}
	return f
}

// IsLegacyModel reports whether id is rewritten by any model family.
func IsLegacyModel(id string) bool {
	for _, f := range families {
		for _, l := range f.Legacy {
			if l == id {
				return true
			}
		}
	}
	return false
}

// ModelRule builds the rule for a family. Identifiers only match as complete
// quoted literals with the same opening and closing quote. Bare family names
// such as "ada" are also common words, so they only match as the value of a
// model or engine key.
func ModelRule(f Family, models ModelSet) Rule {
	f = f.clone()
	names := make([]string, len(f.Legacy))
	for i, l := range f.Legacy {
		names[i] = regexp.QuoteMeta(l)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	const quote = "[\"'`]"
	expr := fmt.Sprintf(`(?P<open>%s)(?P<name>%s)(?P<close>%s)`, quote, strings.Join(names, "|"), quote)

	allowed := f.Table.Intents()
	sensitive := f.ContextSensitive()
	table := f.Table

	return Rule{
		ID:               f.ID,
		Category:         tt.CategoryModel,
		Order:            f.Order,
		Description:      f.Description,
		Matcher:          MustRegex(expr),
		ContextSensitive: sensitive,
		Guard: func(m Match, ctx resolver.Context) bool {
			if m.Groups["open"] != m.Groups["close"] || ctx.InString() {
				return false
			}
			return strings.Contains(m.Groups["name"], "-") || modelKeyBefore(ctx.Text, m.Start)
		},
		Replace: Func(func(m Match, ctx resolver.Context) (string, tt.Intent) {
			intent := tt.IntentDefault
			if sensitive {
				intent = ctx.Classify(allowed...)
			}
			q := m.Groups["open"]
			return q + models.Resolve(table.Decide(intent)) + q, intent
		}),
	}
}

// modelKeyBefore reports whether the value starting at pos is assigned to a
// key ending in model or engine: `model="x"`, `default_model: "x"` or
// `"engine": "x"`. Comparisons such as `model == "x"` do not count.
func modelKeyBefore(text string, pos int) bool {
	i := skipBlanksBack(text, pos)
	if i == 0 {
		return false
	}
	switch text[i-1] {
	case ':':
	case '=':
		if i >= 2 && strings.IndexByte("=!<>", text[i-2]) >= 0 {
			return false
		}
	default:
		return false
	}
	i = skipBlanksBack(text, i-1)
	if i > 0 && (text[i-1] == '"' || text[i-1] == '\'') {
		i--
	}
	end := i
	for i > 0 && isKeyChar(text[i-1]) {
		i--
	}
	key := strings.ToLower(text[i:end])
	return strings.HasSuffix(key, "model") || strings.HasSuffix(key, "engine")
}

func skipBlanksBack(text string, i int) int {
	for i > 0 && (text[i-1] == ' ' || text[i-1] == '\t') {
		i--
	}
	return i
}

func isKeyChar(c byte) bool {
	return c == '_' || c == '$' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
