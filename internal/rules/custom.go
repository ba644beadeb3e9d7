package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/modernize/internal/pattern"
	tt "github.com/gnolang/modernize/internal/types"
)

// CustomOrderBase is where user rules start when they do not set an order, so
// they run after every built-in rule.
const CustomOrderBase = 900

// FixRule is a user-supplied rewrite written in the hole language.
type FixRule struct {
	Name        string `yaml:"name"`
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
	Order       int    `yaml:"order,omitempty"`
}

type fixRulesFile struct {
	Rules []FixRule `yaml:"rules"`
}

// LoadFixRules reads a YAML file with a top-level `rules` list.
func LoadFixRules(path string) ([]FixRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f fixRulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.Rules, nil
}

// Rule compiles the fix rule. position is used to derive an order when none is set.
func (f FixRule) Rule(position int) (Rule, error) {
	if f.Name == "" {
		return Rule{}, ErrEmptyID
	}
	compiled, err := pattern.Compile(f.Pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %s: %w", f.Name, err)
	}
	tmpl, err := pattern.ParseTemplate(f.Replacement)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %s: %w", f.Name, err)
	}
	known := make(map[string]bool, len(compiled.Holes))
	for _, h := range compiled.Holes {
		known[h] = true
	}
	for _, h := range tmpl.Holes() {
		if !known[h] {
			return Rule{}, fmt.Errorf("rule %s: replacement uses hole %q that the pattern does not bind", f.Name, h)
		}
	}

	order := f.Order
	if order == 0 {
		order = CustomOrderBase + position
	}
	return Rule{
		ID:          f.Name,
		Category:    tt.CategoryCustom,
		Order:       order,
		Description: f.Pattern + " -> " + f.Replacement,
		Matcher:     Pattern{Compiled: compiled},
		Replace:     Template{T: tmpl},
	}, nil
}

// CompileFixRules compiles fix rules in the order given.
func CompileFixRules(fixes []FixRule) ([]Rule, error) {
	out := make([]Rule, 0, len(fixes))
	for i, f := range fixes {
		r, err := f.Rule(i)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
