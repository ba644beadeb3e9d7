package rules

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrEmptyID       = errors.New("rule id is required")
	ErrDuplicateRule = errors.New("duplicate rule id")
	ErrNilMatcher    = errors.New("rule has no matcher")
	ErrNilReplacer   = errors.New("rule has no replacer")
	ErrUnknownRule   = errors.New("unknown rule")
)

// Catalog is an immutable, ordered set of rules. Rules run in ascending Order;
// rules with equal Order keep the order they were given in.
type Catalog struct {
	rules []Rule
	index map[string]int
}

// NewCatalog validates and orders rules.
func NewCatalog(rules ...Rule) (*Catalog, error) {
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})

	index := make(map[string]int, len(sorted))
	for i, r := range sorted {
		if r.ID == "" {
			return nil, ErrEmptyID
		}
		if _, ok := index[r.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRule, r.ID)
		}
		if r.Matcher == nil {
			return nil, fmt.Errorf("%w: %s", ErrNilMatcher, r.ID)
		}
		if r.Replace == nil {
			return nil, fmt.Errorf("%w: %s", ErrNilReplacer, r.ID)
		}
		index[r.ID] = i
	}
	return &Catalog{rules: sorted, index: index}, nil
}

// With returns a new catalog containing c's rules plus extra.
func (c *Catalog) With(extra ...Rule) (*Catalog, error) {
	all := make([]Rule, 0, len(c.rules)+len(extra))
	all = append(all, c.rules...)
	all = append(all, extra...)
	return NewCatalog(all...)
}

// Rules returns the rules in execution order.
func (c *Catalog) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// IDs returns rule ids in execution order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.rules))
	for i, r := range c.rules {
		ids[i] = r.ID
	}
	return ids
}

// Lookup returns the rule with the given id.
func (c *Catalog) Lookup(id string) (Rule, bool) {
	i, ok := c.index[id]
	if !ok {
		return Rule{}, false
	}
	return c.rules[i], true
}

// Len returns the number of rules.
func (c *Catalog) Len() int {
	return len(c.rules)
}
