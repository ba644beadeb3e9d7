package internal

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gnolang/modernize/internal/directive"
	"github.com/gnolang/modernize/internal/resolver"
	"github.com/gnolang/modernize/internal/rules"
	tt "github.com/gnolang/modernize/internal/types"
)

// Engine applies a rule catalog to text.
//
// An Engine is safe for concurrent use once it is configured: Normalize never
// writes to engine state. IgnoreRule must not be called after the engine has
// been shared.
type Engine struct {
	catalog      *rules.Catalog
	ignoredRules map[string]bool
	radius       int
	logger       *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRadius sets the context window radius in bytes. Zero or less means the
// whole input is the window.
func WithRadius(radius int) Option {
	return func(e *Engine) {
		e.radius = radius
	}
}

// WithLogger sets the logger used for rule diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithIgnoredRules disables rules by id.
func WithIgnoredRules(ids ...string) Option {
	return func(e *Engine) {
		for _, id := range ids {
			e.IgnoreRule(id)
		}
	}
}

// NewEngine creates an engine for the given catalog.
func NewEngine(catalog *rules.Catalog, opts ...Option) (*Engine, error) {
	if catalog == nil {
		return nil, errors.New("rule catalog is required")
	}
	engine := &Engine{
		catalog: catalog,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(engine)
	}
	for id := range engine.ignoredRules {
		if _, ok := catalog.Lookup(id); !ok {
			return nil, fmt.Errorf("%w: %s", rules.ErrUnknownRule, id)
		}
	}
	return engine, nil
}

// IgnoreRule disables a rule.
func (e *Engine) IgnoreRule(rule string) {
	if e.ignoredRules == nil {
		e.ignoredRules = make(map[string]bool)
	}
	e.ignoredRules[rule] = true
}

// Catalog returns the engine's rule catalog.
func (e *Engine) Catalog() *rules.Catalog {
	return e.catalog
}

// Normalize rewrites legacy usage in text. Text without legacy usage is
// returned unchanged.
func (e *Engine) Normalize(text string) string {
	return e.run(text, false).Text
}

// NormalizeWithTrace is Normalize plus the list of rewrites that were made,
// in the order they were made.
func (e *Engine) NormalizeWithTrace(text string) tt.Result {
	return e.run(text, true)
}

func (e *Engine) run(text string, trace bool) tt.Result {
	result := tt.Result{Text: text}
	for _, rule := range e.catalog.Rules() {
		if e.ignoredRules[rule.ID] {
			continue
		}
		out, applied, count := e.apply(rule, result.Text, trace)
		if count == 0 {
			continue
		}
		e.logger.Debug("rule applied",
			zap.String("rule", rule.ID),
			zap.String("category", string(rule.Category)),
			zap.Int("rewrites", count))
		result.Text = out
		result.Applied = append(result.Applied, applied...)
	}
	return result
}

// apply runs a single rule over text. Every match is resolved against the same
// input, so a rule never sees its own output.
func (e *Engine) apply(rule rules.Rule, text string, trace bool) (string, []tt.Rewrite, int) {
	matches := rule.Matcher.FindAll(text)
	if len(matches) == 0 {
		return text, nil, 0
	}
	directives := directive.Parse(text)

	var (
		b       strings.Builder
		applied []tt.Rewrite
		count   int
		last    int
	)
	for _, m := range matches {
		if m.Start < last {
			continue
		}
		ctx := resolver.Context{Text: text, Start: m.Start, End: m.End, Radius: e.radius}
		if directives.Suppressed(rule.ID, m.Start) || !rule.Accepts(m, ctx) {
			continue
		}
		replacement, intent := rule.Replace.Replace(m, ctx)
		if replacement == m.Text {
			continue
		}
		if count == 0 {
			b.Grow(len(text))
		}
		b.WriteString(text[last:m.Start])
		b.WriteString(replacement)
		last = m.End
		count++

		if trace {
			applied = append(applied, tt.Rewrite{
				Rule:        rule.ID,
				Category:    rule.Category,
				Original:    m.Text,
				Replacement: replacement,
				Intent:      intent,
				Start:       tt.PositionAt(text, m.Start),
				End:         tt.PositionAt(text, m.End),
			})
		}
	}
	if count == 0 {
		return text, nil, 0
	}
	b.WriteString(text[last:])
	return b.String(), applied, count
}
