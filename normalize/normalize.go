// Package normalize is the public entry point: it builds an engine from a
// configuration and runs it over sources, files and directory trees.
package normalize

import (
	"crypto/sha256"
	"fmt"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/gnolang/modernize/internal"
	"github.com/gnolang/modernize/internal/rules"
	tt "github.com/gnolang/modernize/internal/types"
)

// Engine is what the processing functions need from a normalizer.
type Engine interface {
	Normalize(text string) string
	NormalizeWithTrace(text string) tt.Result
}

// Normalizer is a configured engine with an optional result cache.
// It is safe for concurrent use.
type Normalizer struct {
	engine *internal.Engine
	config Config
	cache  *lru.Cache[[sha256.Size]byte, tt.Result]
	logger *zap.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithLogger sets the logger passed down to the engine.
func WithLogger(logger *zap.Logger) Option {
	return func(n *Normalizer) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// New loads the configuration at configPath and builds a Normalizer from it.
func New(configPath string, opts ...Option) (*Normalizer, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return NewFromConfig(config, opts...)
}

// NewFromConfig builds a Normalizer from an in-memory configuration.
func NewFromConfig(config Config, opts ...Option) (*Normalizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	n := &Normalizer{config: config, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(n)
	}

	catalog, err := rules.DefaultCatalog(config.Models)
	if err != nil {
		return nil, fmt.Errorf("failed to build rule catalog: %w", err)
	}
	fixes := config.Custom
	if config.CustomFile != "" {
		loaded, err := rules.LoadFixRules(config.CustomFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load custom rules: %w", err)
		}
		fixes = append(append([]rules.FixRule(nil), fixes...), loaded...)
	}
	if len(fixes) > 0 {
		custom, err := rules.CompileFixRules(fixes)
		if err != nil {
			return nil, fmt.Errorf("failed to compile custom rules: %w", err)
		}
		if catalog, err = catalog.With(custom...); err != nil {
			return nil, fmt.Errorf("failed to add custom rules: %w", err)
		}
	}
	for id := range config.Rules {
		if _, ok := catalog.Lookup(id); !ok {
			return nil, fmt.Errorf("%w in configuration: %s", rules.ErrUnknownRule, id)
		}
	}

	n.engine, err = internal.NewEngine(catalog,
		internal.WithRadius(config.Window.Radius),
		internal.WithLogger(n.logger),
		internal.WithIgnoredRules(config.DisabledRules()...),
	)
	if err != nil {
		return nil, err
	}

	if config.Cache.Size > 0 {
		n.cache, err = lru.New[[sha256.Size]byte, tt.Result](config.Cache.Size)
		if err != nil {
			return nil, fmt.Errorf("failed to create result cache: %w", err)
		}
	}

	n.logger.Debug("normalizer ready",
		zap.String("config", config.Name),
		zap.Int("rules", catalog.Len()),
		zap.Strings("disabled", config.DisabledRules()),
		zap.Int("radius", config.Window.Radius),
		zap.Int("cache", config.Cache.Size))
	return n, nil
}

// Config returns the configuration the normalizer was built from.
func (n *Normalizer) Config() Config {
	return n.config
}

// Catalog returns the rules the normalizer runs, in execution order.
func (n *Normalizer) Catalog() *rules.Catalog {
	return n.engine.Catalog()
}

// Normalize rewrites legacy usage in text.
func (n *Normalizer) Normalize(text string) string {
	if n.cache == nil {
		return n.engine.Normalize(text)
	}
	return n.NormalizeWithTrace(text).Text
}

// NormalizeWithTrace rewrites legacy usage in text and reports each rewrite.
func (n *Normalizer) NormalizeWithTrace(text string) tt.Result {
	if n.cache == nil {
		return n.engine.NormalizeWithTrace(text)
	}

	key := sha256.Sum256([]byte(text))
	if cached, ok := n.cache.Get(key); ok {
		n.logger.Debug("cache hit", zap.Int("bytes", len(text)))
		return tt.Result{Text: cached.Text, Applied: slices.Clone(cached.Applied)}
	}
	result := n.engine.NormalizeWithTrace(text)
	n.cache.Add(key, result)
	return tt.Result{Text: result.Text, Applied: slices.Clone(result.Applied)}
}
