package normalize

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/modernize/internal/rules"
)

// DefaultConfigFile is the configuration file looked up when none is given.
const DefaultConfigFile = ".modernize.yaml"

const defaultCacheSize = 128

var (
	ErrInvalidRuleSetting = errors.New("rule setting must be \"on\" or \"off\"")
	ErrNegativeCacheSize  = errors.New("cache size must not be negative")
)

// RuleSetting turns a built-in rule on or off.
type RuleSetting string

const (
	RuleOn  RuleSetting = "on"
	RuleOff RuleSetting = "off"
)

// Config is the on-disk configuration. CustomFile names a YAML file with a
// top-level `rules` list of custom rules; a relative path is resolved against
// the configuration file.
type Config struct {
	Name       string                 `yaml:"name"`
	Window     WindowConfig           `yaml:"window"`
	Models     rules.ModelSet         `yaml:"models"`
	Rules      map[string]RuleSetting `yaml:"rules"`
	Custom     []rules.FixRule        `yaml:"custom,omitempty"`
	CustomFile string                 `yaml:"custom_file,omitempty"`
	Cache      CacheConfig            `yaml:"cache"`
}

// WindowConfig controls how much text the context resolver looks at.
// A radius of zero or less uses the whole document.
type WindowConfig struct {
	Radius int `yaml:"radius"`
}

// CacheConfig sizes the in-memory result cache. Zero disables it.
type CacheConfig struct {
	Size int `yaml:"size"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Name:   "modernize",
		Models: rules.DefaultModels(),
		Rules:  map[string]RuleSetting{},
		Cache:  CacheConfig{Size: defaultCacheSize},
	}
}

// LoadConfig reads a YAML configuration on top of DefaultConfig. An empty path
// or a file that does not exist yields the defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return config, fmt.Errorf("failed to open configuration: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, fmt.Errorf("failed to parse configuration %s: %w", path, err)
	}
	config.Models = config.Models.WithDefaults()
	if config.CustomFile != "" && !filepath.IsAbs(config.CustomFile) {
		config.CustomFile = filepath.Join(filepath.Dir(path), config.CustomFile)
	}
	if config.Rules == nil {
		config.Rules = map[string]RuleSetting{}
	}

	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("invalid configuration %s: %w", path, err)
	}
	return config, nil
}

// Validate checks values that YAML decoding cannot. Rule ids are checked when
// the engine is built, since custom rules add to the set of known ids.
func (c Config) Validate() error {
	for id, setting := range c.Rules {
		if setting != RuleOn && setting != RuleOff {
			return fmt.Errorf("%w: %s: %q", ErrInvalidRuleSetting, id, setting)
		}
	}
	if c.Cache.Size < 0 {
		return ErrNegativeCacheSize
	}
	return c.Models.WithDefaults().Validate()
}

// DisabledRules returns the ids of rules switched off, sorted.
func (c Config) DisabledRules() []string {
	var ids []string
	for id, setting := range c.Rules {
		if setting == RuleOff {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// WriteConfig writes c as YAML to path.
func WriteConfig(path string, c Config) error {
	d, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, d, 0o644)
}
