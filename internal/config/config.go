// Package config loads voltaire.toml and the credentials kept in the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"voltaire/internal/diag"
	"voltaire/internal/driver"
	"voltaire/internal/fix"
	"voltaire/internal/provider"
)

// FileName is the configuration file looked up from the working directory upwards.
const FileName = "voltaire.toml"

// ErrNoConfig is returned when an explicitly requested config file does not exist.
var ErrNoConfig = errors.New("no voltaire.toml found")

// Environment variables overriding file values.
const (
	EnvUsername = "VOLTAIRE_USERNAME"
	EnvAPIKey   = "VOLTAIRE_API_KEY"
	EnvEndpoint = "VOLTAIRE_ENDPOINT"
)

// Config is the decoded voltaire.toml merged with defaults and environment.
type Config struct {
	Provider   ProviderConfig `toml:"provider"`
	Render     RenderConfig   `toml:"render"`
	Cache      CacheConfig    `toml:"cache"`
	HouseRules *bool          `toml:"house_rules"`
	Rules      []RuleConfig   `toml:"rules"`

	// Path is the file the config was read from, empty for built-in defaults.
	Path     string `toml:"-"`
	Username string `toml:"-"`
	APIKey   string `toml:"-"`
}

type ProviderConfig struct {
	Endpoint      string   `toml:"endpoint"`
	Language      string   `toml:"language"`
	Level         string   `toml:"level"`
	OffsetUnits   string   `toml:"offset_units"`
	Timeout       Duration `toml:"timeout"`
	RatePerMinute int      `toml:"rate_per_minute"`
	DisabledRules []string `toml:"disabled_rules"`
}

type RenderConfig struct {
	MaxSuggestions int  `toml:"max_suggestions"`
	Strike         bool `toml:"strike"`
}

type CacheConfig struct {
	Enabled       bool   `toml:"enabled"`
	Dir           string `toml:"dir"`
	MemoryEntries int    `toml:"memory_entries"`
}

// RuleConfig is one [[rules]] table.
type RuleConfig struct {
	ID          string `toml:"id"`
	Pattern     string `toml:"pattern"`
	Replacement string `toml:"replacement"`
	Explanation string `toml:"explanation"`
	Guard       *bool  `toml:"guard"`
}

// Duration decodes TOML strings such as "15s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Provider: ProviderConfig{
			Endpoint:      provider.DefaultEndpoint,
			Language:      provider.DefaultLanguage,
			Level:         "default",
			OffsetUnits:   provider.UnitsScalar.String(),
			Timeout:       Duration{provider.DefaultTimeout},
			RatePerMinute: provider.DefaultRatePerMinute,
		},
		Render: RenderConfig{MaxSuggestions: diag.DefaultMaxSuggestions},
		Cache:  CacheConfig{Enabled: true, MemoryEntries: driver.DefaultMemoryEntries},
	}
}

// Find walks from startDir up to the filesystem root looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadFile decodes path over the defaults and validates the result.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Load reads explicit when set, otherwise the nearest voltaire.toml above
// startDir, otherwise the defaults. Environment overrides are applied last.
func Load(explicit, startDir string) (Config, error) {
	var cfg Config
	switch {
	case explicit != "":
		if _, err := os.Stat(explicit); errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("%s: %w", explicit, ErrNoConfig)
		}
		c, err := LoadFile(explicit)
		if err != nil {
			return Config{}, err
		}
		cfg = c
	default:
		path, ok, err := Find(startDir)
		if err != nil {
			return Config{}, err
		}
		if ok {
			if cfg, err = LoadFile(path); err != nil {
				return Config{}, err
			}
		} else {
			cfg = Default()
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

// LoadDotEnv loads .env files into the process environment without overriding
// variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides credentials and endpoint from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvUsername); ok {
		c.Username = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvAPIKey); ok {
		c.APIKey = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvEndpoint); ok && strings.TrimSpace(v) != "" {
		c.Provider.Endpoint = strings.TrimSpace(v)
	}
}

// Validate checks values that cannot be expressed in the TOML types.
func (c *Config) Validate() error {
	if _, err := provider.ParseUnits(c.Provider.OffsetUnits); err != nil {
		return err
	}
	switch strings.ToLower(c.Provider.Level) {
	case "", "default", "picky":
	default:
		return fmt.Errorf("invalid provider.level %q (expected default|picky)", c.Provider.Level)
	}
	if c.Provider.Timeout.Duration < 0 {
		return fmt.Errorf("provider.timeout must not be negative")
	}
	if c.Render.MaxSuggestions < 1 {
		return fmt.Errorf("render.max_suggestions must be at least 1, got %d", c.Render.MaxSuggestions)
	}
	if c.Cache.MemoryEntries < 0 {
		return fmt.Errorf("cache.memory_entries must not be negative")
	}
	if _, err := c.RuleSet(); err != nil {
		return err
	}
	return nil
}

// RuleSet builds the house rules. No [[rules]] means the built-in ones;
// house_rules = false disables them altogether.
func (c *Config) RuleSet() (fix.RuleSet, error) {
	if c.HouseRules != nil && !*c.HouseRules {
		return nil, nil
	}
	if len(c.Rules) == 0 {
		return fix.DefaultRules(), nil
	}
	rules := make(fix.RuleSet, 0, len(c.Rules))
	for i, rc := range c.Rules {
		var opts []fix.Option
		if rc.ID != "" {
			opts = append(opts, fix.WithID(rc.ID))
		}
		if rc.Guard != nil && !*rc.Guard {
			opts = append(opts, fix.WithoutGuard())
		}
		r, err := fix.NewRule(rc.Pattern, rc.Replacement, rc.Explanation, opts...)
		if err != nil {
			return nil, fmt.Errorf("rules[%d]: %w", i, err)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// Units returns the offset units the provider reports in.
func (c *Config) Units() provider.OffsetUnits {
	u, err := provider.ParseUnits(c.Provider.OffsetUnits)
	if err != nil {
		return provider.UnitsScalar
	}
	return u
}

// ProviderOptions returns the HTTP client settings.
func (c *Config) ProviderOptions() provider.Options {
	return provider.Options{
		Endpoint:      c.Provider.Endpoint,
		Username:      c.Username,
		APIKey:        c.APIKey,
		Timeout:       c.Provider.Timeout.Duration,
		RatePerMinute: c.Provider.RatePerMinute,
	}
}

// Request returns the per-check request template (Text left empty).
func (c *Config) Request() provider.Request {
	return provider.Request{
		Language:      c.Provider.Language,
		Level:         c.Provider.Level,
		DisabledRules: c.Provider.DisabledRules,
	}
}

// CacheDir returns the configured disk cache directory or the XDG default.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return driver.DefaultCacheDir("voltaire")
}
