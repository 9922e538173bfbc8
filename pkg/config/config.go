package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all Condense configuration.
type Config struct {
	Strategy string        `yaml:"strategy"`
	Pruning  PruningConfig `yaml:"pruning"`
	Token    TokenConfig   `yaml:"token"`
	Cache    CacheConfig   `yaml:"cache"`
}

// PruningConfig controls which pruning operations run and how far they may
// cut.
type PruningConfig struct {
	RemoveDebugStatements bool `yaml:"remove_debug_statements"`
	CompressWhitespace    bool `yaml:"compress_whitespace"`
	RemoveComments        bool `yaml:"remove_comments"`
	SummarizeDocstrings   bool `yaml:"summarize_docstrings"`
	AllowAggressive       bool `yaml:"allow_aggressive"`

	// Validation caps. A result cutting past its cap is rejected and
	// pruning retries with safe operations only.
	MaxCodeReduction     float64 `yaml:"max_code_reduction"`
	MaxGenericReduction  float64 `yaml:"max_generic_reduction"`
	MinFunctionRetention float64 `yaml:"min_function_retention"`
}

// TokenConfig controls token accounting.
type TokenConfig struct {
	DefaultTargetTokens int `yaml:"default_target_tokens"`
}

// CacheConfig controls the optimization result cache.
type CacheConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxSizeMB   int           `yaml:"max_size_mb"`
	TTL         time.Duration `yaml:"ttl"`
	Compression bool          `yaml:"compression"`
	Path        string        `yaml:"path"`
}

// Presets returns the names of the built-in strategy presets.
func Presets() []string {
	return []string{"balanced", "aggressive", "conservative", "code_focused", "documentation_focused"}
}

// Default returns a Config with sensible defaults (the balanced preset).
func Default() *Config {
	return &Config{
		Strategy: "balanced",
		Pruning: PruningConfig{
			RemoveDebugStatements: true,
			CompressWhitespace:    true,
			RemoveComments:        true,
			SummarizeDocstrings:   true,
			AllowAggressive:       false,
			MaxCodeReduction:      0.9,
			MaxGenericReduction:   0.8,
			MinFunctionRetention:  0.9,
		},
		Token: TokenConfig{
			DefaultTargetTokens: 4000,
		},
		Cache: CacheConfig{
			Enabled:     true,
			MaxSizeMB:   100,
			TTL:         24 * time.Hour,
			Compression: true,
			Path:        "condense-cache.db",
		},
	}
}

// ApplyPreset overwrites strategy-dependent fields from a named preset.
func (c *Config) ApplyPreset(name string) error {
	switch name {
	case "balanced":
		c.Pruning.RemoveDebugStatements = true
		c.Pruning.CompressWhitespace = true
		c.Pruning.RemoveComments = true
		c.Pruning.SummarizeDocstrings = true
		c.Pruning.AllowAggressive = false
	case "aggressive":
		c.Pruning.RemoveDebugStatements = true
		c.Pruning.CompressWhitespace = true
		c.Pruning.RemoveComments = true
		c.Pruning.SummarizeDocstrings = true
		c.Pruning.AllowAggressive = true
	case "conservative":
		c.Pruning.RemoveDebugStatements = true
		c.Pruning.CompressWhitespace = true
		c.Pruning.RemoveComments = false
		c.Pruning.SummarizeDocstrings = false
		c.Pruning.AllowAggressive = false
	case "code_focused":
		c.Pruning.RemoveDebugStatements = true
		c.Pruning.CompressWhitespace = true
		c.Pruning.RemoveComments = true
		c.Pruning.SummarizeDocstrings = true
		c.Pruning.AllowAggressive = false
		c.Pruning.MinFunctionRetention = 0.95
	case "documentation_focused":
		c.Pruning.RemoveDebugStatements = true
		c.Pruning.CompressWhitespace = true
		c.Pruning.RemoveComments = false
		c.Pruning.SummarizeDocstrings = true
		c.Pruning.AllowAggressive = false
	default:
		return fmt.Errorf("unknown strategy preset %q", name)
	}
	c.Strategy = name
	return nil
}

// Validate checks field ranges after loading.
func (c *Config) Validate() error {
	if c.Pruning.MaxCodeReduction <= 0 || c.Pruning.MaxCodeReduction > 1 {
		return fmt.Errorf("pruning.max_code_reduction must be in (0, 1], got %v", c.Pruning.MaxCodeReduction)
	}
	if c.Pruning.MaxGenericReduction <= 0 || c.Pruning.MaxGenericReduction > 1 {
		return fmt.Errorf("pruning.max_generic_reduction must be in (0, 1], got %v", c.Pruning.MaxGenericReduction)
	}
	if c.Pruning.MinFunctionRetention < 0 || c.Pruning.MinFunctionRetention > 1 {
		return fmt.Errorf("pruning.min_function_retention must be in [0, 1], got %v", c.Pruning.MinFunctionRetention)
	}
	if c.Token.DefaultTargetTokens <= 0 {
		return fmt.Errorf("token.default_target_tokens must be positive, got %d", c.Token.DefaultTargetTokens)
	}
	if c.Cache.Enabled {
		if c.Cache.MaxSizeMB <= 0 {
			return fmt.Errorf("cache.max_size_mb must be positive, got %d", c.Cache.MaxSizeMB)
		}
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive, got %v", c.Cache.TTL)
		}
	}
	return nil
}

// Load reads a YAML config file and expands environment variables. A named
// strategy preset is applied first, so explicit fields in the file override
// the preset. Unknown keys are an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()

	var probe struct {
		Strategy string `yaml:"strategy"`
	}
	if err := yaml.Unmarshal([]byte(expanded), &probe); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if probe.Strategy != "" {
		if err := cfg.ApplyPreset(probe.Strategy); err != nil {
			return nil, err
		}
	}

	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
