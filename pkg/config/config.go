// Package config loads loupe configuration from TOML, YAML, or JSON files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for loupe.
type Config struct {
	// Engine settings
	Engine EngineConfig `koanf:"engine" json:"engine" toml:"engine"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" json:"exclude" toml:"exclude"`

	// Output settings
	Output OutputConfig `koanf:"output" json:"output" toml:"output"`
}

// EngineConfig controls the analysis engine.
type EngineConfig struct {
	// Language is the default lexical family hint: "clike" or "generic".
	Language string `koanf:"language" json:"language" toml:"language"`
	// ShingleSize is the k-gram size for near-duplicate matching.
	ShingleSize int `koanf:"shingle_size" json:"shingle_size" toml:"shingle_size"`
	// SimilarityThreshold is the minimum Jaccard similarity for near pairs.
	SimilarityThreshold float64 `koanf:"similarity_threshold" json:"similarity_threshold" toml:"similarity_threshold"`
	// MinTokens drops spans below this canonical token count from duplicate
	// detection.
	MinTokens int `koanf:"min_tokens" json:"min_tokens" toml:"min_tokens"`
	// Workers bounds the analysis pool; 0 means 2x NumCPU.
	Workers int `koanf:"workers" json:"workers" toml:"workers"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns   []string `koanf:"patterns" json:"patterns" toml:"patterns"`
	Extensions []string `koanf:"extensions" json:"extensions" toml:"extensions"`
	Dirs       []string `koanf:"dirs" json:"dirs" toml:"dirs"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" json:"format" toml:"format"` // text, json, markdown, toon
	Color  bool   `koanf:"color" json:"color" toml:"color"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Language:            "generic",
			ShingleSize:         5,
			SimilarityThreshold: 0.8,
			MinTokens:           0,
			Workers:             0,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.min.js",
				"*.min.css",
			},
			Extensions: []string{
				".lock",
				".sum",
			},
			Dirs: []string{
				"vendor",
				"node_modules",
				".git",
				"dist",
				"build",
				"__pycache__",
			},
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Load loads configuration from a file. JSON files are additionally
// checked against the embedded schema before unmarshaling.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		if err := validateJSONFile(path); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault tries to load config from standard locations or returns
// defaults.
func LoadOrDefault() *Config {
	configNames := []string{
		"loupe.toml",
		"loupe.yaml",
		"loupe.yml",
		"loupe.json",
		".loupe.toml",
		".loupe.yaml",
		".loupe.yml",
		".loupe.json",
	}

	for _, name := range configNames {
		if _, err := os.Stat(name); err == nil {
			cfg, err := Load(name)
			if err == nil {
				return cfg
			}
		}
	}

	return DefaultConfig()
}

// Validate rejects setups the engine would refuse.
func (c *Config) Validate() error {
	if c.Engine.ShingleSize <= 0 {
		return fmt.Errorf("engine.shingle_size must be positive, got %d", c.Engine.ShingleSize)
	}
	if c.Engine.SimilarityThreshold <= 0 || c.Engine.SimilarityThreshold > 1 {
		return fmt.Errorf("engine.similarity_threshold must be in (0, 1], got %g", c.Engine.SimilarityThreshold)
	}
	if c.Engine.MinTokens < 0 {
		return fmt.Errorf("engine.min_tokens must not be negative, got %d", c.Engine.MinTokens)
	}
	switch c.Engine.Language {
	case "", "generic", "unknown", "clike", "c", "cpp", "c++":
	default:
		return fmt.Errorf("engine.language %q is not supported", c.Engine.Language)
	}
	switch c.Output.Format {
	case "", "text", "json", "markdown", "toon":
	default:
		return fmt.Errorf("output.format %q is not supported", c.Output.Format)
	}
	return nil
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	ext := filepath.Ext(path)
	for _, excludeExt := range c.Exclude.Extensions {
		if ext == excludeExt {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}
