// Package config loads goblocks configuration from YAML files and
// environment variables with defaults for every key.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config represents the complete goblocks configuration.
// It can be loaded from .goblocks.yaml with environment variable overrides.
type Config struct {
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	Index    IndexConfig    `yaml:"index" mapstructure:"index"`
	Extract  ExtractConfig  `yaml:"extract" mapstructure:"extract"`
	Split    SplitConfig    `yaml:"split" mapstructure:"split"`
	Search   SearchConfig   `yaml:"search" mapstructure:"search"`
}

// DatabaseConfig locates the SQLite index database.
type DatabaseConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // Override default ~/.goblocks/goblocks.db
}

// IndexConfig controls project indexing.
type IndexConfig struct {
	IncludeTests  bool     `yaml:"include_tests" mapstructure:"include_tests"`   // index *_test.go files
	IncludeVendor bool     `yaml:"include_vendor" mapstructure:"include_vendor"` // index vendor/ directories
	Workers       int      `yaml:"workers" mapstructure:"workers"`               // 0 means NumCPU capped at 8
	Exclude       []string `yaml:"exclude" mapstructure:"exclude"`               // glob patterns to skip
}

// ExtractConfig selects the extractor behavior options.
type ExtractConfig struct {
	AttachComments bool `yaml:"attach_comments" mapstructure:"attach_comments"`
	FlushTrailing  bool `yaml:"flush_trailing" mapstructure:"flush_trailing"`
}

// SplitConfig sets split command defaults.
type SplitConfig struct {
	Strategy string `yaml:"strategy" mapstructure:"strategy"` // decl, kind, or receiver
	Force    bool   `yaml:"force" mapstructure:"force"`       // overwrite existing output files
}

// SearchConfig sets search defaults and cache behavior.
type SearchConfig struct {
	Limit     int           `yaml:"limit" mapstructure:"limit"`           // default result limit (1-100)
	CacheSize int           `yaml:"cache_size" mapstructure:"cache_size"` // LRU entries
	CacheTTL  time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`   // cached response lifetime
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "", // Empty means use default ~/.goblocks/goblocks.db
		},
		Index: IndexConfig{
			IncludeTests:  true,
			IncludeVendor: false,
			Workers:       0,
			Exclude:       nil,
		},
		Extract: ExtractConfig{
			AttachComments: true,
			FlushTrailing:  true,
		},
		Split: SplitConfig{
			Strategy: "receiver",
			Force:    false,
		},
		Search: SearchConfig{
			Limit:     10,
			CacheSize: 128,
			CacheTTL:  5 * time.Minute,
		},
	}
}

// DatabasePath resolves the SQLite database file, falling back to
// ~/.goblocks/goblocks.db when no explicit path is configured.
func (c *Config) DatabasePath() (string, error) {
	if c.Database.Path != "" {
		return c.Database.Path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".goblocks", "goblocks.db"), nil
}
