package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (GOBLOCKS_*)
// 2. Config file (explicit path, or .goblocks.yaml in cwd then $HOME)
// 3. Default values
//
// An explicit path must exist; the searched locations are optional.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".goblocks")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("GOBLOCKS")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., GOBLOCKS_SEARCH_LIMIT)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvKeys(v)

	// Set defaults in viper
	setDefaults(v)

	// Try to read config file
	if err := v.ReadInConfig(); err != nil {
		if path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Searched config file not found is acceptable
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal into config struct
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate the configuration
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// bindEnvKeys binds environment variables to config keys
func bindEnvKeys(v *viper.Viper) {
	// Database configuration
	_ = v.BindEnv("database.path")

	// Index configuration
	_ = v.BindEnv("index.include_tests")
	_ = v.BindEnv("index.include_vendor")
	_ = v.BindEnv("index.workers")
	_ = v.BindEnv("index.exclude")

	// Extract configuration
	_ = v.BindEnv("extract.attach_comments")
	_ = v.BindEnv("extract.flush_trailing")

	// Split configuration
	_ = v.BindEnv("split.strategy")
	_ = v.BindEnv("split.force")

	// Search configuration
	_ = v.BindEnv("search.limit")
	_ = v.BindEnv("search.cache_size")
	_ = v.BindEnv("search.cache_ttl")
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	// Database defaults
	v.SetDefault("database.path", defaults.Database.Path)

	// Index defaults
	v.SetDefault("index.include_tests", defaults.Index.IncludeTests)
	v.SetDefault("index.include_vendor", defaults.Index.IncludeVendor)
	v.SetDefault("index.workers", defaults.Index.Workers)
	v.SetDefault("index.exclude", defaults.Index.Exclude)

	// Extract defaults
	v.SetDefault("extract.attach_comments", defaults.Extract.AttachComments)
	v.SetDefault("extract.flush_trailing", defaults.Extract.FlushTrailing)

	// Split defaults
	v.SetDefault("split.strategy", defaults.Split.Strategy)
	v.SetDefault("split.force", defaults.Split.Force)

	// Search defaults
	v.SetDefault("search.limit", defaults.Search.Limit)
	v.SetDefault("search.cache_size", defaults.Search.CacheSize)
	v.SetDefault("search.cache_ttl", defaults.Search.CacheTTL)
}
