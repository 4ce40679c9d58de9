package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidWorkers indicates a negative worker count
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrInvalidLimit indicates a search limit outside 1-100
	ErrInvalidLimit = errors.New("invalid search limit")

	// ErrInvalidStrategy indicates an unknown split strategy
	ErrInvalidStrategy = errors.New("invalid split strategy")

	// ErrInvalidCacheSettings indicates invalid search cache configuration
	ErrInvalidCacheSettings = errors.New("invalid cache settings")
)

// validStrategies are the split strategies the splitter knows
var validStrategies = map[string]bool{
	"decl":     true,
	"kind":     true,
	"receiver": true,
}

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateIndex(&cfg.Index); err != nil {
		errs = append(errs, err)
	}

	if err := validateSplit(&cfg.Split); err != nil {
		errs = append(errs, err)
	}

	if err := validateSearch(&cfg.Search); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateIndex(cfg *IndexConfig) error {
	// Zero workers means auto-sizing; only negative counts are invalid.
	if cfg.Workers < 0 {
		return fmt.Errorf("%w: workers cannot be negative, got %d", ErrInvalidWorkers, cfg.Workers)
	}
	// Exclude patterns are checked lazily by the indexer, which reports
	// the offending pattern in its own error.
	return nil
}

func validateSplit(cfg *SplitConfig) error {
	if !validStrategies[cfg.Strategy] {
		return fmt.Errorf("%w: %q (valid: decl, kind, receiver)", ErrInvalidStrategy, cfg.Strategy)
	}
	return nil
}

func validateSearch(cfg *SearchConfig) error {
	var errs []error

	if cfg.Limit < 1 || cfg.Limit > 100 {
		errs = append(errs, fmt.Errorf("%w: limit must be between 1 and 100, got %d", ErrInvalidLimit, cfg.Limit))
	}

	if cfg.CacheSize < 1 {
		errs = append(errs, fmt.Errorf("%w: cache_size must be positive, got %d", ErrInvalidCacheSettings, cfg.CacheSize))
	}

	if cfg.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("%w: cache_ttl cannot be negative, got %s", ErrInvalidCacheSettings, cfg.CacheTTL))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
