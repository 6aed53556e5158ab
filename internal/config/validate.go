package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
	"github.com/mvp-joe/component-atlas/internal/component"
	"github.com/mvp-joe/component-atlas/internal/logging"
)

var (
	// ErrEmptyManifest indicates a missing manifest path
	ErrEmptyManifest = errors.New("empty manifest path")

	// ErrEmptyStore indicates a missing store path
	ErrEmptyStore = errors.New("empty store path")

	// ErrInvalidCategory indicates a classifier rule naming an unknown category
	ErrInvalidCategory = errors.New("invalid category rule")

	// ErrInvalidGlob indicates a glob pattern that does not compile
	ErrInvalidGlob = errors.New("invalid glob pattern")

	// ErrInvalidLogLevel indicates an unknown log level
	ErrInvalidLogLevel = errors.New("invalid log level")

	// ErrInvalidCacheSize indicates a negative search cache size
	ErrInvalidCacheSize = errors.New("invalid search cache size")
)

// Validate checks that the configuration is valid and complete.
// All problems are reported together; each wraps one of the sentinel errors.
func Validate(cfg *Config) error {
	var errs []error

	if strings.TrimSpace(cfg.Manifest) == "" {
		errs = append(errs, fmt.Errorf("%w: manifest is required", ErrEmptyManifest))
	}
	if strings.TrimSpace(cfg.Store) == "" {
		errs = append(errs, fmt.Errorf("%w: store is required", ErrEmptyStore))
	}

	errs = append(errs, validatePaths(&cfg.Paths)...)
	errs = append(errs, validateCategories(cfg.Categories)...)

	if cfg.Server.SearchCacheSize < 0 {
		errs = append(errs, fmt.Errorf("%w: must be >= 0, got %d", ErrInvalidCacheSize, cfg.Server.SearchCacheSize))
	}

	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidLogLevel, err))
	}

	return errors.Join(errs...)
}

func validatePaths(cfg *PathsConfig) []error {
	var errs []error
	groups := map[string][]string{
		"components": cfg.Components,
		"docs":       cfg.Docs,
		"ignore":     cfg.Ignore,
	}
	for _, name := range []string{"components", "docs", "ignore"} {
		for _, pattern := range groups[name] {
			if _, err := glob.Compile(pattern, '/'); err != nil {
				errs = append(errs, fmt.Errorf("%w: paths.%s %q: %v", ErrInvalidGlob, name, pattern, err))
			}
		}
	}
	return errs
}

func validateCategories(rules []component.CategoryRule) []error {
	var errs []error
	for i, rule := range rules {
		if _, err := component.CompileRule(rule); err != nil {
			errs = append(errs, fmt.Errorf("%w: categories[%d]: %v", ErrInvalidCategory, i, err))
		}
	}
	return errs
}
