package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/JaimeStill/worldmap/internal/eligibility"
	"github.com/JaimeStill/worldmap/internal/issuances"
	"github.com/JaimeStill/worldmap/internal/matching"
	"github.com/JaimeStill/worldmap/internal/normalize"
)

const (
	EnvScreeningNameThreshold   = "WORLDMAP_SCREENING_NAME_THRESHOLD"
	EnvScreeningFallbackPool    = "WORLDMAP_SCREENING_FALLBACK_POOL"
	EnvScreeningMaxCandidates   = "WORLDMAP_SCREENING_MAX_CANDIDATES"
	EnvScreeningWorkers         = "WORLDMAP_SCREENING_WORKERS"
	EnvScreeningBookName        = "WORLDMAP_SCREENING_BOOK_NAME"
	EnvScreeningDefaultLanguage = "WORLDMAP_SCREENING_DEFAULT_LANGUAGE"
	EnvScreeningIssueRetries    = "WORLDMAP_SCREENING_ISSUE_RETRIES"
)

// ScreeningConfig holds matching and bulk issue settings.
// Pointer fields distinguish an explicit zero from an unset value.
type ScreeningConfig struct {
	NameThreshold   *int   `toml:"name_threshold"`
	FallbackPool    int    `toml:"fallback_pool"`
	MaxCandidates   int    `toml:"max_candidates"`
	Workers         int    `toml:"workers"`
	BookName        string `toml:"book_name"`
	DefaultLanguage string `toml:"default_language"`
	IssueRetries    int    `toml:"issue_retries"`
}

// MatchingOptions converts the config into match engine options.
func (c *ScreeningConfig) MatchingOptions() matching.Options {
	return matching.Options{
		Threshold:     *c.NameThreshold,
		FallbackPool:  c.FallbackPool,
		MaxCandidates: c.MaxCandidates,
		Workers:       c.Workers,
	}
}

// IssueOptions converts the config into bulk issue options.
func (c *ScreeningConfig) IssueOptions() issuances.Options {
	return issuances.Options{
		BookName:        c.BookName,
		DefaultLanguage: c.DefaultLanguage,
		Retries:         c.IssueRetries,
	}
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ScreeningConfig) Finalize() error {
	c.loadDefaults()
	if err := c.loadEnv(); err != nil {
		return err
	}
	c.DefaultLanguage = normalize.Language(c.DefaultLanguage)
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ScreeningConfig) Merge(overlay *ScreeningConfig) {
	if overlay.NameThreshold != nil {
		v := *overlay.NameThreshold
		c.NameThreshold = &v
	}
	if overlay.FallbackPool != 0 {
		c.FallbackPool = overlay.FallbackPool
	}
	if overlay.MaxCandidates != 0 {
		c.MaxCandidates = overlay.MaxCandidates
	}
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
	if overlay.BookName != "" {
		c.BookName = overlay.BookName
	}
	if overlay.DefaultLanguage != "" {
		c.DefaultLanguage = overlay.DefaultLanguage
	}
	if overlay.IssueRetries != 0 {
		c.IssueRetries = overlay.IssueRetries
	}
}

func (c *ScreeningConfig) loadDefaults() {
	defaults := matching.DefaultOptions()

	if c.NameThreshold == nil {
		v := defaults.Threshold
		c.NameThreshold = &v
	}
	if c.FallbackPool == 0 {
		c.FallbackPool = defaults.FallbackPool
	}
	if c.MaxCandidates == 0 {
		c.MaxCandidates = defaults.MaxCandidates
	}
	if c.BookName == "" {
		c.BookName = "Shepherd Staff"
	}
	if c.DefaultLanguage == "" {
		c.DefaultLanguage = "KISWAHILI"
	}
	if c.IssueRetries == 0 {
		c.IssueRetries = 3
	}
}

func (c *ScreeningConfig) loadEnv() error {
	ints := []struct {
		env string
		dst *int
	}{
		{EnvScreeningFallbackPool, &c.FallbackPool},
		{EnvScreeningMaxCandidates, &c.MaxCandidates},
		{EnvScreeningWorkers, &c.Workers},
		{EnvScreeningIssueRetries, &c.IssueRetries},
	}

	if v := os.Getenv(EnvScreeningNameThreshold); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvScreeningNameThreshold, err)
		}
		c.NameThreshold = &n
	}
	for _, i := range ints {
		v := os.Getenv(i.env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", i.env, err)
		}
		*i.dst = n
	}

	if v := os.Getenv(EnvScreeningBookName); v != "" {
		c.BookName = v
	}
	if v := os.Getenv(EnvScreeningDefaultLanguage); v != "" {
		c.DefaultLanguage = v
	}
	return nil
}

func (c *ScreeningConfig) validate() error {
	if err := c.MatchingOptions().Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.BookName) == "" {
		return fmt.Errorf("book_name required")
	}
	if !eligibility.LanguageAllowed(c.DefaultLanguage) {
		return fmt.Errorf("default_language %q not in %v", c.DefaultLanguage, eligibility.AllowedLanguages())
	}
	if c.IssueRetries < 1 {
		return fmt.Errorf("invalid issue_retries: %d", c.IssueRetries)
	}
	return nil
}
