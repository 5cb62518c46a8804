package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateDedupe(); err != nil {
		return err
	}
	if err := c.validateExecutor(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateCatalog() error {
	switch c.Catalog.Source {
	case "sqlite":
		if strings.TrimSpace(c.Catalog.DatabasePath) == "" {
			return errors.New("catalog.database_path must be set when catalog.source is \"sqlite\"")
		}
	case "api":
		if strings.TrimSpace(c.Catalog.API.URL) == "" {
			return errors.New("catalog.api.url must be set when catalog.source is \"api\"")
		}
		if strings.TrimSpace(c.Catalog.API.APIToken) == "" {
			return errors.New("catalog.api.api_token must be set when catalog.source is \"api\"")
		}
	default:
		return fmt.Errorf("catalog.source must be \"sqlite\" or \"api\", got %q", c.Catalog.Source)
	}
	return nil
}

func (c *Config) validateDedupe() error {
	if c.Dedupe.FuzzyThreshold < 0 || c.Dedupe.FuzzyThreshold > 100 {
		return errors.New("dedupe.fuzzy_threshold must be between 0 and 100")
	}
	if c.Dedupe.NgramThreshold < 0 || c.Dedupe.NgramThreshold > 100 {
		return errors.New("dedupe.ngram_threshold must be between 0 and 100")
	}
	if c.Dedupe.NgramSize < 2 {
		return errors.New("dedupe.ngram_size must be at least 2")
	}
	if c.Dedupe.SizeOutlierRatio <= 1 {
		return errors.New("dedupe.size_outlier_ratio must be greater than 1")
	}
	if c.Dedupe.Workers < 0 {
		return errors.New("dedupe.workers must not be negative")
	}
	return nil
}

func (c *Config) validateExecutor() error {
	if c.Executor.RequestsPerSecond <= 0 {
		return errors.New("executor.requests_per_second must be positive")
	}
	if c.Executor.RequestTimeout <= 0 {
		return errors.New("executor.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("log_format must be \"console\" or \"json\", got %q", c.LogFormat)
	}
}
