package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"sweeper/internal/catalog"
	"sweeper/internal/config"
	"sweeper/internal/services"
	"sweeper/internal/services/libraryapi"
	"sweeper/internal/services/librarydb"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

// openAdapter builds the catalog adapter the config selects. The returned
// close function releases backend resources and is safe to call once.
func (c *commandContext) openAdapter(cfg *config.Config) (catalog.Adapter, func() error, error) {
	switch cfg.Catalog.Source {
	case "sqlite":
		store, err := librarydb.Open(cfg.Catalog.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case "api":
		client := libraryapi.NewFromConfig(cfg.Catalog.API)
		return client, func() error { return nil }, nil
	default:
		return nil, nil, services.Wrap(services.ErrConfiguration, "cli", "open adapter",
			"unknown catalog source "+cfg.Catalog.Source, nil)
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
