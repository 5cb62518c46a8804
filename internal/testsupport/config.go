// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"sweeper/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test:
// a sqlite catalog, single-worker scanning, and log/report dirs under the
// test's temp root. Options are applied last.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.LogDir = filepath.Join(base, "logs")
	cfg.ReportDir = filepath.Join(base, "reports")
	cfg.Catalog.Source = "sqlite"
	cfg.Catalog.DatabasePath = filepath.Join(base, "catalog.db")
	cfg.Dedupe.Workers = 1

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithCatalogAPI switches the config onto the HTTP catalog backend.
func WithCatalogAPI(url, token string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Catalog.Source = "api"
		cfg.Catalog.API.URL = url
		cfg.Catalog.API.APIToken = token
	}
}

// WithNtfyTopic enables notifications against the given topic URL.
func WithNtfyTopic(topic string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Notifications.NtfyTopic = topic
	}
}

// WriteConfigFile serializes cfg into the temp tree and returns its path,
// for tests that drive the CLI through --config.
func WriteConfigFile(t testing.TB, cfg *config.Config) string {
	t.Helper()

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode test config: %v", err)
	}
	path := filepath.Join(BaseDir(cfg), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	return path
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.LogDir)
}
