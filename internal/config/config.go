package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Catalog selects and parameterizes the catalog backend.
type Catalog struct {
	// Source is the backend kind: "sqlite" or "api".
	Source       string `toml:"source"`
	DatabasePath string `toml:"database_path"`
	API          API    `toml:"api"`
}

// API configures the HTTP catalog backend.
type API struct {
	URL            string `toml:"url"`
	APIToken       string `toml:"api_token"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Dedupe carries the similarity and quality-scoring thresholds.
type Dedupe struct {
	FuzzyThreshold    float64  `toml:"fuzzy_threshold"`
	NgramThreshold    float64  `toml:"ngram_threshold"`
	NgramSize         int      `toml:"ngram_size"`
	QualityMarkerTags []string `toml:"quality_marker_tags"`
	SizeOutlierRatio  float64  `toml:"size_outlier_ratio"`
	Workers           int      `toml:"workers"`
}

// Executor throttles live catalog mutations.
type Executor struct {
	RequestsPerSecond float64 `toml:"requests_per_second"`
	RequestTimeout    int     `toml:"request_timeout"`
}

// Notifications configures ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Config is the root configuration document.
type Config struct {
	LogDir    string `toml:"log_dir"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	ReportDir string `toml:"report_dir"`

	Catalog       Catalog       `toml:"catalog"`
	Dedupe        Dedupe        `toml:"dedupe"`
	Executor      Executor      `toml:"executor"`
	Notifications Notifications `toml:"notifications"`
}

// DefaultConfigPath returns the conventional config file location.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "sweeper", "config.toml"), nil
}

// Load reads the config at path, layering it over defaults. An empty path
// falls back to DefaultConfigPath; a missing file at the default location is
// not an error and yields the defaults.
func Load(path string) (*Config, error) {
	usingDefaultPath := strings.TrimSpace(path) == ""
	if usingDefaultPath {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	cfg := Default()
	data, err := os.ReadFile(expandPath(path))
	if err != nil {
		if usingDefaultPath && errors.Is(err, fs.ErrNotExist) {
			cfg.normalize()
			return &cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.normalize()
	return &cfg, nil
}

// WriteSample writes the embedded sample configuration to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	path = expandPath(path)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// EnsureDirectories creates the directories the pipeline writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.LogDir, c.ReportDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// normalize expands home-relative paths and fills zero values that have no
// meaningful zero (worker counts, timeouts).
func (c *Config) normalize() {
	c.LogDir = expandPath(c.LogDir)
	c.ReportDir = expandPath(c.ReportDir)
	c.Catalog.DatabasePath = expandPath(c.Catalog.DatabasePath)
	c.Catalog.Source = strings.ToLower(strings.TrimSpace(c.Catalog.Source))
	if c.Catalog.API.RequestTimeout <= 0 {
		c.Catalog.API.RequestTimeout = defaultAPIRequestTimeout
	}
	if c.Executor.RequestTimeout <= 0 {
		c.Executor.RequestTimeout = defaultExecutorRequestTimeout
	}
	if c.Executor.RequestsPerSecond <= 0 {
		c.Executor.RequestsPerSecond = defaultExecutorRequestsPerSecond
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func expandPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
