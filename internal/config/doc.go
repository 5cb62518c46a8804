// Package config loads and validates sweeper's TOML configuration.
//
// Configuration resolves from an explicit --config path or the default
// ~/.config/sweeper/config.toml, layered over built-in defaults. Every
// threshold the dedupe pipeline consults lives here so runs are reproducible
// from a config file plus a catalog snapshot.
package config
