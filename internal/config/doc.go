// Package config loads, validates, and normalizes Introspect configuration.
//
// Configuration lives in a single TOML file (default
// ~/.config/introspect/config.toml). Load applies defaults, environment
// fallbacks for API keys, tilde expansion on paths, and validation so the rest
// of the system can assume a well-formed Config.
package config
