// Package config loads, normalizes, and validates tokenark configuration.
//
// Configuration lives in a TOML file, found at ~/.config/tokenark/config.toml
// by default with a project-local tokenark.toml fallback. Load applies
// defaults first, then the file, then normalization (path expansion, env-var
// fallbacks), then validation. A missing file is not an error: the defaults
// are usable for EVM chains once an API key is supplied via environment.
package config
