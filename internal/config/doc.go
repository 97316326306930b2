// Package config loads application settings from defaults, an optional
// config file (YAML, JSON or TOML) and DLREMIND_-prefixed environment
// variables, then validates them.
package config
