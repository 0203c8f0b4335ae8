// Package config loads application settings from defaults, an optional
// TOML file, a .env file, and process environment variables, in that
// order of increasing precedence. It is consumed exactly once at
// startup, before the logging pipeline is constructed.
package config
