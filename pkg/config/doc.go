// Package config handles configuration management for cogsync.
// It layers the built-in defaults, the user config file, the per-installation
// config file, COGSYNC_* environment variables and command-line flags, then
// decodes and validates the result.
package config
