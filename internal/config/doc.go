// Package config handles configuration loading, parsing, and validation
// from various sources (environment variables, .env and YAML files). The
// resulting Config is built once at startup and handed explicitly to the
// components that need it; nothing reads settings from ambient globals.
package config
