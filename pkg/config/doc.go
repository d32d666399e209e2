// Package config loads and validates application configuration from
// environment variables.
package config
