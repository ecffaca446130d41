// Package config loads, normalizes, and validates the dropzone
// configuration file.
package config
