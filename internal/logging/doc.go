// Package logging builds slog loggers with console and JSON handlers.
package logging
