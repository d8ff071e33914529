// Package logging builds slog loggers for the CLI and library components.
//
// Output goes to stdout and, when a log directory is configured, to
// lightbox.log inside it. Components attach themselves via
// NewComponentLogger so records can be filtered per subsystem.
package logging
