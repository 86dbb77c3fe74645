// Package logging assembles structured slog loggers and formatting helpers used
// across equiv.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so updaters can tag log lines
// with the run, target and publisher they are working on. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
