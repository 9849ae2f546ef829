// Package logging assembles structured slog loggers used across the tracker.
//
// It owns the console and JSON handlers, routes file output through
// lumberjack so logs rotate by size and age, and exposes context-aware helpers
// that tag lines with show IDs, scan job IDs, and correlation IDs. A no-op
// logger is provided for tests and optional wiring.
package logging
