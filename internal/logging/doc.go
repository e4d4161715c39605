// Package logging assembles the slog loggers used by cinedex commands.
//
// It owns the console and JSON handlers, the per-run log file that mirrors
// terminal output, and context helpers that tag every line emitted during an
// ingest or enrich run with its run id. A no-op logger is provided for tests
// and for wiring code that cannot fail.
package logging
