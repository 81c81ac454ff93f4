// Package logging assembles structured slog loggers used across vaultcapture.
//
// It owns the console and JSON handlers, fans records out to the terminal and
// the persistent log file, and exposes context-aware helpers so ingestion and
// lifecycle code can tag log lines with job IDs and correlation IDs. A no-op
// logger is provided for tests and wiring code that cannot fail.
package logging
