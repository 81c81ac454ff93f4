// Package services defines shared utilities consumed by the ingestion,
// lifecycle, and collaborator packages.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, component names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (validation vs io vs persistence) without string matching.
//
// Failures are surfaced to the caller as-is; nothing in this package retries.
package services
