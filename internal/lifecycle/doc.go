// Package lifecycle is the entry point for creating and driving ingestion
// jobs.
//
// Service.Enqueue prepares files through the ingestor and then records the
// job and its assets in one transaction. All file copying finishes before the
// transaction opens. Reads and status changes go straight to the job
// repository, which enforces the transition table.
package lifecycle
