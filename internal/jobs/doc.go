// Package jobs persists ingestion jobs and their media assets and owns the
// job status state machine.
//
// Repository is the only writer of job status. Every status change goes
// through UpdateStatus, which checks the transition table and applies the
// change in one transaction. InsertJobWithAssets writes a job and all of its
// assets atomically: either every row exists afterwards or none do.
//
// Reads return nil (not an error) when a job is unknown so callers can tell
// a missing job apart from a failing database.
package jobs
