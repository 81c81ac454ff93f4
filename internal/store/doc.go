// Package store owns the embedded SQLite database behind vaultcapture.
//
// Pool bounds the number of open connections and configures every connection
// with write-ahead journaling, a busy timeout, and foreign-key enforcement.
// Mutations that touch several rows run inside a UnitOfWork, which rolls back
// on every exit path that did not commit. MigrationRunner applies the embedded
// schema migrations exactly once each and seeds the settings row.
package store
