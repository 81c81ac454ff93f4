// Package ingest validates user-selected files and relocates them into the
// managed content store.
//
// Prepare works in two passes. The first resolves, size-checks, classifies,
// and sniffs every input without touching the content store, so a bad file
// anywhere in the batch aborts before anything is written. The second copies
// each file into <root>/<YYYY>/<MM>/<batch_ms>-<index>-<name>, hashing the
// bytes as they stream and verifying the copy before it is renamed into
// place. Copies from a batch that fails part way are removed, and callers
// that fail after Prepare (for example on the database insert) call
// Batch.Discard to remove them as well.
package ingest
