// Package history keeps an optional SQLite ledger of conversion runs.
//
// Each run is stored once, after it finishes, with its outcome, the input
// and output paths, the record counts and the per-reason drop counts. The
// ledger is informational: a conversion never depends on it, and callers
// treat a failure to record as a warning.
//
// Schema changes bump schemaVersion in schema.go; an older database is
// rejected with ErrSchemaMismatch and must be deleted.
package history
