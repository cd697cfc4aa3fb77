// Package logging assembles structured slog loggers and formatting helpers used
// across detconv.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and stamps every record with the conversion run's session identifier. The
// package also provides a no-op logger for tests and for library callers that
// do not want diagnostics.
//
// Prefer these constructors over hand-rolled slog setup so per-record
// warnings and run summaries keep the same shape in every output format.
package logging
