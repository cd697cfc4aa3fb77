package testsupport

import (
	"context"
	"log/slog"
	"sync"
)

// LoggedRecord is a flattened log record captured by LogRecorder.
type LoggedRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// LogRecorder is a slog.Handler that keeps every record in memory.
type LogRecorder struct {
	mu      *sync.Mutex
	records *[]LoggedRecord
	attrs   []slog.Attr
}

// NewLogRecorder returns a recorder and a logger writing into it.
func NewLogRecorder() (*LogRecorder, *slog.Logger) {
	rec := &LogRecorder{mu: &sync.Mutex{}, records: &[]LoggedRecord{}}
	return rec, slog.New(rec)
}

func (r *LogRecorder) Enabled(context.Context, slog.Level) bool { return true }

func (r *LogRecorder) Handle(_ context.Context, record slog.Record) error {
	attrs := make(map[string]any, record.NumAttrs()+len(r.attrs))
	for _, a := range r.attrs {
		attrs[a.Key] = a.Value.Resolve().Any()
	}
	record.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Resolve().Any()
		return true
	})
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.records = append(*r.records, LoggedRecord{Level: record.Level, Message: record.Message, Attrs: attrs})
	return nil
}

func (r *LogRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := append(append([]slog.Attr(nil), r.attrs...), attrs...)
	return &LogRecorder{mu: r.mu, records: r.records, attrs: next}
}

// WithGroup is a no-op; recorded keys are never qualified.
func (r *LogRecorder) WithGroup(string) slog.Handler { return r }

// Records returns a copy of the captured records.
func (r *LogRecorder) Records() []LoggedRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]LoggedRecord(nil), *r.records...)
}

// AtLevel returns the captured records with exactly the given level.
func (r *LogRecorder) AtLevel(level slog.Level) []LoggedRecord {
	var out []LoggedRecord
	for _, rec := range r.Records() {
		if rec.Level == level {
			out = append(out, rec)
		}
	}
	return out
}
