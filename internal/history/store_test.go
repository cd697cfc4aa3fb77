package history_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"detconv/internal/history"
	"detconv/internal/testsupport"
)

func sampleRun(id string, started time.Time, status history.Status) history.Run {
	return history.Run{
		ID:              id,
		StartedAt:       started,
		FinishedAt:      started.Add(250 * time.Millisecond),
		Status:          status,
		PredictionsPath: "/data/pred.json",
		GroundTruthPath: "/data/gt.json",
		OutputPath:      "/data/results.json",
		ScoreThreshold:  0.25,
		CategoryMatch:   "exact",
		Shape:           "list",
		Total:           5,
		Kept:            3,
		Dropped:         2,
		DropReasons:     map[string]int{"below_threshold": 1, "unknown_category": 1},
		OutputSHA256:    "abc123",
	}
}

func TestRecordAndGet(t *testing.T) {
	store := testsupport.MustOpenHistory(t)
	ctx := context.Background()

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	want := sampleRun("run-1", started, history.StatusSucceeded)
	if err := store.Record(ctx, want); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := store.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("run mismatch (-want +got):\n%s", diff)
	}
	if got.Duration() != 250*time.Millisecond {
		t.Fatalf("Duration = %v", got.Duration())
	}
}

func TestGetUnknownRun(t *testing.T) {
	store := testsupport.MustOpenHistory(t)
	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	store := testsupport.MustOpenHistory(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, status := range []history.Status{history.StatusSucceeded, history.StatusEmpty, history.StatusFailed} {
		run := sampleRun(string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute), status)
		if status == history.StatusFailed {
			run.Error = "malformed prediction document"
			run.DropReasons = nil
		}
		if err := store.Record(ctx, run); err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
	}

	runs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var ids []string
	for _, run := range runs {
		ids = append(ids, run.ID)
	}
	if diff := cmp.Diff([]string{"c", "b"}, ids); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if runs[0].Error == "" || runs[0].DropReasons != nil {
		t.Fatalf("failed run lost its details: %+v", runs[0])
	}
}

func TestRecordRejectsDuplicateAndIncompleteRuns(t *testing.T) {
	store := testsupport.MustOpenHistory(t)
	ctx := context.Background()
	run := sampleRun("dup", time.Now(), history.StatusSucceeded)

	if err := store.Record(ctx, run); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Record(ctx, run); err == nil {
		t.Fatal("expected duplicate id to fail")
	}
	if err := store.Record(ctx, history.Run{Status: history.StatusFailed}); err == nil {
		t.Fatal("expected missing id to fail")
	}
	if err := store.Record(ctx, history.Run{ID: "x"}); err == nil {
		t.Fatal("expected missing status to fail")
	}
}

func TestOpenRejectsOtherSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	if _, err := history.Open(path); !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Record(context.Background(), sampleRun("keep", time.Now(), history.StatusEmpty)); err != nil {
		t.Fatalf("Record: %v", err)
	}
	_ = store.Close()

	reopened, err := history.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.Get(context.Background(), "keep"); err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
}
