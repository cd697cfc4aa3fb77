package testsupport

import (
	"path/filepath"
	"testing"

	"detconv/internal/history"
)

// MustOpenHistory opens a run ledger in a temp directory and closes it when
// the test finishes.
func MustOpenHistory(t testing.TB) *history.Store {
	t.Helper()

	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
