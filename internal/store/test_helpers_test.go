package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/mockstore/internal/mockstore"
)

// createTestStore creates a new store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run with one action, one orphan and one rejection.
func createTestRun(id, scenario string, pass bool) RunRecord {
	rec := mockstore.Recording{
		SessionID: "session-" + id,
		Actions:   []any{map[string]any{"type": "ADD", "n": 1}},
		Blocked:   []any{},
		Orphans:   []any{map[string]any{"type": "ADD", "n": 1}},
		Resolved:  []any{},
		Rejected:  []string{"timeout"},
	}
	var errs []string
	if !pass {
		errs = []string{"assertion[0] failed: count"}
	}
	return NewRunRecord(id, scenario, pass, errs, rec, map[string]any{"n": 1})
}
