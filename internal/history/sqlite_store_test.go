package history

import (
	"path/filepath"
	"testing"
	"time"

	"xliff-manager/internal/domain"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// TestSQLiteStoreSaveAndRecent verifies ordering, filtering and limits.
func TestSQLiteStoreSaveAndRecent(t *testing.T) {
	store := openTestStore(t)
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	records := []domain.JobRecord{
		{Kind: domain.JobKindConvert, ProcessID: "1", Input: "/docs/a.docx", State: domain.JobStateCompleted, StartedAt: start, FinishedAt: start.Add(3 * time.Second)},
		{Kind: domain.JobKindMerge, ProcessID: "2", Input: "/docs/a.docx.xlf", State: domain.JobStateFailed, Reason: "error!", StartedAt: start, FinishedAt: start.Add(time.Second)},
		{Kind: domain.JobKindConvert, ProcessID: "3", Input: "/docs/b.html", State: domain.JobStateCompleted, StartedAt: start, FinishedAt: start.Add(2 * time.Second)},
	}
	for _, rec := range records {
		if _, err := store.Save(rec); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	all, err := store.Recent(0, "")
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(all) != 3 || all[0].ProcessID != "3" || all[2].ProcessID != "1" {
		t.Fatalf("records = %+v", all)
	}

	converts, err := store.Recent(1, domain.JobKindConvert)
	if err != nil {
		t.Fatalf("Recent(convert) error = %v", err)
	}
	if len(converts) != 1 || converts[0].Input != "/docs/b.html" {
		t.Fatalf("converts = %+v", converts)
	}
	if converts[0].Duration() != 2*time.Second {
		t.Fatalf("duration = %s, want 2s", converts[0].Duration())
	}

	merges, err := store.Recent(0, domain.JobKindMerge)
	if err != nil {
		t.Fatalf("Recent(merge) error = %v", err)
	}
	if len(merges) != 1 || merges[0].Reason != "error!" || merges[0].State != domain.JobStateFailed {
		t.Fatalf("merges = %+v", merges)
	}
}

// TestSQLiteStoreClear checks history removal.
func TestSQLiteStoreClear(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.Save(domain.JobRecord{Kind: domain.JobKindValidate, State: domain.JobStateCompleted}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	records, err := store.Recent(0, "")
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("records = %+v, want none", records)
	}
}
