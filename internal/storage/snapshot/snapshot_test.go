package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type testRow struct {
	ID  string    `json:"id"`
	Val string    `json:"val"`
	At  time.Time `json:"at"`
}

func (r testRow) RowID() string { return r.ID }

func newTestTable(t *testing.T, dir string) *Table[testRow] {
	t.Helper()
	table, err := New[testRow](dir, "rows")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	table.Init()
	return table
}

func TestTablePersistence(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	table := newTestTable(t, dir)
	table.Insert(testRow{ID: "a", Val: "first", At: at})
	table.Insert(testRow{ID: "b", Val: "second", At: at.AddDate(0, 0, 1)})
	table.Update("a", testRow{ID: "a", Val: "patched", At: at})
	table.Close()

	// A fresh table over the same file must see the flushed state.
	reopened := newTestTable(t, dir)
	defer reopened.Close()

	if got := reopened.Len(); got != 2 {
		t.Fatalf("reopened table has %d rows, want 2", got)
	}
	row, ok := reopened.Get("a")
	if !ok {
		t.Fatal("row a missing after reopen")
	}
	if row.Val != "patched" {
		t.Errorf("row a val = %q, want %q", row.Val, "patched")
	}
}

func TestInitCreatesEmptySnapshot(t *testing.T) {
	dir := t.TempDir()

	table := newTestTable(t, dir)
	table.Close()

	data, err := os.ReadFile(filepath.Join(dir, "rows.json"))
	if err != nil {
		t.Fatalf("snapshot file not created: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("empty snapshot = %q, want []", data)
	}
}

func TestInitIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	table := newTestTable(t, dir)
	defer table.Close()
	table.Insert(testRow{ID: "a", Val: "kept"})

	// A second Init must not reload from disk and wipe the cache.
	table.Init()
	if got := table.Len(); got != 1 {
		t.Errorf("rows after second Init = %d, want 1", got)
	}
}

func TestInitRecoversFromCorruptSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rows.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("failed to write corrupt snapshot: %v", err)
	}

	table := newTestTable(t, dir)
	defer table.Close()

	if got := table.Len(); got != 0 {
		t.Errorf("rows after corrupt snapshot = %d, want 0", got)
	}
	// The table stays usable.
	table.Insert(testRow{ID: "a"})
	if _, ok := table.Get("a"); !ok {
		t.Error("insert after recovery failed")
	}
}

func TestDeleteAndClear(t *testing.T) {
	table := newTestTable(t, t.TempDir())
	defer table.Close()

	table.Insert(testRow{ID: "a"})
	table.Insert(testRow{ID: "b"})

	if !table.Delete("a") {
		t.Error("Delete(a) = false, want true")
	}
	if table.Delete("a") {
		t.Error("second Delete(a) = true, want false")
	}
	if table.Update("missing", testRow{ID: "missing"}) {
		t.Error("Update of unknown id = true, want false")
	}

	table.Clear()
	if got := table.Len(); got != 0 {
		t.Errorf("rows after Clear = %d, want 0", got)
	}
}

func TestAllOrderedByIsStable(t *testing.T) {
	table := newTestTable(t, t.TempDir())
	defer table.Close()

	at := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	later := at.AddDate(0, 0, 7)

	// Three rows tied on the same instant, one earlier row inserted last.
	table.Insert(testRow{ID: "x", At: later})
	table.Insert(testRow{ID: "y", At: later})
	table.Insert(testRow{ID: "z", At: later})
	table.Insert(testRow{ID: "early", At: at})

	rows := table.AllOrderedBy(func(r testRow) time.Time { return r.At })

	want := []string{"early", "x", "y", "z"}
	for i, id := range want {
		if rows[i].ID != id {
			t.Fatalf("order[%d] = %s, want %s", i, rows[i].ID, id)
		}
	}
}
