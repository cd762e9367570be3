// Package snapshot provides durable storage for a single homogeneous row
// set: an in-memory cache mirrored to one pretty-printed JSON snapshot
// file per table.
//
// Mutations update the cache synchronously and schedule an asynchronous
// rewrite of the whole snapshot file. Persistence is best-effort: a
// failed write is logged and counted, never retried and never surfaced
// to the caller. The in-memory cache stays authoritative for the life of
// the process.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Row is implemented by records stored in a Table.
type Row interface {
	// RowID returns the row's unique identifier. IDs are unique within a
	// table; this is an invariant the caller upholds.
	RowID() string
}

// Table is a file-backed table of rows. The zero value is not usable;
// create tables with New.
type Table[R Row] struct {
	name string
	path string

	mu     sync.Mutex
	rows   []R
	loaded bool
	closed bool

	// pending holds at most the latest serialized snapshot awaiting a
	// disk write; a newer snapshot replaces a stale queued one.
	pending chan []byte
	done    chan struct{}
}

// New creates a table persisted at dir/<name>.json and starts its
// snapshot writer. Call Init before querying and Close to flush any
// pending write on shutdown.
func New[R Row](dir, name string) (*Table[R], error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	t := &Table[R]{
		name:    name,
		path:    filepath.Join(dir, name+".json"),
		pending: make(chan []byte, 1),
		done:    make(chan struct{}),
	}
	go t.writeLoop()
	return t, nil
}

// Init loads the snapshot file into the cache, creating an empty
// snapshot if none exists. A second call is a no-op. An unparsable
// snapshot is logged and replaced by an empty cache; the process keeps
// running with the data lost.
func (t *Table[R]) Init() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.loaded {
		return
	}

	data, err := os.ReadFile(t.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		t.rows = nil
		t.scheduleSaveLocked()
	case err != nil:
		slog.Error("snapshot unreadable, starting empty", "table", t.name, "path", t.path, "error", err)
		t.rows = nil
	default:
		var rows []R
		if err := json.Unmarshal(data, &rows); err != nil {
			slog.Error("snapshot unparsable, starting empty", "table", t.name, "path", t.path, "error", err)
			t.rows = nil
		} else {
			t.rows = rows
		}
	}
	t.loaded = true
	slog.Info("table initialized", "table", t.name, "rows", len(t.rows))
}

// All returns a copy of every row in insertion order.
func (t *Table[R]) All() []R {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]R, len(t.rows))
	copy(out, t.rows)
	return out
}

// AllOrderedBy returns a copy of every row sorted ascending by the
// instant the key function extracts. The sort is stable: rows with equal
// keys keep their insertion order.
func (t *Table[R]) AllOrderedBy(key func(R) time.Time) []R {
	rows := t.All()
	sort.SliceStable(rows, func(i, j int) bool {
		return key(rows[i]).Before(key(rows[j]))
	})
	return rows
}

// Get returns the row with the given id. If duplicate ids exist despite
// the uniqueness invariant, the first wins.
func (t *Table[R]) Get(id string) (R, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range t.rows {
		if r.RowID() == id {
			return r, true
		}
	}
	var zero R
	return zero, false
}

// Insert appends a row and schedules a snapshot write.
func (t *Table[R]) Insert(row R) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = append(t.rows, row)
	t.scheduleSaveLocked()
}

// Update replaces the row with the given id in place, keeping its
// position. It reports whether a row was replaced; updating an unknown
// id is a no-op.
func (t *Table[R]) Update(id string, row R) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, r := range t.rows {
		if r.RowID() == id {
			t.rows[i] = row
			t.scheduleSaveLocked()
			return true
		}
	}
	return false
}

// Delete removes the row with the given id and reports whether one was
// removed.
func (t *Table[R]) Delete(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, r := range t.rows {
		if r.RowID() == id {
			t.rows = append(t.rows[:i], t.rows[i+1:]...)
			t.scheduleSaveLocked()
			return true
		}
	}
	return false
}

// Clear removes every row.
func (t *Table[R]) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = nil
	t.scheduleSaveLocked()
}

// Len returns the number of rows in the cache.
func (t *Table[R]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

// Close flushes any pending snapshot write and stops the writer. The
// table must not be mutated after Close.
func (t *Table[R]) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.mu.Unlock()

	close(t.pending)
	<-t.done
}

// scheduleSaveLocked serializes the cache and queues it for the writer,
// replacing any stale queued snapshot. Callers hold t.mu.
func (t *Table[R]) scheduleSaveLocked() {
	if t.closed {
		return
	}
	rows := t.rows
	if rows == nil {
		rows = []R{}
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		saveFailures.WithLabelValues(t.name).Inc()
		slog.Error("snapshot marshal failed", "table", t.name, "error", err)
		return
	}

	select {
	case t.pending <- data:
	default:
		// Drop the stale snapshot; the writer only ever needs the most
		// recent state.
		select {
		case <-t.pending:
		default:
		}
		t.pending <- data
	}
}

func (t *Table[R]) writeLoop() {
	defer close(t.done)
	for data := range t.pending {
		saves.WithLabelValues(t.name).Inc()
		if err := os.WriteFile(t.path, data, 0o644); err != nil {
			saveFailures.WithLabelValues(t.name).Inc()
			slog.Error("snapshot write failed", "table", t.name, "path", t.path, "error", err)
		}
	}
}
