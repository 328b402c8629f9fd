// Package ledger is the durable record of which pull requests and issues
// have already been notified. Its presence check drives every dedup
// decision the watcher makes.
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/the1andoni/repowatch/models"
)

// Record is the per-item snapshot persisted at notification time. The
// display fields exist for audit and logging only; presence of the record
// is what carries meaning.
type Record struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
	// CreatedAt is persisted for issues only, mirroring the historical
	// on-disk shape of the two documents.
	CreatedAt string `json:"created_at,omitempty"`
	// NotifiedAt is when the last notification for this id went out.
	NotifiedAt time.Time `json:"notified_at,omitempty"`
}

// StorageError wraps a persistence failure. The caller treats it as fatal
// for the current reconciliation step only; the item is retried on the
// next pass.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("ledger storage: %s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

// Store persists ledger mutations. Put must be durable before returning.
// Implementations: JSON file store (default), SQL store (sqlite/mysql).
type Store interface {
	// Load reads all persisted records. A store that has never been
	// written reads as two empty maps.
	Load(ctx context.Context) (pulls, issues map[int64]Record, err error)

	// Put upserts one record durably.
	Put(ctx context.Context, kind models.ItemKind, id int64, rec Record) error

	// Close releases any underlying resources.
	Close() error
}

// Ledger tracks notified items across reconciliation passes. It keeps two
// independent id→record maps (pull requests, issues) in memory and writes
// through to its Store on every mutation.
//
// Single-writer discipline: only the reconciliation loop mutates the
// ledger; concurrent readers (gateway, TUI) go through Snapshot.
type Ledger struct {
	mu     sync.RWMutex
	store  Store
	pulls  map[int64]Record
	issues map[int64]Record
}

// Open loads persisted state from store and returns a ready Ledger.
func Open(ctx context.Context, store Store) (*Ledger, error) {
	pulls, issues, err := store.Load(ctx)
	if err != nil {
		return nil, &StorageError{Op: "load", Err: err}
	}
	if pulls == nil {
		pulls = make(map[int64]Record)
	}
	if issues == nil {
		issues = make(map[int64]Record)
	}
	return &Ledger{store: store, pulls: pulls, issues: issues}, nil
}

// IsKnown reports whether a notification for (kind, id) has already been
// sent under current dedup rules.
func (l *Ledger) IsKnown(kind models.ItemKind, id int64) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.byKind(kind)[id]
	return ok
}

// Get returns the stored record for (kind, id), if any.
func (l *Ledger) Get(kind models.ItemKind, id int64) (Record, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	rec, ok := l.byKind(kind)[id]
	return rec, ok
}

// RecordSeen upserts the record for (kind, id), durable before returning.
// On persistence failure the in-memory map is left untouched, so the item
// is treated as not-yet-notified on the next pass.
func (l *Ledger) RecordSeen(ctx context.Context, kind models.ItemKind, id int64, rec Record) error {
	if err := l.store.Put(ctx, kind, id, rec); err != nil {
		return &StorageError{Op: fmt.Sprintf("put %s %d", kind, id), Err: err}
	}
	l.mu.Lock()
	l.byKind(kind)[id] = rec
	l.mu.Unlock()
	return nil
}

// Len returns the number of records per kind.
func (l *Ledger) Len(kind models.ItemKind) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.byKind(kind))
}

// Snapshot is an immutable copy of the ledger state, safe to hand to
// concurrent readers.
type Snapshot struct {
	Pulls  map[int64]Record `json:"pull_requests"`
	Issues map[int64]Record `json:"issues"`
}

// Snapshot deep-copies both maps.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	snap := Snapshot{
		Pulls:  make(map[int64]Record, len(l.pulls)),
		Issues: make(map[int64]Record, len(l.issues)),
	}
	for id, rec := range l.pulls {
		snap.Pulls[id] = rec
	}
	for id, rec := range l.issues {
		snap.Issues[id] = rec
	}
	return snap
}

// Close closes the underlying store.
func (l *Ledger) Close() error { return l.store.Close() }

// byKind must be called with l.mu held.
func (l *Ledger) byKind(kind models.ItemKind) map[int64]Record {
	if kind == models.KindIssue {
		return l.issues
	}
	return l.pulls
}
