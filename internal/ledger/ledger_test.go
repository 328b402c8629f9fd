package ledger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/the1andoni/repowatch/models"
)

func newFileLedger(t *testing.T, dir string) *Ledger {
	t.Helper()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	led, err := Open(context.Background(), store)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return led
}

func TestOpenWithNoFilesStartsEmpty(t *testing.T) {
	led := newFileLedger(t, t.TempDir())
	if led.Len(models.KindPullRequest) != 0 || led.Len(models.KindIssue) != 0 {
		t.Fatalf("expected empty ledger, got %d pulls / %d issues",
			led.Len(models.KindPullRequest), led.Len(models.KindIssue))
	}
	if led.IsKnown(models.KindPullRequest, 42) {
		t.Fatal("empty ledger should not know any id")
	}
}

func TestRecordSeenPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	led := newFileLedger(t, dir)
	rec := Record{Title: "Fix race", Author: "ada", URL: "https://example.com/pull/7", NotifiedAt: time.Now()}
	if err := led.RecordSeen(ctx, models.KindPullRequest, 7, rec); err != nil {
		t.Fatalf("RecordSeen: %v", err)
	}
	if !led.IsKnown(models.KindPullRequest, 7) {
		t.Fatal("recorded pull request should be known")
	}
	if led.IsKnown(models.KindIssue, 7) {
		t.Fatal("pull request id must not leak into the issue map")
	}

	// A fresh ledger over the same directory sees the record.
	led2 := newFileLedger(t, dir)
	got, ok := led2.Get(models.KindPullRequest, 7)
	if !ok {
		t.Fatal("record lost after reopen")
	}
	if got.Title != "Fix race" || got.Author != "ada" {
		t.Fatalf("unexpected record after reopen: %+v", got)
	}
}

func TestRecordSeenUpsertsExistingRecord(t *testing.T) {
	led := newFileLedger(t, t.TempDir())
	ctx := context.Background()

	first := Record{Title: "v1", NotifiedAt: time.Now().Add(-time.Hour)}
	second := Record{Title: "v2", NotifiedAt: time.Now()}
	if err := led.RecordSeen(ctx, models.KindPullRequest, 1, first); err != nil {
		t.Fatalf("RecordSeen: %v", err)
	}
	if err := led.RecordSeen(ctx, models.KindPullRequest, 1, second); err != nil {
		t.Fatalf("RecordSeen upsert: %v", err)
	}
	if led.Len(models.KindPullRequest) != 1 {
		t.Fatalf("upsert must not create a second record, got %d", led.Len(models.KindPullRequest))
	}
	got, _ := led.Get(models.KindPullRequest, 1)
	if got.Title != "v2" {
		t.Fatalf("expected updated record, got %+v", got)
	}
}

type failingStore struct {
	loadPulls  map[int64]Record
	loadIssues map[int64]Record
	putErr     error
}

func (s *failingStore) Load(ctx context.Context) (map[int64]Record, map[int64]Record, error) {
	return s.loadPulls, s.loadIssues, nil
}
func (s *failingStore) Put(ctx context.Context, kind models.ItemKind, id int64, rec Record) error {
	return s.putErr
}
func (s *failingStore) Close() error { return nil }

func TestRecordSeenFailureLeavesMemoryUntouched(t *testing.T) {
	store := &failingStore{putErr: errors.New("disk full")}
	led, err := Open(context.Background(), store)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	err = led.RecordSeen(context.Background(), models.KindIssue, 9, Record{Title: "broken"})
	if err == nil {
		t.Fatal("expected error from failing store")
	}
	var se *StorageError
	if !errors.As(err, &se) {
		t.Fatalf("expected StorageError, got %T", err)
	}
	if led.IsKnown(models.KindIssue, 9) {
		t.Fatal("item must stay unknown when Put fails, so it is retried next pass")
	}
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	led := newFileLedger(t, t.TempDir())
	ctx := context.Background()
	if err := led.RecordSeen(ctx, models.KindIssue, 3, Record{Title: "bug"}); err != nil {
		t.Fatalf("RecordSeen: %v", err)
	}

	snap := led.Snapshot()
	snap.Issues[3] = Record{Title: "mutated"}
	snap.Issues[4] = Record{Title: "added"}

	got, _ := led.Get(models.KindIssue, 3)
	if got.Title != "bug" {
		t.Fatal("mutating a snapshot must not affect the ledger")
	}
	if led.IsKnown(models.KindIssue, 4) {
		t.Fatal("adding to a snapshot must not affect the ledger")
	}
}

func TestFileStoreDocumentNames(t *testing.T) {
	dir := t.TempDir()
	led := newFileLedger(t, dir)
	ctx := context.Background()

	if err := led.RecordSeen(ctx, models.KindPullRequest, 1, Record{Title: "pr"}); err != nil {
		t.Fatalf("RecordSeen pull: %v", err)
	}
	if err := led.RecordSeen(ctx, models.KindIssue, 2, Record{Title: "issue"}); err != nil {
		t.Fatalf("RecordSeen issue: %v", err)
	}

	for _, name := range []string{"sent_pull_requests.json", "sent_issues.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected document %s: %v", name, err)
		}
	}
}
