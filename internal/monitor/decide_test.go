package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/the1andoni/repowatch/internal/ledger"
	"github.com/the1andoni/repowatch/internal/notify"
	"github.com/the1andoni/repowatch/models"
)

type memStore struct {
	pulls  map[int64]ledger.Record
	issues map[int64]ledger.Record
}

func newMemStore() *memStore {
	return &memStore{pulls: map[int64]ledger.Record{}, issues: map[int64]ledger.Record{}}
}

func (s *memStore) Load(ctx context.Context) (map[int64]ledger.Record, map[int64]ledger.Record, error) {
	return s.pulls, s.issues, nil
}
func (s *memStore) Put(ctx context.Context, kind models.ItemKind, id int64, rec ledger.Record) error {
	if kind == models.KindIssue {
		s.issues[id] = rec
	} else {
		s.pulls[id] = rec
	}
	return nil
}
func (s *memStore) Close() error { return nil }

func openMemLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	led, err := ledger.Open(context.Background(), newMemStore())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return led
}

func pull(id int64) models.TrackedItem {
	return models.TrackedItem{ID: id, Kind: models.KindPullRequest, Repo: "acme/api", Number: int(id)}
}

func issue(id int64) models.TrackedItem {
	return models.TrackedItem{ID: id, Kind: models.KindIssue, Repo: "acme/api", Number: int(id)}
}

func TestDecideNewPullNotifiesOnce(t *testing.T) {
	led := openMemLedger(t)
	now := time.Now()

	d := decide(led, pull(101), false, PolicyRealert, 0, now)
	if !d.Notify || d.EventType != notify.EventNewPull {
		t.Fatalf("new clean pull should notify as new, got %+v", d)
	}

	mustRecord(t, led, models.KindPullRequest, 101, now)

	d = decide(led, pull(101), false, PolicyRealert, 0, now)
	if d.Notify {
		t.Fatalf("known clean pull must stay silent, got %+v", d)
	}
}

func TestDecideKnownPullWithFindingsRealerts(t *testing.T) {
	led := openMemLedger(t)
	now := time.Now()
	mustRecord(t, led, models.KindPullRequest, 101, now.Add(-time.Hour))

	d := decide(led, pull(101), true, PolicyRealert, 0, now)
	if !d.Notify || d.EventType != notify.EventPullFindings {
		t.Fatalf("known pull with findings should re-alert, got %+v", d)
	}

	// Once findings clear, the known pull goes silent again.
	d = decide(led, pull(101), false, PolicyRealert, 0, now)
	if d.Notify {
		t.Fatalf("known pull with cleared findings must stay silent, got %+v", d)
	}
}

func TestDecideRealertCooldownSuppressesRepeat(t *testing.T) {
	led := openMemLedger(t)
	now := time.Now()
	cooldown := 30 * time.Minute

	mustRecord(t, led, models.KindPullRequest, 7, now.Add(-5*time.Minute))
	d := decide(led, pull(7), true, PolicyRealert, cooldown, now)
	if d.Notify {
		t.Fatalf("re-alert within cooldown must be suppressed, got %+v", d)
	}

	mustRecord(t, led, models.KindPullRequest, 7, now.Add(-time.Hour))
	d = decide(led, pull(7), true, PolicyRealert, cooldown, now)
	if !d.Notify {
		t.Fatalf("re-alert past cooldown should fire, got %+v", d)
	}

	// Cooldown never delays a first notification.
	d = decide(led, pull(8), true, PolicyRealert, cooldown, now)
	if !d.Notify {
		t.Fatalf("first notification must not be held back by cooldown, got %+v", d)
	}
}

func TestDecideIssuesAreMonotonic(t *testing.T) {
	led := openMemLedger(t)
	now := time.Now()

	d := decide(led, issue(55), false, PolicyMonotonic, 0, now)
	if !d.Notify || d.EventType != notify.EventNewIssue {
		t.Fatalf("new issue should notify, got %+v", d)
	}
	mustRecord(t, led, models.KindIssue, 55, now)

	// Even with findings flagged, a known issue never re-alerts.
	d = decide(led, issue(55), true, PolicyMonotonic, 0, now)
	if d.Notify {
		t.Fatalf("known issue must never re-alert, got %+v", d)
	}
}

func TestDecideIsIdempotentAgainstUnchangedState(t *testing.T) {
	led := openMemLedger(t)
	now := time.Now()
	mustRecord(t, led, models.KindPullRequest, 1, now.Add(-time.Minute))

	first := decide(led, pull(1), true, PolicyRealert, time.Hour, now)
	second := decide(led, pull(1), true, PolicyRealert, time.Hour, now)
	if first != second {
		t.Fatalf("decide must be a pure read: %+v vs %+v", first, second)
	}
}

func mustRecord(t *testing.T, led *ledger.Ledger, kind models.ItemKind, id int64, at time.Time) {
	t.Helper()
	err := led.RecordSeen(context.Background(), kind, id, ledger.Record{NotifiedAt: at})
	if err != nil {
		t.Fatalf("RecordSeen: %v", err)
	}
}
