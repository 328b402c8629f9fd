package monitor

import (
	"time"

	"github.com/the1andoni/repowatch/internal/ledger"
	"github.com/the1andoni/repowatch/internal/notify"
	"github.com/the1andoni/repowatch/models"
)

// Policy is the dedup rule applied per item.
type Policy int

const (
	// PolicyRealert notifies when the item is new OR has findings, so an
	// unresolved pull request keeps alerting until its findings clear or
	// it leaves the open listing.
	PolicyRealert Policy = iota
	// PolicyMonotonic notifies only when the item is new; at most one
	// notification ever goes out per id.
	PolicyMonotonic
)

// Decision is the outcome of the Deciding step for one item.
type Decision struct {
	Notify    bool
	EventType string
}

// decide applies the stream's dedup rule. It reads the ledger but never
// mutates it, so running it twice against an unchanged ledger and
// unchanged upstream state yields the same outcome.
//
// cooldown only applies to re-alerts of already-known items under
// PolicyRealert; zero keeps the legacy notify-every-pass behaviour.
func decide(led *ledger.Ledger, item models.TrackedItem, hasFindings bool, policy Policy, cooldown time.Duration, now time.Time) Decision {
	isNew := !led.IsKnown(item.Kind, item.ID)

	if policy == PolicyMonotonic {
		return Decision{Notify: isNew, EventType: newEventType(item.Kind)}
	}

	if hasFindings {
		if !isNew && cooldown > 0 {
			if rec, ok := led.Get(item.Kind, item.ID); ok && now.Sub(rec.NotifiedAt) < cooldown {
				return Decision{Notify: false, EventType: notify.EventPullFindings}
			}
		}
		return Decision{Notify: true, EventType: notify.EventPullFindings}
	}

	return Decision{Notify: isNew, EventType: newEventType(item.Kind)}
}

func newEventType(kind models.ItemKind) string {
	if kind == models.KindIssue {
		return notify.EventNewIssue
	}
	return notify.EventNewPull
}
