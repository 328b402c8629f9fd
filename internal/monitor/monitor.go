// Package monitor runs the reconciliation loops: fetch open items per
// tracked repository, inspect pull request changes, consult the ledger,
// emit notifications, and record what was sent. The pull-request stream
// and the issue stream share one reconcile routine parameterized by
// dedup policy.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/the1andoni/repowatch/internal/config"
	"github.com/the1andoni/repowatch/internal/ledger"
	"github.com/the1andoni/repowatch/internal/notify"
	"github.com/the1andoni/repowatch/internal/repository"
	"github.com/the1andoni/repowatch/models"
)

// Source is the subset of repository.Provider the loop consumes.
type Source interface {
	ListOpenPullRequests(ctx context.Context, repo string) ([]models.TrackedItem, error)
	ListOpenIssues(ctx context.Context, repo string) ([]models.TrackedItem, error)
	ListChangedFiles(ctx context.Context, item models.TrackedItem) ([]string, error)
	AuthToken() string
}

// Notifier receives the events the loop decides to emit.
type Notifier interface {
	Notify(ctx context.Context, evt notify.Event)
}

// Inspector produces a findings report for a pull request checkout.
type Inspector interface {
	Report(ctx context.Context, root string, files []string) (*models.Report, error)
	SuggestFormat(ctx context.Context, root, path string) (string, error)
}

// checkoutFunc fetches a pull request head to a local directory.
type checkoutFunc func(ctx context.Context, item models.TrackedItem, token string) (*repository.Checkout, error)

// stream is one independent polling loop.
type stream struct {
	name   string
	kind   models.ItemKind
	policy Policy
	list   func(ctx context.Context, repo string) ([]models.TrackedItem, error)

	mu sync.Mutex // serialises passes; a slow pass skips the next tick
}

// Monitor owns the ledger and the two reconciliation streams.
type Monitor struct {
	cfg      config.MonitorConfig
	source   Source
	ledger   *ledger.Ledger
	notifier Notifier
	inspect  Inspector
	health   *Health
	checkout checkoutFunc
	// fatal is invoked on authentication failures, which cannot
	// self-heal and must stop the process.
	fatal func(error)

	suggestFormat bool
	streams       []*stream
}

// Options tweak construction beyond the required collaborators.
type Options struct {
	// SuggestFormat appends formatter diffs to findings comments.
	SuggestFormat bool
	// OnFatal is called when a pass hits an authentication failure.
	// Defaults to logging only.
	OnFatal func(error)
	// checkout overrides the git checkout (tests).
	checkout checkoutFunc
}

// New creates a Monitor. The ledger must already be open.
func New(cfg config.MonitorConfig, source Source, led *ledger.Ledger, notifier Notifier, inspector Inspector, opts Options) *Monitor {
	m := &Monitor{
		cfg:           cfg,
		source:        source,
		ledger:        led,
		notifier:      notifier,
		inspect:       inspector,
		health:        NewHealth(),
		checkout:      opts.checkout,
		fatal:         opts.OnFatal,
		suggestFormat: opts.SuggestFormat,
	}
	if m.checkout == nil {
		m.checkout = func(ctx context.Context, item models.TrackedItem, token string) (*repository.Checkout, error) {
			return repository.CheckoutPullRequest(ctx, item, token)
		}
	}
	if m.fatal == nil {
		m.fatal = func(err error) {
			slog.Error("authentication failure; fix credentials and restart", "error", err)
		}
	}

	m.streams = []*stream{
		{
			name:   "pull_requests",
			kind:   models.KindPullRequest,
			policy: PolicyRealert,
			list:   source.ListOpenPullRequests,
		},
		{
			name:   "issues",
			kind:   models.KindIssue,
			policy: PolicyMonotonic,
			list:   source.ListOpenIssues,
		},
	}
	return m
}

// Health exposes the per-stream pass state for the gateway.
func (m *Monitor) Health() *Health { return m.health }

// Ledger exposes the ledger for read-only snapshots.
func (m *Monitor) Ledger() *ledger.Ledger { return m.ledger }

// Run executes both streams on the configured interval until ctx is
// cancelled. The first pass runs immediately, not after one interval.
func (m *Monitor) Run(ctx context.Context) error {
	c := cron.New()
	for _, s := range m.streams {
		s := s
		spec := fmt.Sprintf("@every %s", m.cfg.Interval)
		if _, err := c.AddFunc(spec, func() { m.runPass(ctx, s) }); err != nil {
			return fmt.Errorf("registering %s stream: %w", s.name, err)
		}
	}

	// Immediate first pass for both streams, concurrently.
	var wg sync.WaitGroup
	for _, s := range m.streams {
		s := s
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.runPass(ctx, s)
		}()
	}

	c.Start()
	slog.Info("monitor started",
		"repositories", len(m.cfg.Repositories),
		"interval", m.cfg.Interval,
	)

	<-ctx.Done()
	stopped := c.Stop()
	wg.Wait()
	<-stopped.Done()
	slog.Info("monitor stopped")
	return ctx.Err()
}

// RunOnce executes a single pass of both streams (one-shot mode and
// tests).
func (m *Monitor) RunOnce(ctx context.Context) {
	for _, s := range m.streams {
		m.runPass(ctx, s)
	}
}

// runPass guards against overlapping passes of the same stream.
func (m *Monitor) runPass(ctx context.Context, s *stream) {
	if ctx.Err() != nil {
		return
	}
	if !s.mu.TryLock() {
		slog.Warn("previous pass still running, skipping tick", "stream", s.name)
		return
	}
	defer s.mu.Unlock()
	m.reconcile(ctx, s)
}
