package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/the1andoni/repowatch/internal/ledger"
	"github.com/the1andoni/repowatch/internal/notify"
	"github.com/the1andoni/repowatch/internal/repository"
	"github.com/the1andoni/repowatch/models"
)

// suggestedDiffLimit bounds the formatter diff attached to a comment.
const suggestedDiffLimit = 6000

// reconcile runs one pass of a stream: list open items per repository in
// configured order, process each item, update health. A repository whose
// listing fails is skipped for this pass without touching the others.
func (m *Monitor) reconcile(ctx context.Context, s *stream) {
	start := time.Now()
	var (
		failedRepos int
		lastErr     string
		seen        int
		notified    int
	)

	for _, repo := range m.cfg.Repositories {
		if ctx.Err() != nil {
			return
		}

		items, err := s.list(ctx, repo)
		if err != nil {
			if repository.IsAuthFailure(err) {
				m.fatal(err)
				return
			}
			slog.Error("listing open items failed, skipping repository",
				"stream", s.name, "repo", repo, "error", err)
			failedRepos++
			lastErr = err.Error()
			continue
		}

		for _, item := range items {
			if ctx.Err() != nil {
				return
			}
			seen++
			if m.processItem(ctx, s, item) {
				notified++
			}
		}
	}

	m.health.set(s.name, StreamHealth{
		LastPassAt: start,
		LastError:  lastErr,
		Degraded:   len(m.cfg.Repositories) > 0 && failedRepos == len(m.cfg.Repositories),
		ItemsSeen:  seen,
		Notified:   notified,
	})

	slog.Info("pass complete",
		"stream", s.name,
		"items", seen,
		"notified", notified,
		"failed_repos", failedRepos,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
}

// processItem runs inspect (pull requests only), decide, notify, record
// for one item. Returns whether a notification went out.
func (m *Monitor) processItem(ctx context.Context, s *stream, item models.TrackedItem) bool {
	if item.Draft && m.cfg.SkipDrafts {
		return false
	}

	var (
		hasFindings bool
		summary     string
		diff        string
	)
	if s.kind == models.KindPullRequest {
		report, suggested := m.inspectPull(ctx, item)
		if report != nil {
			hasFindings = report.HasFindings()
			summary = report.Summary()
			diff = suggested
		}
	}

	d := decide(m.ledger, item, hasFindings, s.policy, m.cfg.RealertCooldown, time.Now())
	if !d.Notify {
		return false
	}
	if d.EventType != notify.EventPullFindings {
		diff = ""
	}

	m.notifier.Notify(ctx, notify.Event{
		Type:          d.EventType,
		Item:          item,
		Summary:       summary,
		SuggestedDiff: diff,
	})

	rec := ledger.Record{
		Title:      item.Title,
		Author:     item.Author,
		URL:        item.URL,
		NotifiedAt: time.Now(),
	}
	if item.Kind == models.KindIssue && !item.CreatedAt.IsZero() {
		rec.CreatedAt = item.CreatedAt.Format(time.RFC3339)
	}
	if err := m.ledger.RecordSeen(ctx, item.Kind, item.ID, rec); err != nil {
		// The notification went out but the record did not persist. The
		// item stays unknown and is retried next pass, trading a possible
		// duplicate against a lost alert.
		slog.Error("recording notification failed, item will be retried",
			"stream", s.name, "repo", item.Repo, "number", item.Number, "error", err)
	}
	return true
}

// inspectPull checks out the pull request head and runs the inspection
// profile over its changed files. Any failure along the way is logged and
// yields a nil report, so the item still flows through the new-item path.
// When formatter suggestions are enabled and the report has findings, the
// collected diff is returned alongside.
func (m *Monitor) inspectPull(ctx context.Context, item models.TrackedItem) (*models.Report, string) {
	files, err := m.source.ListChangedFiles(ctx, item)
	if err != nil {
		slog.Warn("listing changed files failed, skipping inspection",
			"repo", item.Repo, "number", item.Number, "error", err)
		return nil, ""
	}
	if len(files) == 0 {
		return &models.Report{}, ""
	}

	co, err := m.checkout(ctx, item, m.source.AuthToken())
	if err != nil {
		slog.Warn("checkout failed, skipping inspection",
			"repo", item.Repo, "number", item.Number, "error", err)
		return nil, ""
	}
	defer co.Close()

	report, err := m.inspect.Report(ctx, co.LocalPath, files)
	if err != nil {
		slog.Warn("inspection failed",
			"repo", item.Repo, "number", item.Number, "error", err)
		return nil, ""
	}

	var diff string
	if m.suggestFormat && report.HasFindings() {
		diff = m.formatSuggestion(ctx, co.LocalPath, files)
	}
	return report, diff
}

// formatSuggestion collects formatter diffs for the changed files out of
// an existing checkout. Best effort; an empty string drops the section.
func (m *Monitor) formatSuggestion(ctx context.Context, root string, files []string) string {
	var b strings.Builder
	for _, f := range files {
		if ctx.Err() != nil {
			break
		}
		diff, err := m.inspect.SuggestFormat(ctx, root, f)
		if err != nil || diff == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s", diff)
		if b.Len() > suggestedDiffLimit {
			break
		}
	}
	out := b.String()
	if len(out) > suggestedDiffLimit {
		out = out[:suggestedDiffLimit] + "\n(truncated)"
	}
	return out
}
