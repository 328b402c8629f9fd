package notify

import (
	"context"

	"github.com/the1andoni/repowatch/models"
)

// Event types emitted by the reconciliation loop.
const (
	// EventNewPull announces a pull request seen for the first time.
	EventNewPull = "pull_request.new"
	// EventPullFindings announces a pull request whose changed files
	// produced quality or security findings.
	EventPullFindings = "pull_request.findings"
	// EventNewIssue announces an issue seen for the first time.
	EventNewIssue = "issue.new"
)

// Event is one notification about a tracked item.
type Event struct {
	Type string
	Item models.TrackedItem
	// Summary is the rendered per-file findings breakdown. Display only;
	// the notify decision was already made from structured data.
	Summary string
	// SuggestedDiff optionally carries a formatter diff, appended to PR
	// comments only.
	SuggestedDiff string
}

// Channel is implemented by each notification sink.
type Channel interface {
	Name() string
	IsConfigured() bool
	Send(ctx context.Context, evt Event) error
}
