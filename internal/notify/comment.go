package notify

import (
	"context"
	"fmt"

	"github.com/the1andoni/repowatch/internal/repository"
)

// CommentChannel posts the findings summary back onto the originating
// pull request as a comment. It only reacts to findings events; plain
// "new pull request" announcements stay in chat.
type CommentChannel struct {
	provider repository.Provider
	enabled  bool
}

// NewComment creates a CommentChannel backed by provider.
func NewComment(provider repository.Provider, enabled bool) *CommentChannel {
	return &CommentChannel{provider: provider, enabled: enabled}
}

func (c *CommentChannel) Name() string       { return "pr-comment" }
func (c *CommentChannel) IsConfigured() bool { return c.enabled && c.provider != nil }

func (c *CommentChannel) Send(ctx context.Context, evt Event) error {
	if evt.Type != EventPullFindings || evt.Summary == "" {
		return nil
	}
	body := fmt.Sprintf("Automated inspection completed:\n%s", evt.Summary)
	if evt.SuggestedDiff != "" {
		body += fmt.Sprintf("\n\nSuggested formatting:\n```diff\n%s\n```", evt.SuggestedDiff)
	}
	return c.provider.PostComment(ctx, evt.Item.Repo, evt.Item.Number, body)
}
