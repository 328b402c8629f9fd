package notify

import (
	"context"
	"log/slog"

	"github.com/the1andoni/repowatch/internal/config"
)

// Dispatcher fans out events to all configured channels. Send errors are
// logged per channel and never returned; a broken sink must not stall the
// reconciliation loop.
type Dispatcher struct {
	channels []Channel
}

// NewDispatcher creates a Dispatcher from cfg. Only channels with
// IsConfigured() == true are active. extra channels (e.g. the PR comment
// channel) are appended under the same rule.
func NewDispatcher(cfg config.NotifyConfig, extra ...Channel) *Dispatcher {
	renderer := NewRenderer(cfg.Templates)

	d := &Dispatcher{}
	channels := []Channel{
		NewDiscord(cfg.Discord, renderer),
		NewSlack(cfg.Slack, renderer),
		NewTelegram(cfg.Telegram, renderer),
		NewWebhook(cfg.Webhook),
	}
	channels = append(channels, extra...)
	for _, ch := range channels {
		if ch.IsConfigured() {
			d.channels = append(d.channels, ch)
		}
	}
	return d
}

// IsAnyConfigured returns true if at least one channel is ready to send.
func (d *Dispatcher) IsAnyConfigured() bool {
	return len(d.channels) > 0
}

// Notify sends evt to every active channel.
func (d *Dispatcher) Notify(ctx context.Context, evt Event) {
	for _, ch := range d.channels {
		if err := ch.Send(ctx, evt); err != nil {
			slog.Warn("notify: channel send failed",
				"channel", ch.Name(), "event", evt.Type,
				"repo", evt.Item.Repo, "item", evt.Item.ID, "error", err)
		}
	}
}
