package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/the1andoni/repowatch/internal/config"
	"github.com/the1andoni/repowatch/models"
)

// Embed colors matching the two message variants: neutral green for new
// items, warning red when findings are present.
const (
	discordColorNew      = 0x2ECC71
	discordColorFindings = 0xFF0000
)

// DiscordChannel sends rich embeds to a Discord webhook URL.
type DiscordChannel struct {
	cfg      config.DiscordNotifyConfig
	renderer *Renderer
	client   *http.Client
}

// NewDiscord creates a DiscordChannel from cfg.
func NewDiscord(cfg config.DiscordNotifyConfig, renderer *Renderer) *DiscordChannel {
	return &DiscordChannel{cfg: cfg, renderer: renderer, client: &http.Client{Timeout: 5 * time.Second}}
}

func (d *DiscordChannel) Name() string       { return "discord" }
func (d *DiscordChannel) IsConfigured() bool { return d.cfg.WebhookURL != "" }

func (d *DiscordChannel) Send(ctx context.Context, evt Event) error {
	color := discordColorNew
	if evt.Type == EventPullFindings {
		color = discordColorFindings
	}

	embed := map[string]any{
		"title":       d.renderer.Title(evt),
		"description": fmt.Sprintf("Author: %s\n[View %s](%s)", evt.Item.Author, kindLabel(evt.Item.Kind), evt.Item.URL),
		"color":       color,
	}
	if evt.Item.Kind == models.KindPullRequest {
		summary := evt.Summary
		if summary == "" {
			summary = models.NoProblemsText
		}
		// Discord caps embed field values at 1024 chars.
		if len(summary) > 1024 {
			summary = summary[:1021] + "..."
		}
		embed["fields"] = []map[string]any{
			{"name": "Inspection results", "value": summary},
		}
	}

	payload := map[string]any{
		"embeds": []map[string]any{embed},
	}
	if d.cfg.Username != "" {
		payload["username"] = d.cfg.Username
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.WebhookURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := d.client.Do(req) // #nosec G107 -- WebhookURL is a user-configured Discord webhook URL
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("discord webhook returned %d", resp.StatusCode)
	}
	return nil
}

func kindLabel(kind models.ItemKind) string {
	if kind == models.KindIssue {
		return "Issue"
	}
	return "Pull Request"
}
