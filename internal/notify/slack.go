package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/the1andoni/repowatch/internal/config"
)

// SlackChannel sends notifications to a Slack incoming webhook URL.
type SlackChannel struct {
	cfg      config.SlackNotifyConfig
	renderer *Renderer
	client   *http.Client
}

// NewSlack creates a SlackChannel from cfg.
func NewSlack(cfg config.SlackNotifyConfig, renderer *Renderer) *SlackChannel {
	return &SlackChannel{cfg: cfg, renderer: renderer, client: &http.Client{Timeout: 5 * time.Second}}
}

func (s *SlackChannel) Name() string       { return "slack" }
func (s *SlackChannel) IsConfigured() bool { return s.cfg.WebhookURL != "" }

func (s *SlackChannel) Send(ctx context.Context, evt Event) error {
	color := "#2ECC71"
	if evt.Type == EventPullFindings {
		color = "#FF0000"
	}
	attachment := map[string]any{
		"color":      color,
		"title":      s.renderer.Title(evt),
		"title_link": evt.Item.URL,
		"text":       s.renderer.Body(evt),
		"footer":     "repowatch",
		"ts":         time.Now().Unix(),
	}
	payload := map[string]any{
		"text":        s.renderer.Title(evt),
		"attachments": []map[string]any{attachment},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.WebhookURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req) // #nosec G107 -- WebhookURL is a user-configured Slack incoming webhook URL
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("slack webhook returned %d", resp.StatusCode)
	}
	return nil
}
