package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/the1andoni/repowatch/internal/config"
	"github.com/the1andoni/repowatch/models"
)

type stubChannel struct {
	name       string
	configured bool
	sendErr    error
	sent       []Event
}

func (c *stubChannel) Name() string       { return c.name }
func (c *stubChannel) IsConfigured() bool { return c.configured }
func (c *stubChannel) Send(ctx context.Context, evt Event) error {
	c.sent = append(c.sent, evt)
	return c.sendErr
}

func TestDispatcherSkipsUnconfiguredChannels(t *testing.T) {
	on := &stubChannel{name: "on", configured: true}
	off := &stubChannel{name: "off", configured: false}
	d := NewDispatcher(config.NotifyConfig{}, on, off)

	d.Notify(context.Background(), Event{Type: EventNewPull})

	if len(on.sent) != 1 {
		t.Fatalf("configured channel should receive the event, got %d", len(on.sent))
	}
	if len(off.sent) != 0 {
		t.Fatalf("unconfigured channel must be skipped, got %d", len(off.sent))
	}
}

func TestDispatcherFailingChannelDoesNotBlockOthers(t *testing.T) {
	broken := &stubChannel{name: "broken", configured: true, sendErr: errors.New("boom")}
	healthy := &stubChannel{name: "healthy", configured: true}
	d := NewDispatcher(config.NotifyConfig{}, broken, healthy)

	d.Notify(context.Background(), Event{Type: EventNewIssue})

	if len(healthy.sent) != 1 {
		t.Fatalf("healthy channel must still receive the event, got %d", len(healthy.sent))
	}
}

func TestDispatcherIsAnyConfigured(t *testing.T) {
	if NewDispatcher(config.NotifyConfig{}).IsAnyConfigured() {
		t.Fatal("empty config should leave no channels active")
	}
	on := &stubChannel{name: "on", configured: true}
	if !NewDispatcher(config.NotifyConfig{}, on).IsAnyConfigured() {
		t.Fatal("one configured channel should count")
	}
}

func TestDiscordSendBuildsEmbed(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("invalid webhook payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	ch := NewDiscord(config.DiscordNotifyConfig{WebhookURL: srv.URL, Username: "repowatch"},
		NewRenderer(config.TemplateConfig{}))
	evt := Event{
		Type: EventPullFindings,
		Item: models.TrackedItem{
			ID: 1, Kind: models.KindPullRequest, Title: "Fix race", Author: "ada",
			URL: "https://example.com/1",
		},
		Summary: "**app.py**:\nsecurity problems found: 1",
	}
	if err := ch.Send(context.Background(), evt); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if got["username"] != "repowatch" {
		t.Fatalf("username override missing: %v", got)
	}
	embeds, ok := got["embeds"].([]any)
	if !ok || len(embeds) != 1 {
		t.Fatalf("expected one embed, got %v", got["embeds"])
	}
	embed := embeds[0].(map[string]any)
	if int(embed["color"].(float64)) != discordColorFindings {
		t.Fatalf("findings events use the red embed, got %v", embed["color"])
	}
	fields, ok := embed["fields"].([]any)
	if !ok || len(fields) != 1 {
		t.Fatalf("pull request embeds carry an inspection field, got %v", embed["fields"])
	}
	field := fields[0].(map[string]any)
	if !strings.Contains(field["value"].(string), "security problems found: 1") {
		t.Fatalf("inspection field must hold the summary, got %v", field["value"])
	}
}

func TestDiscordSendNewItemUsesGreen(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	ch := NewDiscord(config.DiscordNotifyConfig{WebhookURL: srv.URL}, NewRenderer(config.TemplateConfig{}))
	evt := Event{
		Type: EventNewIssue,
		Item: models.TrackedItem{ID: 2, Kind: models.KindIssue, Title: "Crash", Author: "sam", URL: "https://example.com/2"},
	}
	if err := ch.Send(context.Background(), evt); err != nil {
		t.Fatalf("Send: %v", err)
	}

	embed := got["embeds"].([]any)[0].(map[string]any)
	if int(embed["color"].(float64)) != discordColorNew {
		t.Fatalf("new items use the green embed, got %v", embed["color"])
	}
	if _, hasFields := embed["fields"]; hasFields {
		t.Fatal("issue embeds carry no inspection field")
	}
}

func TestDiscordSendReportsHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	ch := NewDiscord(config.DiscordNotifyConfig{WebhookURL: srv.URL}, NewRenderer(config.TemplateConfig{}))
	err := ch.Send(context.Background(), Event{Type: EventNewPull, Item: models.TrackedItem{Kind: models.KindPullRequest}})
	if err == nil {
		t.Fatal("non-2xx webhook response must surface as an error")
	}
}
