package notify

import (
	"context"
	"strings"
	"testing"

	"github.com/the1andoni/repowatch/models"
)

type stubProvider struct {
	comments []string
	repos    []string
	numbers  []int
}

func (p *stubProvider) Name() string { return "stub" }
func (p *stubProvider) ListOpenPullRequests(ctx context.Context, repo string) ([]models.TrackedItem, error) {
	return nil, nil
}
func (p *stubProvider) ListOpenIssues(ctx context.Context, repo string) ([]models.TrackedItem, error) {
	return nil, nil
}
func (p *stubProvider) ListChangedFiles(ctx context.Context, item models.TrackedItem) ([]string, error) {
	return nil, nil
}
func (p *stubProvider) PostComment(ctx context.Context, repo string, number int, body string) error {
	p.comments = append(p.comments, body)
	p.repos = append(p.repos, repo)
	p.numbers = append(p.numbers, number)
	return nil
}
func (p *stubProvider) GetRepo(ctx context.Context, owner, name string) (*models.Repo, error) {
	return nil, nil
}
func (p *stubProvider) AuthToken() string { return "" }

func TestCommentPostsFindingsSummary(t *testing.T) {
	provider := &stubProvider{}
	ch := NewComment(provider, true)

	evt := Event{
		Type: EventPullFindings,
		Item: models.TrackedItem{
			Kind: models.KindPullRequest, Repo: "acme/api", Number: 7,
		},
		Summary: "**app.py**:\nquality problems found: 1",
	}
	if err := ch.Send(context.Background(), evt); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if len(provider.comments) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(provider.comments))
	}
	if provider.repos[0] != "acme/api" || provider.numbers[0] != 7 {
		t.Fatalf("comment addressed wrong item: %s#%d", provider.repos[0], provider.numbers[0])
	}
	if !strings.Contains(provider.comments[0], "quality problems found: 1") {
		t.Fatalf("comment must carry the summary: %q", provider.comments[0])
	}
}

func TestCommentIgnoresNonFindingsEvents(t *testing.T) {
	provider := &stubProvider{}
	ch := NewComment(provider, true)

	events := []Event{
		{Type: EventNewPull, Item: models.TrackedItem{Kind: models.KindPullRequest}},
		{Type: EventNewIssue, Item: models.TrackedItem{Kind: models.KindIssue}},
		{Type: EventPullFindings, Item: models.TrackedItem{Kind: models.KindPullRequest}}, // no summary
	}
	for _, evt := range events {
		if err := ch.Send(context.Background(), evt); err != nil {
			t.Fatalf("Send(%s): %v", evt.Type, err)
		}
	}
	if len(provider.comments) != 0 {
		t.Fatalf("only findings events with a summary produce comments, got %d", len(provider.comments))
	}
}

func TestCommentIncludesSuggestedDiff(t *testing.T) {
	provider := &stubProvider{}
	ch := NewComment(provider, true)

	evt := Event{
		Type:          EventPullFindings,
		Item:          models.TrackedItem{Kind: models.KindPullRequest, Repo: "acme/api", Number: 1},
		Summary:       "**app.py**:\nquality problems found: 1",
		SuggestedDiff: "-x=1\n+x = 1",
	}
	if err := ch.Send(context.Background(), evt); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !strings.Contains(provider.comments[0], "```diff") {
		t.Fatalf("suggested diff rides in a diff block: %q", provider.comments[0])
	}
}

func TestCommentDisabledIsNotConfigured(t *testing.T) {
	if NewComment(&stubProvider{}, false).IsConfigured() {
		t.Fatal("disabled comment channel must report unconfigured")
	}
	if NewComment(nil, true).IsConfigured() {
		t.Fatal("comment channel without provider must report unconfigured")
	}
	if !NewComment(&stubProvider{}, true).IsConfigured() {
		t.Fatal("enabled comment channel with provider is configured")
	}
}
