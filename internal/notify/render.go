package notify

import (
	"fmt"
	"strings"

	"github.com/the1andoni/repowatch/internal/config"
	"github.com/the1andoni/repowatch/models"
)

// Renderer builds the message text for an event, honouring the optional
// user templates. Supported placeholders: {title}, {author}, {url},
// {issues}.
type Renderer struct {
	templates config.TemplateConfig
}

// NewRenderer creates a Renderer from the configured templates.
func NewRenderer(templates config.TemplateConfig) *Renderer {
	return &Renderer{templates: templates}
}

// Title returns the headline for an event.
func (r *Renderer) Title(evt Event) string {
	switch evt.Type {
	case EventPullFindings:
		return fmt.Sprintf("Findings in pull request: %s", evt.Item.Title)
	case EventNewIssue:
		return fmt.Sprintf("New issue: %s", evt.Item.Title)
	default:
		return fmt.Sprintf("New pull request: %s", evt.Item.Title)
	}
}

// Body returns the message body for an event.
func (r *Renderer) Body(evt Event) string {
	tmpl := r.template(evt.Type)
	if tmpl == "" {
		tmpl = defaultTemplate(evt.Type, evt.Item.Kind)
	}
	return expand(tmpl, evt)
}

func (r *Renderer) template(eventType string) string {
	switch eventType {
	case EventPullFindings:
		return r.templates.PullFindings
	case EventNewIssue:
		return r.templates.NewIssue
	default:
		return r.templates.NewPullRequest
	}
}

func defaultTemplate(eventType string, kind models.ItemKind) string {
	switch eventType {
	case EventPullFindings:
		return "**{title}**\nSubmitted by: {author}\nView Pull Request: {url}\n\nInspection results:\n{issues}"
	case EventNewIssue:
		return "**{title}**\nOpened by: {author}\nView Issue: {url}"
	default:
		return "**{title}**\nSubmitted by: {author}\nView Pull Request: {url}"
	}
}

func expand(tmpl string, evt Event) string {
	issues := evt.Summary
	if issues == "" {
		issues = models.NoProblemsText
	}
	rep := strings.NewReplacer(
		"{title}", evt.Item.Title,
		"{author}", evt.Item.Author,
		"{url}", evt.Item.URL,
		"{issues}", issues,
	)
	return rep.Replace(tmpl)
}
