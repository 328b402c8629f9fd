package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/the1andoni/repowatch/internal/config"
	"github.com/the1andoni/repowatch/models"
)

// Provider abstracts list/detail/comment operations against a Git hosting
// platform. Implementations: GitHub, GitLab.
//
// Every call returns a typed *APIError on non-success status so callers
// can skip a repository for the current pass instead of aborting it.
type Provider interface {
	// Name identifies the provider (e.g. "github", "gitlab").
	Name() string

	// ListOpenPullRequests returns all open pull requests on owner/repo,
	// following pagination. Order is the platform's listing order.
	ListOpenPullRequests(ctx context.Context, repo string) ([]models.TrackedItem, error)

	// ListOpenIssues returns all open issues on owner/repo. Issues that
	// are themselves pull requests are filtered out.
	ListOpenIssues(ctx context.Context, repo string) ([]models.TrackedItem, error)

	// ListChangedFiles returns the file paths touched by a pull request.
	ListChangedFiles(ctx context.Context, item models.TrackedItem) ([]string, error)

	// PostComment adds a comment to the pull request or issue number.
	PostComment(ctx context.Context, repo string, number int, body string) error

	// GetRepo returns live display metadata for a repository,
	// independent of the ledger.
	GetRepo(ctx context.Context, owner, name string) (*models.Repo, error)

	// AuthToken returns the credential used for git checkout.
	AuthToken() string
}

// New returns the Provider selected by cfg.Monitor.Provider.
func New(cfg *config.Config) (Provider, error) {
	switch cfg.Monitor.Provider {
	case "github", "":
		if cfg.Git.GitHub.Token == "" {
			return nil, fmt.Errorf("no GitHub token configured; run 'repowatch onboard'")
		}
		return NewGitHub(cfg.Git.GitHub)
	case "gitlab":
		if cfg.Git.GitLab.Token == "" {
			return nil, fmt.Errorf("no GitLab token configured; run 'repowatch onboard'")
		}
		return NewGitLab(cfg.Git.GitLab)
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Monitor.Provider)
	}
}

// SplitSlug splits "owner/name" into its parts.
func SplitSlug(slug string) (owner, name string, err error) {
	parts := strings.SplitN(slug, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository slug %q (want owner/repo)", slug)
	}
	return parts[0], parts[1], nil
}
