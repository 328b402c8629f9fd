package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/the1andoni/repowatch/internal/config"
	"github.com/the1andoni/repowatch/models"
	gogithub "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
)

// rateLimitBackoff is the pause before the single retry of a
// rate-limited call when the API gives no reset hint.
const rateLimitBackoff = 2 * time.Second

// GitHubProvider implements Provider for GitHub and GitHub Enterprise.
type GitHubProvider struct {
	client *gogithub.Client
	token  string
	host   string
}

// NewGitHub creates a GitHubProvider from the given configuration.
func NewGitHub(cfg config.GitHubConfig) (*GitHubProvider, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	tc := oauth2.NewClient(context.Background(), ts)
	client := gogithub.NewClient(tc)

	// Support GitHub Enterprise by overriding the base URL.
	if cfg.Host != "" && cfg.Host != "github.com" {
		base := fmt.Sprintf("https://%s/api/v3/", cfg.Host)
		upload := fmt.Sprintf("https://%s/api/uploads/", cfg.Host)
		var err error
		client, err = client.WithEnterpriseURLs(base, upload)
		if err != nil {
			return nil, fmt.Errorf("configuring GitHub enterprise URLs: %w", err)
		}
	}

	return &GitHubProvider{client: client, token: cfg.Token, host: cfg.Host}, nil
}

func (g *GitHubProvider) Name() string      { return "github" }
func (g *GitHubProvider) AuthToken() string { return g.token }

func (g *GitHubProvider) ListOpenPullRequests(ctx context.Context, repo string) ([]models.TrackedItem, error) {
	owner, name, err := SplitSlug(repo)
	if err != nil {
		return nil, err
	}

	var items []models.TrackedItem
	opts := &gogithub.PullRequestListOptions{
		State:       "open",
		ListOptions: gogithub.ListOptions{PerPage: 100},
	}
	for {
		var pulls []*gogithub.PullRequest
		resp, err := g.do(ctx, "listing pull requests", repo, func() (*gogithub.Response, error) {
			var r *gogithub.Response
			pulls, r, err = g.client.PullRequests.List(ctx, owner, name, opts)
			return r, err
		})
		if err != nil {
			return nil, err
		}
		for _, pr := range pulls {
			items = append(items, models.TrackedItem{
				ID:          pr.GetID(),
				Repo:        repo,
				Kind:        models.KindPullRequest,
				Number:      pr.GetNumber(),
				Title:       pr.GetTitle(),
				Author:      pr.GetUser().GetLogin(),
				URL:         pr.GetHTMLURL(),
				Draft:       pr.GetDraft(),
				HeadRepoURL: pr.GetHead().GetRepo().GetCloneURL(),
				HeadBranch:  pr.GetHead().GetRef(),
				CreatedAt:   pr.GetCreatedAt().Time,
			})
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return items, nil
}

func (g *GitHubProvider) ListOpenIssues(ctx context.Context, repo string) ([]models.TrackedItem, error) {
	owner, name, err := SplitSlug(repo)
	if err != nil {
		return nil, err
	}

	var items []models.TrackedItem
	opts := &gogithub.IssueListByRepoOptions{
		State:       "open",
		ListOptions: gogithub.ListOptions{PerPage: 100},
	}
	for {
		var issues []*gogithub.Issue
		resp, err := g.do(ctx, "listing issues", repo, func() (*gogithub.Response, error) {
			var r *gogithub.Response
			issues, r, err = g.client.Issues.ListByRepo(ctx, owner, name, opts)
			return r, err
		})
		if err != nil {
			return nil, err
		}
		for _, is := range issues {
			// The issues endpoint conflates pull requests and issues.
			if is.IsPullRequest() {
				continue
			}
			items = append(items, models.TrackedItem{
				ID:        is.GetID(),
				Repo:      repo,
				Kind:      models.KindIssue,
				Number:    is.GetNumber(),
				Title:     is.GetTitle(),
				Author:    is.GetUser().GetLogin(),
				URL:       is.GetHTMLURL(),
				CreatedAt: is.GetCreatedAt().Time,
			})
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return items, nil
}

func (g *GitHubProvider) ListChangedFiles(ctx context.Context, item models.TrackedItem) ([]string, error) {
	owner, name, err := SplitSlug(item.Repo)
	if err != nil {
		return nil, err
	}

	var paths []string
	opts := &gogithub.ListOptions{PerPage: 100}
	for {
		var files []*gogithub.CommitFile
		resp, err := g.do(ctx, "listing changed files", item.Repo, func() (*gogithub.Response, error) {
			var r *gogithub.Response
			files, r, err = g.client.PullRequests.ListFiles(ctx, owner, name, item.Number, opts)
			return r, err
		})
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			paths = append(paths, f.GetFilename())
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return paths, nil
}

func (g *GitHubProvider) PostComment(ctx context.Context, repo string, number int, body string) error {
	owner, name, err := SplitSlug(repo)
	if err != nil {
		return err
	}
	// Pull request comments go through the issues comment endpoint.
	_, err = g.do(ctx, "posting comment", repo, func() (*gogithub.Response, error) {
		_, r, err := g.client.Issues.CreateComment(ctx, owner, name, number,
			&gogithub.IssueComment{Body: gogithub.Ptr(body)})
		return r, err
	})
	return err
}

func (g *GitHubProvider) GetRepo(ctx context.Context, owner, name string) (*models.Repo, error) {
	var repo *gogithub.Repository
	_, err := g.do(ctx, "getting repository", owner+"/"+name, func() (*gogithub.Response, error) {
		var r *gogithub.Response
		var err error
		repo, r, err = g.client.Repositories.Get(ctx, owner, name)
		return r, err
	})
	if err != nil {
		return nil, err
	}
	return &models.Repo{
		Provider:    "github",
		Owner:       repo.GetOwner().GetLogin(),
		Name:        repo.GetName(),
		FullName:    repo.GetFullName(),
		Description: repo.GetDescription(),
		HTMLURL:     repo.GetHTMLURL(),
		Stars:       repo.GetStargazersCount(),
		Forks:       repo.GetForksCount(),
		OpenIssues:  repo.GetOpenIssuesCount(),
	}, nil
}

// do invokes call, retrying exactly once when the API reports rate
// limiting, and wraps any failure as a typed *APIError.
func (g *GitHubProvider) do(ctx context.Context, op, repo string, call func() (*gogithub.Response, error)) (*gogithub.Response, error) {
	resp, err := call()
	if err == nil {
		return resp, nil
	}

	apiErr := g.wrap(op, repo, resp, err)
	if apiErr.Kind != FailureRateLimited {
		return resp, apiErr
	}

	wait := retryAfter(err)
	slog.Warn("rate limited, backing off before single retry",
		"op", op, "repo", repo, "wait", wait)
	select {
	case <-time.After(wait):
	case <-ctx.Done():
		return resp, ctx.Err()
	}

	resp, err = call()
	if err == nil {
		return resp, nil
	}
	return resp, g.wrap(op, repo, resp, err)
}

// wrap turns a go-github error into a typed *APIError.
func (g *GitHubProvider) wrap(op, repo string, resp *gogithub.Response, err error) *APIError {
	var rateErr *gogithub.RateLimitError
	var abuseErr *gogithub.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return &APIError{Kind: FailureRateLimited, Op: op, Repo: repo, Err: err}
	}
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	return apiError(op, repo, status, err)
}

// retryAfter extracts the server-suggested backoff, bounded to keep the
// pass from stalling behind a distant reset.
func retryAfter(err error) time.Duration {
	var abuseErr *gogithub.AbuseRateLimitError
	if errors.As(err, &abuseErr) && abuseErr.RetryAfter != nil {
		if d := *abuseErr.RetryAfter; d > 0 && d < time.Minute {
			return d
		}
	}
	return rateLimitBackoff
}
