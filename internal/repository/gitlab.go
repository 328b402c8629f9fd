package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/the1andoni/repowatch/internal/config"
	"github.com/the1andoni/repowatch/models"
	gitlab "gitlab.com/gitlab-org/api/client-go"
)

// GitLabProvider implements Provider for GitLab (cloud and self-hosted).
// Merge requests are surfaced as pull requests.
type GitLabProvider struct {
	client *gitlab.Client
	token  string
	host   string
}

// NewGitLab creates a GitLabProvider from the given configuration.
func NewGitLab(cfg config.GitLabConfig) (*GitLabProvider, error) {
	opts := []gitlab.ClientOptionFunc{}
	if cfg.Host != "" && cfg.Host != "gitlab.com" {
		base := fmt.Sprintf("https://%s/api/v4/", cfg.Host)
		opts = append(opts, gitlab.WithBaseURL(base))
	}

	client, err := gitlab.NewClient(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating GitLab client: %w", err)
	}

	return &GitLabProvider{client: client, token: cfg.Token, host: cfg.Host}, nil
}

func (g *GitLabProvider) Name() string      { return "gitlab" }
func (g *GitLabProvider) AuthToken() string { return g.token }

func (g *GitLabProvider) ListOpenPullRequests(ctx context.Context, repo string) ([]models.TrackedItem, error) {
	var items []models.TrackedItem
	page := int64(1)
	for {
		var mrs []*gitlab.BasicMergeRequest
		resp, err := g.do(ctx, "listing merge requests", repo, func() (*gitlab.Response, error) {
			var r *gitlab.Response
			var err error
			mrs, r, err = g.client.MergeRequests.ListProjectMergeRequests(repo,
				&gitlab.ListProjectMergeRequestsOptions{
					State:       gitlab.Ptr("opened"),
					ListOptions: gitlab.ListOptions{PerPage: 100, Page: page},
				}, gitlab.WithContext(ctx))
			return r, err
		})
		if err != nil {
			return nil, err
		}
		for _, mr := range mrs {
			item := models.TrackedItem{
				ID:         mr.ID,
				Repo:       repo,
				Kind:       models.KindPullRequest,
				Number:     int(mr.IID),
				Title:      mr.Title,
				URL:        mr.WebURL,
				Draft:      mr.Draft,
				HeadBranch: mr.SourceBranch,
			}
			if mr.Author != nil {
				item.Author = mr.Author.Username
			}
			if mr.CreatedAt != nil {
				item.CreatedAt = *mr.CreatedAt
			}
			items = append(items, item)
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		page = int64(resp.NextPage)
	}
	return items, nil
}

func (g *GitLabProvider) ListOpenIssues(ctx context.Context, repo string) ([]models.TrackedItem, error) {
	var items []models.TrackedItem
	page := int64(1)
	for {
		var issues []*gitlab.Issue
		resp, err := g.do(ctx, "listing issues", repo, func() (*gitlab.Response, error) {
			var r *gitlab.Response
			var err error
			issues, r, err = g.client.Issues.ListProjectIssues(repo,
				&gitlab.ListProjectIssuesOptions{
					State:       gitlab.Ptr("opened"),
					ListOptions: gitlab.ListOptions{PerPage: 100, Page: page},
				}, gitlab.WithContext(ctx))
			return r, err
		})
		if err != nil {
			return nil, err
		}
		for _, is := range issues {
			// GitLab keeps issues and merge requests in separate
			// endpoints, so no pull-request filtering is needed here.
			item := models.TrackedItem{
				ID:     int64(is.ID),
				Repo:   repo,
				Kind:   models.KindIssue,
				Number: int(is.IID),
				Title:  is.Title,
				URL:    is.WebURL,
			}
			if is.Author != nil {
				item.Author = is.Author.Username
			}
			if is.CreatedAt != nil {
				item.CreatedAt = *is.CreatedAt
			}
			items = append(items, item)
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		page = int64(resp.NextPage)
	}
	return items, nil
}

func (g *GitLabProvider) ListChangedFiles(ctx context.Context, item models.TrackedItem) ([]string, error) {
	var paths []string
	page := int64(1)
	for {
		var diffs []*gitlab.MergeRequestDiff
		resp, err := g.do(ctx, "listing changed files", item.Repo, func() (*gitlab.Response, error) {
			var r *gitlab.Response
			var err error
			diffs, r, err = g.client.MergeRequests.ListMergeRequestDiffs(item.Repo, int64(item.Number),
				&gitlab.ListMergeRequestDiffsOptions{
					ListOptions: gitlab.ListOptions{PerPage: 100, Page: page},
				}, gitlab.WithContext(ctx))
			return r, err
		})
		if err != nil {
			return nil, err
		}
		for _, d := range diffs {
			path := d.NewPath
			if path == "" {
				path = d.OldPath
			}
			paths = append(paths, path)
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		page = int64(resp.NextPage)
	}
	return paths, nil
}

func (g *GitLabProvider) PostComment(ctx context.Context, repo string, number int, body string) error {
	_, err := g.do(ctx, "posting comment", repo, func() (*gitlab.Response, error) {
		_, r, err := g.client.Notes.CreateMergeRequestNote(repo, int64(number),
			&gitlab.CreateMergeRequestNoteOptions{Body: gitlab.Ptr(body)},
			gitlab.WithContext(ctx))
		return r, err
	})
	return err
}

func (g *GitLabProvider) GetRepo(ctx context.Context, owner, name string) (*models.Repo, error) {
	nameWithNS := owner + "/" + name
	var proj *gitlab.Project
	_, err := g.do(ctx, "getting project", nameWithNS, func() (*gitlab.Response, error) {
		var r *gitlab.Response
		var err error
		proj, r, err = g.client.Projects.GetProject(nameWithNS, nil, gitlab.WithContext(ctx))
		return r, err
	})
	if err != nil {
		return nil, err
	}
	return &models.Repo{
		Provider:    "gitlab",
		Owner:       owner,
		Name:        name,
		FullName:    proj.PathWithNamespace,
		Description: proj.Description,
		HTMLURL:     proj.WebURL,
		Stars:       int(proj.StarCount),
		Forks:       int(proj.ForksCount),
		OpenIssues:  int(proj.OpenIssuesCount),
	}, nil
}

// do invokes call, retrying exactly once on rate limiting, and wraps any
// failure as a typed *APIError.
func (g *GitLabProvider) do(ctx context.Context, op, repo string, call func() (*gitlab.Response, error)) (*gitlab.Response, error) {
	resp, err := call()
	if err == nil {
		return resp, nil
	}

	apiErr := g.wrap(op, repo, resp, err)
	if apiErr.Kind != FailureRateLimited {
		return resp, apiErr
	}

	slog.Warn("rate limited, backing off before single retry",
		"op", op, "repo", repo, "wait", rateLimitBackoff)
	select {
	case <-time.After(rateLimitBackoff):
	case <-ctx.Done():
		return resp, ctx.Err()
	}

	resp, err = call()
	if err == nil {
		return resp, nil
	}
	return resp, g.wrap(op, repo, resp, err)
}

func (g *GitLabProvider) wrap(op, repo string, resp *gitlab.Response, err error) *APIError {
	status := 0
	if resp != nil && resp.Response != nil {
		status = resp.StatusCode
	}
	return apiError(op, repo, status, err)
}
