package repository

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/the1andoni/repowatch/models"
)

// Checkout holds a pull request's head checked out to a temp directory,
// so inspectors see file content at HEAD rather than whatever happens to
// be on the local disk.
type Checkout struct {
	LocalPath string
	Branch    string
	Commit    string
}

// Close removes the temporary working tree.
func (c *Checkout) Close() error {
	if c.LocalPath == "" {
		return nil
	}
	return os.RemoveAll(c.LocalPath)
}

// CheckoutPullRequest shallow-clones the head branch of item to a
// temporary directory. token is used for HTTPS authentication.
func CheckoutPullRequest(ctx context.Context, item models.TrackedItem, token string) (*Checkout, error) {
	if item.HeadRepoURL == "" {
		return nil, fmt.Errorf("pull request %s#%d has no head repository URL", item.Repo, item.Number)
	}

	tmpDir, err := os.MkdirTemp("", "repowatch-checkout-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}

	cloneOpts := &gogit.CloneOptions{
		URL:      item.HeadRepoURL,
		Depth:    1, // shallow clone for speed
		Progress: nil,
	}
	if token != "" {
		cloneOpts.Auth = &githttp.BasicAuth{
			Username: "repowatch",
			Password: token,
		}
	}
	if item.HeadBranch != "" {
		cloneOpts.ReferenceName = plumbing.NewBranchReferenceName(item.HeadBranch)
		cloneOpts.SingleBranch = true
	}

	slog.Debug("checking out pull request head",
		"repo", item.Repo,
		"number", item.Number,
		"branch", item.HeadBranch,
		"dest", tmpDir,
	)

	repo, err := gogit.PlainCloneContext(ctx, tmpDir, false, cloneOpts)
	if err != nil {
		os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("cloning %s: %w", item.HeadRepoURL, err)
	}

	head, err := repo.Head()
	if err != nil {
		os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("resolving HEAD: %w", err)
	}

	return &Checkout{
		LocalPath: tmpDir,
		Branch:    head.Name().Short(),
		Commit:    head.Hash().String(),
	}, nil
}
