package models

import "time"

// ItemKind distinguishes the two tracked entity types.
type ItemKind string

const (
	KindPullRequest ItemKind = "pull_request"
	KindIssue       ItemKind = "issue"
)

func (k ItemKind) String() string { return string(k) }

// TrackedItem is an open pull request or issue on a tracked repository.
// ID is the platform-global identifier (stable across edits), Number is
// the per-repository display number used for comment endpoints.
type TrackedItem struct {
	ID     int64    `json:"id"`
	Repo   string   `json:"repo"` // owner/name
	Kind   ItemKind `json:"kind"`
	Number int      `json:"number"`
	Title  string   `json:"title"`
	Author string   `json:"author"`
	URL    string   `json:"url"`
	Draft  bool     `json:"draft"`
	// HeadRepoURL and HeadBranch locate the content under review
	// (pull requests only, used for checkout before inspection).
	HeadRepoURL string    `json:"head_repo_url,omitempty"`
	HeadBranch  string    `json:"head_branch,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Repo holds the display metadata served by the repo command and the
// gateway's live repo lookup. Independent of the ledger.
type Repo struct {
	Provider    string `json:"provider"` // github | gitlab
	Owner       string `json:"owner"`
	Name        string `json:"name"`
	FullName    string `json:"full_name"` // owner/name
	Description string `json:"description"`
	HTMLURL     string `json:"html_url"`
	Stars       int    `json:"stars"`
	Forks       int    `json:"forks"`
	OpenIssues  int    `json:"open_issues"`
}
