package gitea

import "time"

// User is an account on the forge.
type User struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

// Repository is the forge's view of a repository.
// Fetched fresh per listing call and never persisted locally.
type Repository struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Owner         User   `json:"owner"`
	Private       bool   `json:"private"`
	Fork          bool   `json:"fork"`
	Description   string `json:"description"`
	HTMLURL       string `json:"html_url"`
	CloneURL      string `json:"clone_url"`
	SSHURL        string `json:"ssh_url"`
	DefaultBranch string `json:"default_branch"`
	StarsCount    int    `json:"stars_count"`
	ForksCount    int    `json:"forks_count"`
}

// Branch is a branch on a remote repository.
type Branch struct {
	Name   string       `json:"name"`
	Commit BranchCommit `json:"commit"`
}

// BranchCommit identifies the tip commit of a branch.
type BranchCommit struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// PRBranch describes one side (head or base) of a pull request.
type PRBranch struct {
	Label string      `json:"label"`
	Ref   string      `json:"ref"`
	Sha   string      `json:"sha"`
	Repo  *Repository `json:"repo"`
}

// PullRequest is a pull request on the forge. Merge and close mutate it
// server-side; callers re-fetch to observe the result.
type PullRequest struct {
	ID             int64      `json:"id"`
	Number         int64      `json:"number"`
	Title          string     `json:"title"`
	Body           string     `json:"body"`
	State          string     `json:"state"` // "open" or "closed"
	User           User       `json:"user"`
	Assignee       *User      `json:"assignee"`
	Head           PRBranch   `json:"head"`
	Base           PRBranch   `json:"base"`
	Merged         bool       `json:"merged"`
	Mergeable      bool       `json:"mergeable"`
	MergeableState string     `json:"mergeable_state"`
	Comments       int        `json:"comments"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ClosedAt       *time.Time `json:"closed_at"`
	MergedAt       *time.Time `json:"merged_at"`
}

// PullRequestFile is one file changed by a pull request.
type PullRequestFile struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"` // added, removed, modified, renamed, copied, type-change, unknown
	Patch     string `json:"patch"`  // unified diff, may be empty
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Changes   int    `json:"changes"`
}

// Comment is a discussion comment on an issue or pull request.
type Comment struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Issue is an issue on the forge. The forge reports pull requests through
// the same endpoint; entries carrying a pull-request back-reference are
// filtered out by ListIssues.
type Issue struct {
	ID          int64     `json:"id"`
	Number      int64     `json:"number"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	State       string    `json:"state"`
	User        User      `json:"user"`
	Assignee    *User     `json:"assignee"`
	Comments    int       `json:"comments"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	PullRequest *struct {
		Merged bool `json:"merged"`
	} `json:"pull_request"`
}

// ContentsEntry is one entry of a repository directory listing, or a single
// file when fetched by path. Trees are fetched one level at a time and never
// pre-materialized.
type ContentsEntry struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Type        string `json:"type"` // "file" or "dir"
	Size        int64  `json:"size"`
	Encoding    string `json:"encoding"` // "base64" for file content fetches
	Content     string `json:"content"`
	DownloadURL string `json:"download_url"`
}

// IsDir reports whether the entry is a directory.
func (e ContentsEntry) IsDir() bool {
	return e.Type == "dir"
}

// MergeMethod selects how a pull request is merged.
type MergeMethod string

const (
	MergeMethodMerge  MergeMethod = "merge"
	MergeMethodSquash MergeMethod = "squash"
	MergeMethodRebase MergeMethod = "rebase"
)

// Valid checks if the merge method is one the forge accepts.
func (m MergeMethod) Valid() bool {
	return m == MergeMethodMerge || m == MergeMethodSquash || m == MergeMethodRebase
}

// serverVersion is the payload of the lightweight version endpoint used by
// the protocol probe.
type serverVersion struct {
	Version string `json:"version"`
}
