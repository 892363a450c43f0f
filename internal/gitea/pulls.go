package gitea

import (
	"context"
	"fmt"
	"net/url"
)

// ListPullRequests lists pull requests of a repository.
// state may be "open", "closed" or "all"; empty means the server default.
func (c *Client) ListPullRequests(ctx context.Context, owner, repo, state string) ([]PullRequest, error) {
	endpoint := fmt.Sprintf("/repos/%s/%s/pulls", owner, repo)
	if state != "" {
		endpoint += "?state=" + url.QueryEscape(state)
	}

	var prs []PullRequest
	err := c.get(ctx, endpoint, &prs)
	return prs, err
}

// GetPullRequest fetches a single pull request by number.
func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, number int64) (PullRequest, error) {
	var pr PullRequest
	err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/pulls/%d", owner, repo, number), &pr)
	return pr, err
}

// ListPullRequestFiles lists the files changed by a pull request.
func (c *Client) ListPullRequestFiles(ctx context.Context, owner, repo string, number int64) ([]PullRequestFile, error) {
	var files []PullRequestFile
	err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/pulls/%d/files", owner, repo, number), &files)
	return files, err
}

// ListPullRequestComments lists the discussion comments of a pull request.
func (c *Client) ListPullRequestComments(ctx context.Context, owner, repo string, number int64) ([]Comment, error) {
	var comments []Comment
	err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/pulls/%d/comments", owner, repo, number), &comments)
	return comments, err
}

// CreateComment posts a comment on a pull request.
func (c *Client) CreateComment(ctx context.Context, owner, repo string, number int64, body string) (Comment, error) {
	payload := struct {
		Body string `json:"body"`
	}{Body: body}

	var comment Comment
	err := c.post(ctx, fmt.Sprintf("/repos/%s/%s/pulls/%d/comments", owner, repo, number), payload, &comment)
	return comment, err
}

// MergePullRequest merges a pull request using the given method.
// The server performs the merge; no local state is mutated.
func (c *Client) MergePullRequest(ctx context.Context, owner, repo string, number int64, method MergeMethod) error {
	if !method.Valid() {
		return fmt.Errorf("invalid merge method %q (want merge, squash or rebase)", method)
	}

	payload := struct {
		MergeMethod MergeMethod `json:"merge_method"`
	}{MergeMethod: method}

	return c.post(ctx, fmt.Sprintf("/repos/%s/%s/pulls/%d/merge", owner, repo, number), payload, nil)
}

// ClosePullRequest closes a pull request without merging it.
func (c *Client) ClosePullRequest(ctx context.Context, owner, repo string, number int64) error {
	payload := struct {
		State string `json:"state"`
	}{State: "closed"}

	return c.patch(ctx, fmt.Sprintf("/repos/%s/%s/pulls/%d", owner, repo, number), payload, nil)
}

// ListIssues lists the open issues of a repository, excluding entries that
// are actually pull requests (identified by the pull-request back-reference
// the forge attaches to them).
func (c *Client) ListIssues(ctx context.Context, owner, repo, state string) ([]Issue, error) {
	endpoint := fmt.Sprintf("/repos/%s/%s/issues", owner, repo)
	if state != "" {
		endpoint += "?state=" + url.QueryEscape(state)
	}

	var raw []Issue
	if err := c.get(ctx, endpoint, &raw); err != nil {
		return nil, err
	}

	issues := make([]Issue, 0, len(raw))
	for _, issue := range raw {
		if issue.PullRequest != nil {
			continue
		}
		issues = append(issues, issue)
	}
	return issues, nil
}

// GetIssue fetches a single issue by number.
func (c *Client) GetIssue(ctx context.Context, owner, repo string, number int64) (Issue, error) {
	var issue Issue
	err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/issues/%d", owner, repo, number), &issue)
	return issue, err
}
