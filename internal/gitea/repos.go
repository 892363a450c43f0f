package gitea

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	forgeuri "forgectl/internal/uri"
)

// GetCurrentUser fetches the authenticated user.
func (c *Client) GetCurrentUser(ctx context.Context) (User, error) {
	var u User
	err := c.get(ctx, "/user", &u)
	return u, err
}

// GetRepository fetches metadata for a single repository.
func (c *Client) GetRepository(ctx context.Context, owner, repo string) (Repository, error) {
	var r Repository
	err := c.get(ctx, fmt.Sprintf("/repos/%s/%s", owner, repo), &r)
	return r, err
}

// searchResult is the envelope the forge wraps around repository searches.
type searchResult struct {
	OK   bool         `json:"ok"`
	Data []Repository `json:"data"`
}

// SearchRepositories searches repositories by free-text query.
// limit <= 0 means the server default.
func (c *Client) SearchRepositories(ctx context.Context, query string, limit int) ([]Repository, error) {
	q := url.Values{}
	q.Set("q", query)
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}

	var result searchResult
	if err := c.get(ctx, "/repos/search?"+q.Encode(), &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// ListMyRepositories lists repositories of the authenticated user.
func (c *Client) ListMyRepositories(ctx context.Context) ([]Repository, error) {
	var repos []Repository
	err := c.get(ctx, "/user/repos", &repos)
	return repos, err
}

// ListOwnerRepositories lists repositories belonging to a given owner.
func (c *Client) ListOwnerRepositories(ctx context.Context, owner string) ([]Repository, error) {
	var repos []Repository
	err := c.get(ctx, fmt.Sprintf("/users/%s/repos", owner), &repos)
	return repos, err
}

// ListBranches lists the branches of a repository.
func (c *Client) ListBranches(ctx context.Context, owner, repo string) ([]Branch, error) {
	var branches []Branch
	err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/branches", owner, repo), &branches)
	return branches, err
}

// CreateBranch creates a new branch from a source branch.
func (c *Client) CreateBranch(ctx context.Context, owner, repo, name, from string) (Branch, error) {
	body := struct {
		NewBranchName string `json:"new_branch_name"`
		OldBranchName string `json:"old_branch_name,omitempty"`
	}{NewBranchName: name, OldBranchName: from}

	var branch Branch
	err := c.post(ctx, fmt.Sprintf("/repos/%s/%s/branches", owner, repo), body, &branch)
	return branch, err
}

// contentsEndpoint builds the contents URL for a path at a ref. The ref
// parameter is omitted for "HEAD" so the forge serves its default branch.
func contentsEndpoint(owner, repo, path, ref string) string {
	endpoint := fmt.Sprintf("/repos/%s/%s/contents", owner, repo)
	// Escape per segment: slashes inside the path are separators, not data.
	for _, segment := range strings.Split(path, "/") {
		if segment != "" {
			endpoint += "/" + url.PathEscape(segment)
		}
	}
	if ref != "" && ref != forgeuri.DefaultRef {
		endpoint += "?ref=" + url.QueryEscape(ref)
	}
	return endpoint
}

// GetFileContent fetches a file at a path/ref and decodes its base64
// payload into bytes.
func (c *Client) GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error) {
	var entry ContentsEntry
	if err := c.get(ctx, contentsEndpoint(owner, repo, path, ref), &entry); err != nil {
		return nil, err
	}

	if entry.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", path)
	}

	decoded, err := base64.StdEncoding.DecodeString(entry.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to decode content of %s: %w", path, err)
	}
	return decoded, nil
}

// StatContents fetches the metadata entry for a path at a ref without
// decoding file content.
func (c *Client) StatContents(ctx context.Context, owner, repo, path, ref string) (ContentsEntry, error) {
	var entry ContentsEntry
	err := c.get(ctx, contentsEndpoint(owner, repo, path, ref), &entry)
	return entry, err
}

// ListContents lists one directory level of a repository at a path/ref.
// Errors propagate like every other method; callers decide whether
// empty-on-error is acceptable at the call site.
func (c *Client) ListContents(ctx context.Context, owner, repo, path, ref string) ([]ContentsEntry, error) {
	var entries []ContentsEntry
	if err := c.get(ctx, contentsEndpoint(owner, repo, path, ref), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
