package localrepo

import (
	"context"
	"path"
	"strconv"
	"strings"
)

// SyncStatus describes local/remote divergence of one working copy,
// computed on demand against its upstream tracking branch.
type SyncStatus struct {
	IsDirty   bool
	Ahead     int
	Behind    int
	Untracked []string
}

// Status computes the sync status of the working copy at path.
//
// A path without version-control metadata is a valid "not a repo" state
// and returns a zeroed status without running any git command. A missing
// upstream tracking ref yields ahead/behind of 0 rather than an error.
func (m *Manager) Status(ctx context.Context, path string) (SyncStatus, error) {
	var status SyncStatus

	if !isWorkingCopy(path) {
		return status, nil
	}

	out, err := runGit(ctx, path, "status", "--porcelain")
	if err != nil {
		return status, err
	}
	dirty, untracked := parsePorcelain(out)
	status.IsDirty = dirty
	status.Untracked = m.filterExcluded(untracked)

	status.Ahead = countRevs(ctx, path, "@{upstream}..HEAD")
	status.Behind = countRevs(ctx, path, "HEAD..@{upstream}")

	return status, nil
}

// parsePorcelain splits porcelain status output into a dirty flag and the
// untracked paths. Any line that is not purely untracked counts as dirty.
func parsePorcelain(out string) (dirty bool, untracked []string) {
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "??") {
			untracked = append(untracked, strings.TrimSpace(line[2:]))
			continue
		}
		dirty = true
	}
	return dirty, untracked
}

// filterExcluded drops untracked paths matching a configured sync-exclude
// glob. Patterns match against the full relative path and the base name.
func (m *Manager) filterExcluded(paths []string) []string {
	if len(m.excludes) == 0 {
		return paths
	}

	var kept []string
	for _, p := range paths {
		if matchesAny(m.excludes, p) {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

func matchesAny(patterns []string, p string) bool {
	for _, pattern := range patterns {
		if ok, err := path.Match(pattern, p); err == nil && ok {
			return true
		}
		if ok, err := path.Match(pattern, path.Base(p)); err == nil && ok {
			return true
		}
	}
	return false
}

// countRevs counts commits in a revision range. Failures (typically a
// missing tracking ref) default to 0.
func countRevs(ctx context.Context, path, revRange string) int {
	out, err := runGit(ctx, path, "rev-list", "--count", revRange)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0
	}
	return n
}
