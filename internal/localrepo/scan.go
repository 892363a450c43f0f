package localrepo

import (
	"os"
	"path/filepath"
	"regexp"

	git "github.com/go-git/go-git/v6"
)

// LocalRepository is a working copy discovered under the clone root.
type LocalRepository struct {
	Path     string
	CloneURL string
	Owner    string
	Name     string
}

// ownerRepoPattern matches the trailing /owner/name(.git)? of a remote URL.
var ownerRepoPattern = regexp.MustCompile(`[/:]([^/:]+)/([^/]+?)(?:\.git)?$`)

// Scan enumerates working copies in the clone root's immediate
// subdirectories. A subdirectory qualifies when it contains
// version-control metadata and its origin remote URL carries a trailing
// owner/name pair. Directories with an unusual or missing remote are
// silently skipped so one odd folder doesn't break enumeration of the
// others.
func (m *Manager) Scan() ([]LocalRepository, error) {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var repos []LocalRepository
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		path := filepath.Join(m.root, entry.Name())
		if !isWorkingCopy(path) {
			continue
		}

		remoteURL, err := originURL(path)
		if err != nil {
			if m.logger != nil {
				m.logger.Debug("Skipping directory without readable remote", "path", path, "error", err)
			}
			continue
		}

		matches := ownerRepoPattern.FindStringSubmatch(remoteURL)
		if matches == nil {
			if m.logger != nil {
				m.logger.Debug("Skipping directory with unrecognized remote URL", "path", path, "url", remoteURL)
			}
			continue
		}

		repos = append(repos, LocalRepository{
			Path:     path,
			CloneURL: remoteURL,
			Owner:    matches[1],
			Name:     matches[2],
		})
	}

	return repos, nil
}

// originURL reads the configured origin remote URL of a working copy.
func originURL(path string) (string, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return "", err
	}

	remote, err := repo.Remote("origin")
	if err != nil {
		return "", err
	}

	cfg := remote.Config()
	if cfg == nil || len(cfg.URLs) == 0 {
		return "", git.ErrRemoteNotFound
	}
	return cfg.URLs[0], nil
}
