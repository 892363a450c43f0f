// Package localrepo operates local working copies of forge repositories
// via the external git binary. Every query re-derives state from the
// working copy; nothing is cached between calls, since the working copy
// can change between any two calls without this package's involvement.
package localrepo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"forgectl/internal/logging"
	"forgectl/pkg/fileops"
)

// ErrCancelled indicates the user cancelled a running operation; the child
// process was terminated. Distinct from a generic process failure.
var ErrCancelled = errors.New("operation cancelled")

// ProcessError is a non-zero exit from the git binary. Output carries
// captured stderr, or stdout when stderr was empty.
type ProcessError struct {
	Args     []string
	ExitCode int
	Output   string
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("git %s failed (exit %d)", strings.Join(e.Args, " "), e.ExitCode)
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}

// CommitPrompter asks the user for a commit message.
type CommitPrompter func() (string, error)

// Confirmer asks the user to confirm a destructive action on a path.
type Confirmer func(path string) (bool, error)

// Manager operates working copies under a configured clone root.
// excludes holds glob patterns for paths that sync status should ignore.
type Manager struct {
	root     string
	excludes []string
	logger   *logging.AppLogger
}

// NewManager creates a manager for the given clone root directory.
func NewManager(root string, excludes []string, logger *logging.AppLogger) *Manager {
	return &Manager{
		root:     fileops.ExpandPath(root),
		excludes: excludes,
		logger:   logger,
	}
}

// Root returns the configured clone root.
func (m *Manager) Root() string {
	return m.root
}

// runGit executes the git binary with the given args. A cancelled context
// kills the child and surfaces ErrCancelled; any other non-zero exit
// becomes a *ProcessError carrying captured stderr (stdout when stderr is
// empty).
func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	if dir != "" {
		cmd.Dir = dir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.String(), nil
	}

	if ctx.Err() == context.Canceled {
		return "", ErrCancelled
	}

	output := strings.TrimSpace(stderr.String())
	if output == "" {
		output = strings.TrimSpace(stdout.String())
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	return "", &ProcessError{Args: args, ExitCode: exitCode, Output: output}
}

// Clone clones a repository into targetPath and drops the sidecar metadata
// file recording its provenance. The context cancels the running clone.
func (m *Manager) Clone(ctx context.Context, cloneURL, targetPath, server, owner, name, branch string) error {
	targetPath = fileops.ExpandPath(targetPath)
	if err := fileops.ValidatePathSecurity(targetPath); err != nil {
		return fmt.Errorf("invalid clone target: %w", err)
	}

	// An existing empty directory is fine; anything else would make git
	// clone fail or, worse, mix the clone into unrelated files.
	if info, err := os.Stat(targetPath); err == nil {
		if !info.IsDir() {
			return fmt.Errorf("clone target %s exists and is not a directory", targetPath)
		}
		empty, err := fileops.IsDirEmpty(targetPath)
		if err != nil {
			return err
		}
		if !empty {
			return fmt.Errorf("clone target %s already exists and is not empty", targetPath)
		}
	}

	if err := fileops.EnsureDirectoryExists(filepath.Dir(targetPath)); err != nil {
		return err
	}

	if m.logger != nil {
		m.logger.Info("Cloning repository", "url", cloneURL, "target", targetPath)
	}

	if _, err := runGit(ctx, "", "clone", cloneURL, targetPath); err != nil {
		return err
	}

	meta := Metadata{Server: server, Owner: owner, Repo: name, Branch: branch}
	if err := WriteMetadata(targetPath, meta); err != nil {
		// The clone itself succeeded; provenance detection just won't work.
		if m.logger != nil {
			m.logger.Warn("Clone succeeded but writing sidecar metadata failed", "error", err)
		}
	}

	return nil
}

// Push stages everything, commits with a prompted message and pushes to
// origin/<branch>.
//
// When nothing is staged after the stage-all it reports "no changes" and
// stops, making back-to-back calls with no intervening edits safe. A
// failure at any later step surfaces that step's error without rolling
// back earlier ones: a failed push leaves the local commit in place.
func (m *Manager) Push(ctx context.Context, path, branch string, prompt CommitPrompter) (string, error) {
	if _, err := runGit(ctx, path, "add", "-A"); err != nil {
		return "", err
	}

	staged, err := runGit(ctx, path, "status", "--porcelain")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(staged) == "" {
		return "no changes to sync", nil
	}

	message, err := prompt()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("commit message cannot be empty")
	}

	if _, err := runGit(ctx, path, "commit", "-m", message); err != nil {
		return "", err
	}

	if _, err := runGit(ctx, path, "push", "origin", branch); err != nil {
		return "", err
	}

	return fmt.Sprintf("pushed to origin/%s", branch), nil
}

// Pull pulls origin/<branch> into the working copy and returns git's
// output verbatim.
func (m *Manager) Pull(ctx context.Context, path, branch string) (string, error) {
	out, err := runGit(ctx, path, "pull", "origin", branch)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Remove deletes a working copy after interactive confirmation.
func (m *Manager) Remove(path string, confirm Confirmer) error {
	ok, err := confirm(path)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCancelled
	}

	if m.logger != nil {
		m.logger.Info("Removing local repository", "path", path)
	}
	return os.RemoveAll(path)
}

// isWorkingCopy reports whether path contains version-control metadata.
func isWorkingCopy(path string) bool {
	info, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil && info.IsDir()
}
