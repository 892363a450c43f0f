// Package cli wires the command surface to the session. Commands are thin
// handlers: parse arguments, call into the API client or the local
// repository manager, render the normalized result. All errors are
// converted to user-visible messages at this boundary; nothing here is
// allowed to crash the process.
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"forgectl/internal/session"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the forgectl command tree around a session.
func NewRootCmd(sess *session.Session) *cobra.Command {
	root := &cobra.Command{
		Use:   "forgectl",
		Short: "Browse, clone and sync repositories on a self-hosted Gitea forge",
		Long: `forgectl is a terminal client for self-hosted Gitea forges.

It browses and searches repositories, reads remote files without cloning,
manages pull requests, and keeps local working copies in sync.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("server", "", "forge server hostname (defaults to the configured host)")

	root.AddCommand(
		newConnectCmd(sess),
		newDisconnectCmd(sess),
		newReposCmd(sess),
		newSearchCmd(sess),
		newBranchesCmd(sess),
		newIssuesCmd(sess),
		newCatCmd(sess),
		newLsCmd(sess),
		newCloneCmd(sess),
		newPRCmd(sess),
		newLocalCmd(sess),
		newDashboardCmd(sess),
	)

	return root
}

// serverFor resolves the target server for a command invocation.
func serverFor(cmd *cobra.Command, sess *session.Session) string {
	if server, _ := cmd.Flags().GetString("server"); server != "" {
		return server
	}
	return sess.ActiveServer()
}

// splitOwnerRepo parses an "owner/repo" argument.
func splitOwnerRepo(arg string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(arg, "/")
	if !ok || owner == "" || repo == "" {
		return "", "", fmt.Errorf("expected owner/repo, got %q", arg)
	}
	return owner, repo, nil
}

// parseNumber parses a pull request or issue number argument.
func parseNumber(arg string) (int64, error) {
	n, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("expected a positive number, got %q", arg)
	}
	return n, nil
}
