package cli

import (
	"fmt"
	"path/filepath"

	"forgectl/internal/session"

	"github.com/spf13/cobra"
)

func newCloneCmd(sess *session.Session) *cobra.Command {
	var branch string

	cmd := &cobra.Command{
		Use:   "clone <owner/repo> [target]",
		Short: "Clone a repository into the local clone root",
		Long: `Clone a repository via the external git binary. The target defaults to
<clone-root>/<repo>. A sidecar metadata file recording the origin server is
written into the clone so the folder's provenance can be detected later.
Ctrl-C cancels the running clone.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !sess.Config.CloneEnabled {
				return fmt.Errorf("local clones are disabled in the configuration")
			}

			owner, repo, err := splitOwnerRepo(args[0])
			if err != nil {
				return err
			}

			server := serverFor(cmd, sess)
			client, err := sess.Client(server)
			if err != nil {
				return err
			}

			// Resolve the clone URL (and default branch) from the forge
			// rather than guessing it from the hostname.
			remote, err := client.GetRepository(cmd.Context(), owner, repo)
			if err != nil {
				return err
			}

			target := filepath.Join(sess.Local.Root(), repo)
			if len(args) == 2 {
				target = args[1]
			}

			cloneBranch := branch
			if cloneBranch == "" {
				cloneBranch = remote.DefaultBranch
			}

			if err := sess.Local.Clone(cmd.Context(), remote.CloneURL, target, server, owner, repo, cloneBranch); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Cloned %s into %s\n", remote.FullName, target)
			return nil
		},
	}

	cmd.Flags().StringVar(&branch, "branch", "", "branch to record in the sidecar metadata")
	return cmd
}
