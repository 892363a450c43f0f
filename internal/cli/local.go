package cli

import (
	"fmt"
	"time"

	"forgectl/internal/localrepo"
	"forgectl/internal/session"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func newLocalCmd(sess *session.Session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "local",
		Short: "Manage local working copies under the clone root",
	}

	cmd.AddCommand(
		newLocalListCmd(sess),
		newLocalStatusCmd(sess),
		newLocalPushCmd(sess),
		newLocalPullCmd(sess),
		newLocalRemoveCmd(sess),
	)
	return cmd
}

func newLocalListCmd(sess *session.Session) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List working copies found under the clone root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repos, err := sess.Local.Scan()
			if err != nil {
				return err
			}
			for _, repo := range repos {
				fmt.Fprintf(cmd.OutOrStdout(), "%s/%s\t%s\n", repo.Owner, repo.Name, repo.Path)
			}
			return nil
		},
	}
}

func newLocalStatusCmd(sess *session.Session) *cobra.Command {
	return &cobra.Command{
		Use:   "status <path>",
		Short: "Show local/remote divergence of a working copy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := sess.Local.Status(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "dirty: %v  ahead: %d  behind: %d\n",
				status.IsDirty, status.Ahead, status.Behind)
			for _, path := range status.Untracked {
				fmt.Fprintf(cmd.OutOrStdout(), "untracked: %s\n", path)
			}
			return nil
		},
	}
}

func newLocalPushCmd(sess *session.Session) *cobra.Command {
	var branch string

	cmd := &cobra.Command{
		Use:   "push <path>",
		Short: "Stage, commit and push local changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := func() (string, error) {
				// Auto-sync mode commits without asking
				if sess.Config.AutoSync {
					return fmt.Sprintf("sync %s", time.Now().Format(time.RFC3339)), nil
				}

				var message string
				form := huh.NewForm(huh.NewGroup(
					huh.NewInput().Title("Commit message").Value(&message),
				))
				if err := form.Run(); err != nil {
					return "", err
				}
				return message, nil
			}

			result, err := sess.Local.Push(cmd.Context(), args[0], branch, prompt)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&branch, "branch", "main", "branch to push to")
	return cmd
}

func newLocalPullCmd(sess *session.Session) *cobra.Command {
	var branch string

	cmd := &cobra.Command{
		Use:   "pull <path>",
		Short: "Pull remote changes into a working copy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := sess.Local.Pull(cmd.Context(), args[0], branch)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&branch, "branch", "main", "branch to pull from")
	return cmd
}

func newLocalRemoveCmd(sess *session.Session) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <path>",
		Short: "Delete a working copy after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			confirm := func(path string) (bool, error) {
				var ok bool
				form := huh.NewForm(huh.NewGroup(
					huh.NewConfirm().
						Title(fmt.Sprintf("Delete %s and everything in it?", path)).
						Value(&ok),
				))
				if err := form.Run(); err != nil {
					return false, err
				}
				return ok, nil
			}

			if err := sess.Local.Remove(args[0], confirm); err != nil {
				if err == localrepo.ErrCancelled {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
					return nil
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	}
}
