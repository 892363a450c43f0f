package cli

import (
	"fmt"

	"forgectl/internal/gitea"
	"forgectl/internal/session"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

func newPRCmd(sess *session.Session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pr",
		Short: "Manage pull requests",
	}

	cmd.AddCommand(
		newPRListCmd(sess),
		newPRViewCmd(sess),
		newPRFilesCmd(sess),
		newPRMergeCmd(sess),
		newPRCloseCmd(sess),
		newPRCommentCmd(sess),
	)
	return cmd
}

func newPRListCmd(sess *session.Session) *cobra.Command {
	var state string

	cmd := &cobra.Command{
		Use:   "list <owner/repo>",
		Short: "List pull requests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, repo, err := splitOwnerRepo(args[0])
			if err != nil {
				return err
			}
			client, err := sess.Client(serverFor(cmd, sess))
			if err != nil {
				return err
			}

			prs, err := client.ListPullRequests(cmd.Context(), owner, repo, state)
			if err != nil {
				return err
			}
			for _, pr := range prs {
				fmt.Fprintf(cmd.OutOrStdout(), "#%d\t%s\t%s -> %s\t(%s, by %s)\n",
					pr.Number, pr.Title, pr.Head.Ref, pr.Base.Ref, pr.State, pr.User.Login)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&state, "state", "open", "pull request state: open, closed or all")
	return cmd
}

func newPRViewCmd(sess *session.Session) *cobra.Command {
	return &cobra.Command{
		Use:   "view <owner/repo> <number>",
		Short: "Show one pull request, rendering its description",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, repo, err := splitOwnerRepo(args[0])
			if err != nil {
				return err
			}
			number, err := parseNumber(args[1])
			if err != nil {
				return err
			}
			client, err := sess.Client(serverFor(cmd, sess))
			if err != nil {
				return err
			}

			pr, err := client.GetPullRequest(cmd.Context(), owner, repo, number)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "#%d %s\n", pr.Number, pr.Title)
			fmt.Fprintf(out, "State: %s  Merged: %v  Mergeable: %v (%s)\n",
				pr.State, pr.Merged, pr.Mergeable, pr.MergeableState)
			fmt.Fprintf(out, "%s -> %s  by %s, %d comments\n\n",
				pr.Head.Ref, pr.Base.Ref, pr.User.Login, pr.Comments)

			if pr.Body != "" {
				rendered, err := glamour.Render(pr.Body, "auto")
				if err != nil {
					// Markdown rendering is cosmetic; fall back to raw text
					fmt.Fprintln(out, pr.Body)
				} else {
					fmt.Fprint(out, rendered)
				}
			}
			return nil
		},
	}
}

func newPRFilesCmd(sess *session.Session) *cobra.Command {
	var showPatch bool

	cmd := &cobra.Command{
		Use:   "files <owner/repo> <number>",
		Short: "List the files changed by a pull request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, repo, err := splitOwnerRepo(args[0])
			if err != nil {
				return err
			}
			number, err := parseNumber(args[1])
			if err != nil {
				return err
			}
			client, err := sess.Client(serverFor(cmd, sess))
			if err != nil {
				return err
			}

			files, err := client.ListPullRequestFiles(cmd.Context(), owner, repo, number)
			if err != nil {
				return err
			}
			for _, file := range files {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t+%d -%d\n",
					file.Status, file.Filename, file.Additions, file.Deletions)
				if showPatch && file.Patch != "" {
					fmt.Fprintln(cmd.OutOrStdout(), file.Patch)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showPatch, "patch", false, "also print each file's unified diff")
	return cmd
}

func newPRMergeCmd(sess *session.Session) *cobra.Command {
	var method string

	cmd := &cobra.Command{
		Use:   "merge <owner/repo> <number>",
		Short: "Merge a pull request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, repo, err := splitOwnerRepo(args[0])
			if err != nil {
				return err
			}
			number, err := parseNumber(args[1])
			if err != nil {
				return err
			}
			client, err := sess.Client(serverFor(cmd, sess))
			if err != nil {
				return err
			}

			if err := client.MergePullRequest(cmd.Context(), owner, repo, number, gitea.MergeMethod(method)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Merged #%d via %s\n", number, method)
			return nil
		},
	}

	cmd.Flags().StringVar(&method, "method", string(gitea.MergeMethodMerge), "merge method: merge, squash or rebase")
	return cmd
}

func newPRCloseCmd(sess *session.Session) *cobra.Command {
	return &cobra.Command{
		Use:   "close <owner/repo> <number>",
		Short: "Close a pull request without merging",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, repo, err := splitOwnerRepo(args[0])
			if err != nil {
				return err
			}
			number, err := parseNumber(args[1])
			if err != nil {
				return err
			}
			client, err := sess.Client(serverFor(cmd, sess))
			if err != nil {
				return err
			}

			if err := client.ClosePullRequest(cmd.Context(), owner, repo, number); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Closed #%d\n", number)
			return nil
		},
	}
}

func newPRCommentCmd(sess *session.Session) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <owner/repo> <number> <body>",
		Short: "Comment on a pull request",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, repo, err := splitOwnerRepo(args[0])
			if err != nil {
				return err
			}
			number, err := parseNumber(args[1])
			if err != nil {
				return err
			}
			client, err := sess.Client(serverFor(cmd, sess))
			if err != nil {
				return err
			}

			comment, err := client.CreateComment(cmd.Context(), owner, repo, number, args[2])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Commented on #%d (id %d)\n", number, comment.ID)
			return nil
		},
	}
}
