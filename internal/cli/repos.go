package cli

import (
	"fmt"
	"os"

	"forgectl/internal/gitea"
	"forgectl/internal/session"

	"github.com/spf13/cobra"
)

func newReposCmd(sess *session.Session) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "repos",
		Short: "List repositories of the authenticated user or a given owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := sess.Client(serverFor(cmd, sess))
			if err != nil {
				return err
			}

			var repos []gitea.Repository
			if owner != "" {
				repos, err = client.ListOwnerRepositories(cmd.Context(), owner)
			} else {
				repos, err = client.ListMyRepositories(cmd.Context())
			}
			if err != nil {
				return err
			}

			printRepos(cmd, repos, sess.Config.MaxRepos)
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "list repositories of this owner instead")
	return cmd
}

func newSearchCmd(sess *session.Session) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search repositories by free-text query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := sess.Client(serverFor(cmd, sess))
			if err != nil {
				return err
			}

			repos, err := client.SearchRepositories(cmd.Context(), args[0], sess.Config.MaxRepos)
			if err != nil {
				return err
			}

			printRepos(cmd, repos, sess.Config.MaxRepos)
			return nil
		},
	}
}

func printRepos(cmd *cobra.Command, repos []gitea.Repository, limit int) {
	if limit > 0 && len(repos) > limit {
		repos = repos[:limit]
	}
	for _, repo := range repos {
		visibility := ""
		if repo.Private {
			visibility = " (private)"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s%s\t%s\n", repo.FullName, visibility, repo.Description)
	}
}

func newBranchesCmd(sess *session.Session) *cobra.Command {
	var from string

	create := &cobra.Command{
		Use:   "create <owner/repo> <name>",
		Short: "Create a branch from a source branch",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, repo, err := splitOwnerRepo(args[0])
			if err != nil {
				return err
			}
			client, err := sess.Client(serverFor(cmd, sess))
			if err != nil {
				return err
			}

			branch, err := client.CreateBranch(cmd.Context(), owner, repo, args[1], from)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created branch %s at %s\n", branch.Name, branch.Commit.ID)
			return nil
		},
	}
	create.Flags().StringVar(&from, "from", "", "source branch (defaults to the repository default)")

	cmd := &cobra.Command{
		Use:   "branches <owner/repo>",
		Short: "List the branches of a repository",
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

			branches, err := client.ListBranches(cmd.Context(), owner, repo)
			if err != nil {
				return err
			}
			for _, branch := range branches {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", branch.Name, branch.Commit.ID)
			}
			return nil
		},
	}
	cmd.AddCommand(create)
	return cmd
}

func newIssuesCmd(sess *session.Session) *cobra.Command {
	var state string

	cmd := &cobra.Command{
		Use:   "issues <owner/repo>",
		Short: "List issues (excluding pull requests)",
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

			issues, err := client.ListIssues(cmd.Context(), owner, repo, state)
			if err != nil {
				return err
			}
			for _, issue := range issues {
				fmt.Fprintf(cmd.OutOrStdout(), "#%d\t%s\t(%s, %d comments)\n",
					issue.Number, issue.Title, issue.State, issue.Comments)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&state, "state", "open", "issue state: open, closed or all")
	return cmd
}

func newCatCmd(sess *session.Session) *cobra.Command {
	return &cobra.Command{
		Use:   "cat <gitea://server/owner/repo/path[?ref=REF]>",
		Short: "Print a remote file without cloning",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := sess.FS.ReadFile(args[0])
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(content)
			return err
		},
	}
}

func newLsCmd(sess *session.Session) *cobra.Command {
	return &cobra.Command{
		Use:   "ls <gitea://server/owner/repo[/path][?ref=REF]>",
		Short: "List a remote directory without cloning",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := sess.FS.ReadDir(args[0])
			if err != nil {
				return err
			}
			for _, entry := range entries {
				name := entry.Name()
				if entry.IsDir() {
					name += "/"
				}
				var size int64
				if info, err := entry.Info(); err == nil {
					size = info.Size()
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", name, size)
			}
			return nil
		},
	}
}
