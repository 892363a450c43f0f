package cli

import (
	"fmt"

	"forgectl/internal/session"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func newConnectCmd(sess *session.Session) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "connect <server> [token]",
		Short: "Store a token for a forge server and verify it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			server := args[0]

			var token string
			if len(args) == 2 {
				token = args[1]
			} else {
				// Prompt so the token doesn't end up in shell history
				form := huh.NewForm(huh.NewGroup(
					huh.NewInput().
						Title(fmt.Sprintf("API token for %s", server)).
						EchoMode(huh.EchoModePassword).
						Value(&token),
				))
				if err := form.Run(); err != nil {
					return err
				}
			}

			user, err := sess.Connect(cmd.Context(), server, token, username)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Connected to %s as %s\n", server, user.Login)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "username to associate with the token")
	return cmd
}

func newDisconnectCmd(sess *session.Session) *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect [server]",
		Short: "Forget the stored token for a forge server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			server := sess.ActiveServer()
			if len(args) == 1 {
				server = args[0]
			}
			if server == "" {
				return session.ErrNotConfigured
			}

			if err := sess.Disconnect(server); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Disconnected from %s\n", server)
			return nil
		},
	}
}
