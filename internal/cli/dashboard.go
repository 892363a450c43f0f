package cli

import (
	"forgectl/internal/logging"
	"forgectl/internal/session"
	"forgectl/internal/tui/dashboard"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newDashboardCmd(sess *session.Session) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive forge dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := sess.Client(serverFor(cmd, sess))
			if err != nil {
				return err
			}

			model := dashboard.NewModel(client, sess.Config.RefreshInterval(), sess.Config.FetchPRs, logging.GetDefault())
			program := tea.NewProgram(model, tea.WithAltScreen())
			_, err = program.Run()
			return err
		},
	}
}
