package cli

import (
	"github.com/RevCBH/mergetrain/internal/playbook"
	"github.com/RevCBH/mergetrain/internal/tools"
	"github.com/spf13/cobra"
)

// NewPlaybookCmd creates the playbook command
func NewPlaybookCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "playbook",
		Short: "Print the conflict resolution playbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pb, err := playbook.Default()
			if err != nil {
				return err
			}
			resp := tools.NewService(nil, pb).Playbook()
			return app.finish(cmd.OutOrStdout(), resp, resp.Success, resp.Error, func() string {
				return DefaultStyles().RenderPlaybook(pb)
			})
		},
	}

	return cmd
}
