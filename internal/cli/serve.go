package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/RevCBH/mergetrain/internal/mcp"
	"github.com/RevCBH/mergetrain/internal/tools"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command
func NewServeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the planner as MCP tools over stdio",
		Long: `Serve plan_merge_forward, gather_merge_context and get_playbook over the
Model Context Protocol on stdin/stdout. Logs go to stderr or the configured
log file, never stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunServe(cmd)
		},
	}

	return cmd
}

// RunServe runs the MCP server until stdin closes or a signal arrives
func (a *App) RunServe(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := a.newService(ctx)
	if err != nil {
		return err
	}

	server := mcp.NewServer(cmd.InOrStdin(), cmd.OutOrStdout(), svc,
		mcp.WithVersion(a.versionInfo.withDefaults().Version),
		mcp.WithInstructions(tools.Instructions),
	)
	return server.Run(ctx)
}
