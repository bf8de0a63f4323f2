package cli

import (
	"github.com/RevCBH/mergetrain/internal/tools"
	"github.com/spf13/cobra"
)

// ContextOptions holds flags for the context command
type ContextOptions struct {
	Details    bool
	MaxCommits int
	MaxFiles   int
}

// NewContextCmd creates the context command
func NewContextCmd(app *App) *cobra.Command {
	opts := ContextOptions{}

	cmd := &cobra.Command{
		Use:   "context INTO MERGE",
		Short: "Show how two branches diverged since their merge base",
		Long: `Compare MERGE (the branch being merged in) with INTO since their merge base.
Files changed on both sides are reported as potential conflicts.

By default only counts and potential conflicts are shown; --details adds
recent commits and the remaining changed files, capped per side.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctxArgs := tools.ContextArgs{
				IntoBranch:  args[0],
				MergeBranch: args[1],
			}
			if cmd.Flags().Changed("details") {
				ctxArgs.IncludeDetails = &opts.Details
			}
			if cmd.Flags().Changed("max-commits") {
				ctxArgs.MaxCommits = &opts.MaxCommits
			}
			if cmd.Flags().Changed("max-files") {
				ctxArgs.MaxFiles = &opts.MaxFiles
			}
			return app.RunContext(cmd, ctxArgs)
		},
	}

	cmd.Flags().BoolVarP(&opts.Details, "details", "d", false, "Include recent commits and changed files")
	cmd.Flags().IntVar(&opts.MaxCommits, "max-commits", 0, "Recent commits shown per side (default from config)")
	cmd.Flags().IntVar(&opts.MaxFiles, "max-files", 0, "Non-conflicting files shown per side (default from config)")

	return cmd
}

// RunContext gathers and prints the merge context
func (a *App) RunContext(cmd *cobra.Command, args tools.ContextArgs) error {
	svc, err := a.newService(cmd.Context())
	if err != nil {
		return err
	}

	resp := svc.Context(cmd.Context(), args)
	return a.finish(cmd.OutOrStdout(), resp, resp.Success, resp.Error, func() string {
		return DefaultStyles().RenderContext(resp.MergeContext)
	})
}
