package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/RevCBH/mergetrain/internal/tools"
	"github.com/spf13/cobra"
)

// PlanOptions holds flags for the plan command
type PlanOptions struct {
	Train string
}

// NewPlanCmd creates the plan command
func NewPlanCmd(app *App) *cobra.Command {
	opts := PlanOptions{}

	cmd := &cobra.Command{
		Use:   "plan SOURCE [TARGET...]",
		Short: "Plan a merge-forward train",
		Long: `Plan merging SOURCE forward through each TARGET in order. Each hop merges
the previous branch into the next and lists the commits it would bring over.

With --train, the targets come from the named train in .mergetrain.yaml.`,
		Example: `  mergetrain plan release/1 release/2 release/3 main
  mergetrain plan --train release release/1`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.Train != "" {
				return cobra.ExactArgs(1)(cmd, args)
			}
			return cobra.MinimumNArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunPlan(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Train, "train", "", "Use the target branches of a configured train")

	return cmd
}

// RunPlan resolves the targets and prints the plan
func (a *App) RunPlan(cmd *cobra.Command, args []string, opts PlanOptions) error {
	source, targets := args[0], args[1:]
	if opts.Train != "" {
		var err error
		targets, err = a.trainTargets(opts.Train)
		if err != nil {
			return err
		}
	}

	svc, err := a.newService(cmd.Context())
	if err != nil {
		return err
	}

	resp := svc.Plan(cmd.Context(), tools.PlanArgs{FromBranch: source, ToBranches: targets})
	return a.finish(cmd.OutOrStdout(), resp, resp.Success, resp.Error, func() string {
		return DefaultStyles().RenderPlan(resp.MergePlan)
	})
}

func (a *App) trainTargets(name string) ([]string, error) {
	var trains map[string][]string
	if a.cfg != nil {
		trains = a.cfg.Trains
	}
	targets, ok := trains[name]
	if !ok {
		known := make([]string, 0, len(trains))
		for n := range trains {
			known = append(known, n)
		}
		sort.Strings(known)
		if len(known) == 0 {
			return nil, fmt.Errorf("unknown train %q: no trains configured", name)
		}
		return nil, fmt.Errorf("unknown train %q (configured: %s)", name, strings.Join(known, ", "))
	}
	return targets, nil
}
