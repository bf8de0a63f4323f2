package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/RevCBH/mergetrain/internal/config"
	"github.com/RevCBH/mergetrain/internal/git"
	"github.com/RevCBH/mergetrain/internal/logger"
	"github.com/RevCBH/mergetrain/internal/playbook"
	"github.com/RevCBH/mergetrain/internal/tools"
	"github.com/RevCBH/mergetrain/internal/train"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// VersionInfo holds build metadata set via ldflags
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// App represents the CLI application with all wired dependencies
type App struct {
	// Root command
	rootCmd *cobra.Command

	// Configuration, loaded before any subcommand runs
	cfg *config.Config

	// Global flags
	repoDir   string
	verbose   bool
	forceJSON bool

	// Version information
	versionInfo VersionInfo
}

// New creates a new CLI application
func New() *App {
	app := &App{}
	app.setupRootCmd()
	return app
}

// Execute runs the CLI application
func (a *App) Execute() error {
	return a.rootCmd.Execute()
}

// ExecuteContext runs the CLI application with ctx available to commands
func (a *App) ExecuteContext(ctx context.Context) error {
	return a.rootCmd.ExecuteContext(ctx)
}

// SetVersion sets the version string for the version command
func (a *App) SetVersion(version, commit, date string) {
	a.versionInfo = VersionInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

// setupRootCmd configures the root Cobra command
func (a *App) setupRootCmd() {
	a.rootCmd = &cobra.Command{
		Use:   "mergetrain",
		Short: "Plan merge-forward trains across release branches",
		Long: `mergetrain plans merge-forward trains: a fix lands on the oldest release
branch and is merged forward through each newer branch in order. It reports
the commits each hop brings over and the files changed on both sides of a
hop, without modifying the repository.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Close()
		},
	}

	// Add persistent flags
	a.rootCmd.PersistentFlags().StringVarP(&a.repoDir, "repo", "C", ".",
		"Repository to inspect")
	a.rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false,
		"Verbose output (debug logging)")
	a.rootCmd.PersistentFlags().BoolVar(&a.forceJSON, "json", false,
		"Output JSON even when stdout is a terminal")

	a.rootCmd.AddCommand(
		NewPlanCmd(a),
		NewContextCmd(a),
		NewServeCmd(a),
		NewPlaybookCmd(a),
		NewVersionCmd(a),
	)
}

// setup loads configuration and configures logging
func (a *App) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configRoot(cmd.Context(), a.repoDir))
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if a.verbose {
		level = slog.LevelDebug
	}
	logger.SetLevel(level)

	return logger.Init(cfg.LogFile)
}

// configRoot returns the top level of the repository containing dir, so the
// config file is found from any subdirectory. Outside a repository it is dir.
func configRoot(ctx context.Context, dir string) string {
	if ctx == nil {
		ctx = context.Background()
	}
	top, err := git.DefaultRunner().Exec(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return dir
	}
	return strings.TrimSpace(top)
}

// newService opens the repository and wires the planner behind the tool boundary
func (a *App) newService(ctx context.Context) (*tools.Service, error) {
	cfg := a.cfg
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	timeout, err := cfg.QueryTimeoutDuration()
	if err != nil {
		return nil, fmt.Errorf("query timeout: %w", err)
	}

	reader, err := git.NewReader(ctx, a.repoDir, git.NewOSRunner(cfg.Git.Command))
	if err != nil {
		return nil, err
	}

	pb, err := playbook.Default()
	if err != nil {
		return nil, err
	}

	return tools.NewService(train.NewPlanner(reader), pb,
		tools.WithContextDefaults(cfg.Context.MaxCommits, cfg.Context.MaxFiles),
		tools.WithTimeout(timeout),
	), nil
}

// wantJSON reports whether output to w should be JSON: always with --json,
// and whenever w is not a terminal.
func (a *App) wantJSON(w io.Writer) bool {
	if a.forceJSON {
		return true
	}
	f, ok := w.(*os.File)
	return !ok || !term.IsTerminal(int(f.Fd()))
}
