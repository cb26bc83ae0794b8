// Package cli wires configuration, services and the user interface behind
// the awscosts command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/j-veylop/aws-costs-tui/internal/app"
	"github.com/j-veylop/aws-costs-tui/internal/config"
	"github.com/j-veylop/aws-costs-tui/internal/logger"
	"github.com/j-veylop/aws-costs-tui/internal/report"
	"github.com/j-veylop/aws-costs-tui/internal/services"
	"github.com/j-veylop/aws-costs-tui/internal/services/credwatch"
	"github.com/j-veylop/aws-costs-tui/internal/ui/tabs/breakdown"
	"github.com/j-veylop/aws-costs-tui/internal/ui/tabs/trend"
	"github.com/j-veylop/aws-costs-tui/internal/version"
)

// options holds the root command flags. Flags override values loaded from
// the environment only when set.
type options struct {
	profile  string
	region   string
	logFile  string
	months   int
	debug    bool
	noTUI    bool
	dropZero bool
}

// apply copies every flag the user set onto cfg.
func (o *options) apply(cfg *config.Config, flags *pflag.FlagSet) {
	if flags.Changed("profile") {
		cfg.Profile = o.profile
	}
	if flags.Changed("region") {
		cfg.Region = o.region
	}
	if flags.Changed("months") {
		cfg.TrendMonths = o.months
	}
	if flags.Changed("drop-zero") {
		cfg.DropZero = o.dropZero
	}
	if flags.Changed("log-file") {
		cfg.LogFile = o.logFile
	}
}

// NewRootCmd builds the awscosts command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   version.Name,
		Short: "AWS Cost Explorer in your terminal",
		Long: `awscosts shows per-service AWS spend for the current month to date,
the previous month and a multi-month trend, fetched from the Cost Explorer API
with the credentials of a shared-config profile.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.profile, "profile", "p", config.DefaultProfile, "AWS profile to use (overrides AWS_PROFILE)")
	flags.StringVarP(&opts.region, "region", "r", "", "region to sign requests for (overrides AWS_REGION)")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flags.BoolVar(&opts.noTUI, "no-tui", false, "print a plain-text report instead of starting the interface")
	flags.BoolVar(&opts.dropZero, "drop-zero", false, "hide services with zero spend")
	flags.IntVar(&opts.months, "months", 6, "number of months in the trend")
	flags.StringVar(&opts.logFile, "log-file", "", "write logs to this file")

	cmd.AddCommand(newVersionCmd(), newProfilesCmd())
	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		report.RenderError(os.Stderr, err)
		return 1
	}
	return 0
}

func run(cmd *cobra.Command, opts *options) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	opts.apply(cfg, cmd.Flags())
	if err := cfg.Validate(); err != nil {
		return err
	}

	closeLog, err := setupLogging(cfg, opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	creds, err := config.ResolveCredentials(cfg)
	if err != nil {
		return err
	}

	mgr, err := services.NewManager(cfg, creds)
	if err != nil {
		return fmt.Errorf("initialize services: %w", err)
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			logger.Warn("error closing services", "error", err)
		}
	}()

	ctx := cmd.Context()
	if opts.noTUI {
		return runText(ctx, mgr, cmd.OutOrStdout())
	}
	return runTUI(ctx, mgr)
}

// setupLogging points the global logger at the log file, or in interface mode
// discards it so log lines never reach the screen.
func setupLogging(cfg *config.Config, opts *options, stderr io.Writer) (func(), error) {
	f, err := cfg.OpenLogFile()
	if err != nil {
		return nil, fmt.Errorf("%w: open log file: %v", config.ErrConfiguration, err)
	}
	switch {
	case f != nil:
		logger.Setup(f, opts.debug)
		return func() { _ = f.Close() }, nil
	case opts.noTUI:
		logger.Setup(stderr, opts.debug)
	default:
		logger.Setup(io.Discard, opts.debug)
	}
	return func() {}, nil
}

func runText(ctx context.Context, mgr *services.Manager, w io.Writer) error {
	snap, err := mgr.Refresh(ctx)
	if err != nil {
		return err
	}
	return report.Render(w, snap)
}

func runTUI(ctx context.Context, mgr *services.Manager) error {
	if err := mgr.WatchCredentials(); err != nil && !errors.Is(err, credwatch.ErrNothingToWatch) {
		logger.Warn("credentials watcher disabled", "error", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := app.NewModel(ctx, mgr)
	state := model.GetState()
	model.SetTabs([]app.Tab{
		breakdown.New(state, app.TabCurrent),
		breakdown.New(state, app.TabPrevious),
		trend.New(state),
	})

	p := tea.NewProgram(model, tea.WithAltScreen())

	go func() {
		<-ctx.Done()
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run interface: %w", err)
	}
	return nil
}
