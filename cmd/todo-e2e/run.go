package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/thesyncim/todo-e2e/pkg/browser"
	"github.com/thesyncim/todo-e2e/pkg/todo"
)

// errScenariosFailed signals a completed run with failures; the report has
// already been printed.
var errScenariosFailed = errors.New("scenarios failed")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scenarios against a live application",
	Long: `Launches Chrome, opens the application and runs every scenario (or
those matching --run). Each scenario gets a fresh page and an empty list.`,
	Args: cobra.NoArgs,
	RunE: runScenarios,
}

func init() {
	rootCmd.AddCommand(runCmd)
	registerRunFlags(runCmd.Flags())
}

func registerRunFlags(f *pflag.FlagSet) {
	def := DefaultConfig()
	f.String("url", def.URL, "Application root URL")
	f.String("driver", def.Driver, "Browser backend (rod, chromedp, playwright)")
	f.Bool("headless", def.Headless, "Run Chrome without a window")
	f.Bool("no-sandbox", def.NoSandbox, "Disable the Chrome sandbox (needed in most containers)")
	f.Duration("timeout", def.Timeout, "Per-action timeout (launch, navigation, fill, click)")
	f.Duration("expect-timeout", def.ExpectTimeout, "How long assertions wait for the page")
	f.Duration("poll-interval", def.PollInterval, "Delay between assertion polls")
	f.Duration("scenario-timeout", def.ScenarioTimeout, "Budget for one scenario")
	f.String("run", "", "Only run scenarios whose name matches this regexp")
	f.StringP("output", "o", def.Output, "Report format (text, json, yaml)")
}

// resolveConfig layers flags the user set over the config file.
func resolveConfig(cmd *cobra.Command) (Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := LoadConfig(path)
	if err != nil {
		return cfg, err
	}

	f := cmd.Flags()
	if f.Changed("url") {
		cfg.URL, _ = f.GetString("url")
	}
	if f.Changed("driver") {
		cfg.Driver, _ = f.GetString("driver")
	}
	if f.Changed("headless") {
		cfg.Headless, _ = f.GetBool("headless")
	}
	if f.Changed("no-sandbox") {
		cfg.NoSandbox, _ = f.GetBool("no-sandbox")
	}
	if f.Changed("timeout") {
		cfg.Timeout, _ = f.GetDuration("timeout")
	}
	if f.Changed("expect-timeout") {
		cfg.ExpectTimeout, _ = f.GetDuration("expect-timeout")
	}
	if f.Changed("poll-interval") {
		cfg.PollInterval, _ = f.GetDuration("poll-interval")
	}
	if f.Changed("scenario-timeout") {
		cfg.ScenarioTimeout, _ = f.GetDuration("scenario-timeout")
	}
	if f.Changed("run") {
		cfg.Run, _ = f.GetString("run")
	}
	if f.Changed("output") {
		cfg.Output, _ = f.GetString("output")
	}

	return cfg, cfg.Validate()
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runScenarios(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cmd)

	scenarios, err := todo.Filter(todo.Scenarios(), cfg.Run)
	if err != nil {
		return fmt.Errorf("invalid --run pattern: %w", err)
	}
	if len(scenarios) == 0 {
		return fmt.Errorf("no scenario matches %q", cfg.Run)
	}

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			log.Warn("received signal, stopping after current scenario cleanup", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	log.Info("launching browser", "driver", cfg.Driver, "headless", cfg.Headless)
	b, err := browser.Open(ctx, cfg.BrowserConfig())
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			log.Warn("browser close failed", "err", err)
		}
	}()

	report := todo.NewRunner(b, cfg.RunnerConfig(), log).Run(ctx, scenarios...)

	if err := writeReport(cmd.OutOrStdout(), report, cfg.Output); err != nil {
		return err
	}
	if !report.OK() {
		return errScenariosFailed
	}
	return nil
}
