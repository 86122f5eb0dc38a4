package todo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/thesyncim/todo-e2e/pkg/browser"
)

// Config configures a Runner.
type Config struct {
	BaseURL         string        // Application root (default: DefaultBaseURL)
	Expect          ExpectConfig  // Assertion polling
	ScenarioTimeout time.Duration // Budget for setup and body (default: 2m)
	TeardownTimeout time.Duration // Budget for cleanup, even after a timeout (default: 30s)
}

// DefaultConfig returns a configuration targeting DefaultBaseURL.
func DefaultConfig() Config {
	return Config{
		BaseURL:         DefaultBaseURL,
		Expect:          DefaultExpectConfig(),
		ScenarioTimeout: 2 * time.Minute,
		TeardownTimeout: 30 * time.Second,
	}
}

// Result is the outcome of one scenario.
type Result struct {
	Name     string
	Passed   bool
	Err      error
	Duration time.Duration
}

// Report collects the results of a run.
type Report struct {
	Results  []Result
	Duration time.Duration
}

// Passed returns the number of passing scenarios.
func (r Report) Passed() int {
	n := 0
	for _, res := range r.Results {
		if res.Passed {
			n++
		}
	}
	return n
}

// Failed returns the number of failing scenarios.
func (r Report) Failed() int { return len(r.Results) - r.Passed() }

// OK reports whether every scenario passed.
func (r Report) OK() bool { return r.Failed() == 0 }

// Runner executes scenarios one at a time, each on a fresh page, with the
// list cleared before and after.
type Runner struct {
	browser browser.Browser
	cfg     Config
	log     *slog.Logger
}

// NewRunner creates a Runner. A nil logger discards output.
func NewRunner(b browser.Browser, cfg Config, log *slog.Logger) *Runner {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.ScenarioTimeout <= 0 {
		cfg.ScenarioTimeout = def.ScenarioTimeout
	}
	if cfg.TeardownTimeout <= 0 {
		cfg.TeardownTimeout = def.TeardownTimeout
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Runner{browser: b, cfg: cfg, log: log}
}

// Run executes scenarios in order. A failing scenario does not stop the run;
// cancelling ctx fails the remaining ones without starting them.
func (r *Runner) Run(ctx context.Context, scenarios ...Scenario) Report {
	start := time.Now()
	var report Report
	for _, s := range scenarios {
		if err := ctx.Err(); err != nil {
			report.Results = append(report.Results, Result{Name: s.Name, Err: err})
			continue
		}
		report.Results = append(report.Results, r.RunScenario(ctx, s))
	}
	report.Duration = time.Since(start)
	return report
}

// RunScenario executes a single scenario with setup and teardown.
func (r *Runner) RunScenario(ctx context.Context, s Scenario) Result {
	log := r.log.With("scenario", s.Name)
	log.Info("scenario started")

	start := time.Now()
	err := r.exec(ctx, s, log)
	res := Result{
		Name:     s.Name,
		Passed:   err == nil,
		Err:      err,
		Duration: time.Since(start),
	}

	if err != nil {
		log.Error("scenario failed", "duration", res.Duration, "err", err)
	} else {
		log.Info("scenario passed", "duration", res.Duration)
	}
	return res
}

func (r *Runner) exec(ctx context.Context, s Scenario, log *slog.Logger) (err error) {
	sctx, cancel := context.WithTimeout(ctx, r.cfg.ScenarioTimeout)
	defer cancel()

	page, err := r.browser.NewPage(sctx)
	if err != nil {
		return fmt.Errorf("open page: %w", err)
	}
	app := NewApp(page, r.cfg.BaseURL, r.cfg.Expect)

	// Deferred in reverse: recover, then close the page, then clear the list.
	defer func() {
		if p := recover(); p != nil {
			err = errors.Join(fmt.Errorf("panic: %v", p), err)
		}
	}()
	defer func() {
		if cerr := page.Close(); cerr != nil {
			log.Warn("page close failed", "err", cerr)
		}
	}()
	defer func() {
		if terr := r.teardown(ctx, app, log); terr != nil {
			err = errors.Join(err, terr)
		}
	}()

	if err := app.Open(sctx); err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	n, err := app.ClearAll(sctx)
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	if n > 0 {
		log.Debug("setup removed leftover items", "count", n)
	}

	return s.Run(sctx, app)
}

// teardown clears the list with its own budget so it still runs after the
// scenario context has expired or been cancelled.
func (r *Runner) teardown(ctx context.Context, app *App, log *slog.Logger) error {
	tctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.TeardownTimeout)
	defer cancel()

	n, err := app.ClearAll(tctx)
	if err != nil {
		log.Warn("teardown failed", "removed", n, "err", err)
		return fmt.Errorf("teardown: %w", err)
	}
	log.Debug("teardown complete", "removed", n)
	return nil
}
