// Package browser provides the automation layer used by the todo suite.
//
// A Browser owns one launched Chrome process; every Page is an isolated tab.
// Three backends are available: Rod (default), chromedp and playwright-go.
// Reads on a Page never wait; actions wait for their target the way the
// backend natively does.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Driver names a browser automation backend.
type Driver string

const (
	DriverRod        Driver = "rod"
	DriverChromedp   Driver = "chromedp"
	DriverPlaywright Driver = "playwright"
)

var (
	// ErrNotFound is returned by Page reads when the selector matches nothing.
	ErrNotFound = errors.New("element not found")

	// ErrUnknownDriver is returned by Open for an unsupported Driver.
	ErrUnknownDriver = errors.New("unknown browser driver")
)

// Config configures Chrome launch options.
type Config struct {
	Driver    Driver        // Backend to use (default: rod)
	Headless  bool          // Run in headless mode (default: true)
	NoSandbox bool          // Pass --no-sandbox (default: true, for containers)
	Timeout   time.Duration // Cap on launch and on each page action (default: 30s)
}

// DefaultConfig returns sensible defaults for E2E testing.
func DefaultConfig() Config {
	return Config{
		Driver:    DriverRod,
		Headless:  true,
		NoSandbox: true,
		Timeout:   30 * time.Second,
	}
}

// Page is a single browser tab.
type Page interface {
	// Navigate loads url and waits for the load event.
	Navigate(ctx context.Context, url string) error
	// Title returns the document title.
	Title(ctx context.Context) (string, error)
	// Text returns the rendered text of the first element matching selector.
	Text(ctx context.Context, selector string) (string, error)
	// Count returns the number of elements matching selector.
	Count(ctx context.Context, selector string) (int, error)
	// Visible reports whether the first element matching selector is visible.
	Visible(ctx context.Context, selector string) (bool, error)
	// Fill replaces the value of the first input matching selector.
	Fill(ctx context.Context, selector, value string) error
	// Click clicks the first element matching selector.
	Click(ctx context.Context, selector string) error
	Close() error
}

// Browser launches pages. Always Close it (via defer) to prevent orphaned
// Chrome processes.
type Browser interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Open launches a browser using the backend named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Browser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	switch cfg.Driver {
	case DriverRod, "":
		return newRodBrowser(ctx, cfg)
	case DriverChromedp:
		return newChromedpBrowser(cfg)
	case DriverPlaywright:
		return newPlaywrightBrowser(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// Drivers lists the supported backends.
func Drivers() []Driver {
	return []Driver{DriverRod, DriverChromedp, DriverPlaywright}
}

// ParseDriver validates a driver name.
func ParseDriver(name string) (Driver, error) {
	for _, d := range Drivers() {
		if string(d) == name {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDriver, name)
}

// timeoutFromContext returns the action timeout: fallback, shortened to the
// time left on ctx when ctx expires sooner. Never less than a millisecond.
func timeoutFromContext(ctx context.Context, fallback time.Duration) time.Duration {
	d := fallback
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < d || d <= 0 {
			d = left
		}
	}
	return max(d, time.Millisecond)
}

// launchWithin runs launch, giving up after timeout or when ctx is done.
// kill is called if launch is abandoned.
func launchWithin(ctx context.Context, timeout time.Duration, launch func() (string, error), kill func()) (string, error) {
	type result struct {
		url string
		err error
	}
	done := make(chan result, 1)
	go func() {
		url, err := launch()
		done <- result{url, err}
	}()

	timer := time.NewTimer(timeoutFromContext(ctx, timeout))
	defer timer.Stop()

	select {
	case r := <-done:
		return r.url, r.err
	case <-ctx.Done():
		kill()
		return "", ctx.Err()
	case <-timer.C:
		kill()
		return "", fmt.Errorf("launch did not finish within %v", timeout)
	}
}
