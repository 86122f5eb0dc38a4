package todo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/thesyncim/todo-e2e/pkg/browser"
)

// ExpectConfig controls how long assertions wait for the page to settle.
type ExpectConfig struct {
	Timeout  time.Duration // How long to wait for a condition (default: 5s)
	Interval time.Duration // Delay between polls (default: 100ms)
}

// DefaultExpectConfig returns the polling defaults.
func DefaultExpectConfig() ExpectConfig {
	return ExpectConfig{
		Timeout:  5 * time.Second,
		Interval: 100 * time.Millisecond,
	}
}

// Expect makes auto-waiting assertions against a page: each assertion polls
// until it holds or the timeout elapses.
type Expect struct {
	page browser.Page
	cfg  ExpectConfig
}

// NewExpect returns assertions for page. Zero config fields take defaults.
func NewExpect(page browser.Page, cfg ExpectConfig) *Expect {
	def := DefaultExpectConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	return &Expect{page: page, cfg: cfg}
}

// AssertionError reports rendered state that never matched an expectation.
type AssertionError struct {
	Assertion string
	Selector  string // empty for page-level assertions
	Expected  string
	Actual    string
	Timeout   time.Duration
	Err       error // last read error, if the final poll failed
}

func (e *AssertionError) Error() string {
	target := "page"
	if e.Selector != "" {
		target = e.Selector
	}
	msg := fmt.Sprintf("expect(%s).%s(%q) failed after %v: got %q",
		target, e.Assertion, e.Expected, e.Timeout, e.Actual)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AssertionError) Unwrap() error { return e.Err }

// timeoutError is returned by poll when the condition never held.
type timeoutError struct {
	after time.Duration
	last  error
}

func (e *timeoutError) Error() string {
	if e.last != nil {
		return fmt.Sprintf("condition not met after %v: %v", e.after, e.last)
	}
	return fmt.Sprintf("condition not met after %v", e.after)
}

func (e *timeoutError) Unwrap() error { return e.last }

// poll evaluates cond until it reports true. Errors from cond are treated as
// "not yet" and surface only if the timeout elapses. Cancelling ctx aborts
// the wait with ctx's error.
func (e *Expect) poll(ctx context.Context, cond func(context.Context) (bool, error)) error {
	deadline := time.Now().Add(e.cfg.Timeout)
	ticker := time.NewTicker(e.cfg.Interval)
	defer ticker.Stop()

	for {
		ok, err := cond(ctx)
		if ok {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !time.Now().Before(deadline) {
			return &timeoutError{after: e.cfg.Timeout, last: err}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// check runs poll and turns a timeout into an AssertionError.
func (e *Expect) check(ctx context.Context, a *AssertionError, cond func(context.Context) (bool, error)) error {
	err := e.poll(ctx, cond)
	if err == nil {
		return nil
	}
	var te *timeoutError
	if !errors.As(err, &te) {
		return err
	}
	a.Timeout = e.cfg.Timeout
	a.Err = te.last
	return a
}

// ToHaveTitle waits for the document title to equal want.
func (e *Expect) ToHaveTitle(ctx context.Context, want string) error {
	a := &AssertionError{Assertion: "toHaveTitle", Expected: want}
	return e.check(ctx, a, func(ctx context.Context) (bool, error) {
		got, err := e.page.Title(ctx)
		if err != nil {
			return false, err
		}
		a.Actual = got
		return normalize(got) == normalize(want), nil
	})
}

// ToHaveText waits for the first match of selector to have exactly want as
// its text, ignoring differences in whitespace.
func (e *Expect) ToHaveText(ctx context.Context, selector, want string) error {
	a := &AssertionError{Assertion: "toHaveText", Selector: selector, Expected: want}
	return e.check(ctx, a, func(ctx context.Context) (bool, error) {
		got, err := e.page.Text(ctx, selector)
		if err != nil {
			return false, err
		}
		a.Actual = got
		return normalize(got) == normalize(want), nil
	})
}

// ToContainText waits for the first match of selector to contain want.
func (e *Expect) ToContainText(ctx context.Context, selector, want string) error {
	a := &AssertionError{Assertion: "toContainText", Selector: selector, Expected: want}
	return e.check(ctx, a, func(ctx context.Context) (bool, error) {
		got, err := e.page.Text(ctx, selector)
		if err != nil {
			return false, err
		}
		a.Actual = got
		return strings.Contains(normalize(got), normalize(want)), nil
	})
}

// NotToContainText waits for the first match of selector to stop containing
// want. A missing element contains nothing and satisfies the assertion.
func (e *Expect) NotToContainText(ctx context.Context, selector, unwanted string) error {
	a := &AssertionError{Assertion: "not.toContainText", Selector: selector, Expected: unwanted}
	return e.check(ctx, a, func(ctx context.Context) (bool, error) {
		got, err := e.page.Text(ctx, selector)
		if errors.Is(err, browser.ErrNotFound) {
			return true, nil
		}
		if err != nil {
			return false, err
		}
		a.Actual = got
		return !strings.Contains(normalize(got), normalize(unwanted)), nil
	})
}

// ToBeVisible waits for the first match of selector to be visible.
func (e *Expect) ToBeVisible(ctx context.Context, selector string) error {
	a := &AssertionError{Assertion: "toBeVisible", Selector: selector, Expected: "visible"}
	return e.check(ctx, a, func(ctx context.Context) (bool, error) {
		visible, err := e.page.Visible(ctx, selector)
		if err != nil {
			a.Actual = "not found"
			return false, err
		}
		if !visible {
			a.Actual = "hidden"
		}
		return visible, nil
	})
}

// ToHaveCount waits for selector to match exactly want elements.
func (e *Expect) ToHaveCount(ctx context.Context, selector string, want int) error {
	a := &AssertionError{Assertion: "toHaveCount", Selector: selector, Expected: fmt.Sprint(want)}
	return e.check(ctx, a, func(ctx context.Context) (bool, error) {
		got, err := e.page.Count(ctx, selector)
		if err != nil {
			return false, err
		}
		a.Actual = fmt.Sprint(got)
		return got == want, nil
	})
}

// normalize collapses runs of whitespace the way rendered text comparisons do.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
