// Package todo drives the todo web application through a browser.Page.
//
// App is a page object exposing the application's UI operations, Expect
// provides auto-waiting assertions on rendered state, and Runner executes
// Scenarios so that each one starts and ends with an empty list.
package todo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thesyncim/todo-e2e/pkg/browser"
)

// DefaultBaseURL is where the todo application is served during development.
const DefaultBaseURL = "http://localhost:3000/"

// Selectors for the todo application's markup.
const (
	SelectorHeader       = "header h1"
	SelectorMain         = "main"
	SelectorTitleInput   = `input[name="title"]`
	SelectorAddButton    = `input[type="submit"][value="Add"]`
	SelectorDeleteButton = `input[type="submit"][value="X"]`
	SelectorEmptyMessage = "p"
	SelectorList         = "ul"
	SelectorListItem     = "ul li"
)

// Rendered text of the application shell and its empty state.
const (
	PageTitle    = "Todos"
	HeaderText   = "Todos"
	EmptyMessage = "No tasks were found."
)

// ErrClearStalled is returned by ClearAll when a delete does not remove an
// item within the expect timeout.
var ErrClearStalled = errors.New("todo: delete did not remove an item")

// App is a page object for the todo application bound to one page.
type App struct {
	page    browser.Page
	baseURL string
	expect  *Expect
}

// NewApp binds an App to page. An empty baseURL means DefaultBaseURL.
func NewApp(page browser.Page, baseURL string, cfg ExpectConfig) *App {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &App{
		page:    page,
		baseURL: baseURL,
		expect:  NewExpect(page, cfg),
	}
}

// Page returns the underlying browser page.
func (a *App) Page() browser.Page { return a.page }

// Expect returns the auto-waiting assertions for this page.
func (a *App) Expect() *Expect { return a.expect }

// Open navigates to the application root.
func (a *App) Open(ctx context.Context) error {
	return a.page.Navigate(ctx, a.baseURL)
}

// Add creates an item by filling the title input and clicking Add.
func (a *App) Add(ctx context.Context, title string) error {
	if err := a.page.Fill(ctx, SelectorTitleInput, title); err != nil {
		return fmt.Errorf("add %q: %w", title, err)
	}
	if err := a.page.Click(ctx, SelectorAddButton); err != nil {
		return fmt.Errorf("add %q: %w", title, err)
	}
	return nil
}

// DeleteFirst clicks the delete control of the first rendered item.
func (a *App) DeleteFirst(ctx context.Context) error {
	if err := a.page.Click(ctx, SelectorDeleteButton); err != nil {
		return fmt.Errorf("delete first item: %w", err)
	}
	return nil
}

// Count returns the number of rendered delete controls, one per item.
func (a *App) Count(ctx context.Context) (int, error) {
	return a.page.Count(ctx, SelectorDeleteButton)
}

// ClearAll deletes every rendered item and returns how many it removed.
//
// The live count is re-read after each delete rather than trusting a
// snapshot, and each delete must shrink the list before the next one is
// issued. On an empty list no delete is clicked.
func (a *App) ClearAll(ctx context.Context) (int, error) {
	removed := 0
	for {
		n, err := a.liveCount(ctx)
		if err != nil {
			return removed, fmt.Errorf("clear all: %w", err)
		}
		if n == 0 {
			return removed, nil
		}

		if err := a.DeleteFirst(ctx); err != nil {
			return removed, fmt.Errorf("clear all: %w", err)
		}
		if err := a.waitBelow(ctx, n); err != nil {
			return removed, err
		}
		removed++
	}
}

// liveCount reads the item count, retrying reads that fail while the page
// re-renders.
func (a *App) liveCount(ctx context.Context) (int, error) {
	n := 0
	err := a.expect.poll(ctx, func(ctx context.Context) (bool, error) {
		got, err := a.Count(ctx)
		if err != nil {
			return false, err
		}
		n = got
		return true, nil
	})
	return n, err
}

// waitBelow polls until fewer than n delete controls are rendered.
func (a *App) waitBelow(ctx context.Context, n int) error {
	last := n
	err := a.expect.poll(ctx, func(ctx context.Context) (bool, error) {
		got, err := a.Count(ctx)
		if err != nil {
			return false, err
		}
		last = got
		return got < n, nil
	})
	var te *timeoutError
	if errors.As(err, &te) {
		return fmt.Errorf("%w: still %d items after %v (had %d)",
			ErrClearStalled, last, a.expect.cfg.Timeout.Round(time.Millisecond), n)
	}
	return err
}
