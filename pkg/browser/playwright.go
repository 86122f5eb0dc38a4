package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// playwrightBrowser drives Chromium through playwright-go. Browsers must be
// installed beforehand:
//
//	go run github.com/playwright-community/playwright-go/cmd/playwright@latest install chromium
type playwrightBrowser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	cfg     Config
}

func newPlaywrightBrowser(cfg Config) (*playwrightBrowser, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless:        playwright.Bool(cfg.Headless),
		ChromiumSandbox: playwright.Bool(!cfg.NoSandbox),
		Timeout:         milliseconds(cfg.Timeout),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch Chromium: %w", err)
	}

	return &playwrightBrowser{pw: pw, browser: b, cfg: cfg}, nil
}

// NewPage opens a page in its own browser context, so cookies and storage
// are not shared between scenarios.
func (b *playwrightBrowser) NewPage(ctx context.Context) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := b.browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	return &playwrightPage{page: p, cfg: b.cfg}, nil
}

func (b *playwrightBrowser) Close() error {
	return errors.Join(b.browser.Close(), b.pw.Stop())
}

type playwrightPage struct {
	page playwright.Page
	cfg  Config
}

// timeout converts the time left on ctx into playwright's millisecond option.
func (p *playwrightPage) timeout(ctx context.Context) *float64 {
	return milliseconds(timeoutFromContext(ctx, p.cfg.Timeout))
}

func milliseconds(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

func (p *playwrightPage) Navigate(ctx context.Context, url string) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		Timeout:   p.timeout(ctx),
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (p *playwrightPage) Title(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	title, err := p.page.Title()
	if err != nil {
		return "", fmt.Errorf("failed to read title: %w", err)
	}
	return title, nil
}

// first returns the first match, or ErrNotFound without waiting.
func (p *playwrightPage) first(ctx context.Context, selector string) (playwright.Locator, error) {
	n, err := p.Count(ctx, selector)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, selector)
	}
	return p.page.Locator(selector).First(), nil
}

func (p *playwrightPage) Text(ctx context.Context, selector string) (string, error) {
	loc, err := p.first(ctx, selector)
	if err != nil {
		return "", err
	}
	text, err := loc.InnerText(playwright.LocatorInnerTextOptions{Timeout: p.timeout(ctx)})
	if err != nil {
		return "", fmt.Errorf("text of %q: %w", selector, err)
	}
	return text, nil
}

func (p *playwrightPage) Count(ctx context.Context, selector string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := p.page.Locator(selector).Count()
	if err != nil {
		return 0, fmt.Errorf("query %q: %w", selector, err)
	}
	return n, nil
}

func (p *playwrightPage) Visible(ctx context.Context, selector string) (bool, error) {
	loc, err := p.first(ctx, selector)
	if err != nil {
		return false, err
	}
	visible, err := loc.IsVisible()
	if err != nil {
		return false, fmt.Errorf("visibility of %q: %w", selector, err)
	}
	return visible, nil
}

func (p *playwrightPage) Fill(ctx context.Context, selector, value string) error {
	err := p.page.Locator(selector).First().Fill(value, playwright.LocatorFillOptions{
		Timeout: p.timeout(ctx),
	})
	if err != nil {
		return fmt.Errorf("fill %q: %w", selector, err)
	}
	return nil
}

func (p *playwrightPage) Click(ctx context.Context, selector string) error {
	err := p.page.Locator(selector).First().Click(playwright.LocatorClickOptions{
		Timeout: p.timeout(ctx),
	})
	if err != nil {
		return fmt.Errorf("click %q: %w", selector, err)
	}
	return nil
}

func (p *playwrightPage) Close() error {
	return p.page.Close()
}
