package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// rodBrowser wraps Rod with a container-friendly Chrome configuration.
type rodBrowser struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	cfg      Config
}

// newRodBrowser launches Chrome (auto-downloaded by Rod if not present).
func newRodBrowser(ctx context.Context, cfg Config) (*rodBrowser, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		Set("disable-gpu")
	if cfg.NoSandbox {
		l = l.Set("no-sandbox")
	}

	url, err := launchWithin(ctx, cfg.Timeout, l.Launch, l.Kill)
	if err != nil {
		return nil, fmt.Errorf("failed to launch Chrome: %w", err)
	}

	b := rod.New().ControlURL(url)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to Chrome: %w", err)
	}

	return &rodBrowser{launcher: l, browser: b, cfg: cfg}, nil
}

func (b *rodBrowser) NewPage(ctx context.Context) (Page, error) {
	p, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	// Detach from the creation context so later calls pick their own.
	return &rodPage{page: p.Context(context.Background()), cfg: b.cfg}, nil
}

// Close cleans up browser resources.
func (b *rodBrowser) Close() error {
	err := b.browser.Close()
	b.launcher.Cleanup()
	return err
}

type rodPage struct {
	page *rod.Page
	cfg  Config
}

// within binds the page to ctx, capped at the configured action timeout.
// Callers must CancelTimeout the returned page.
func (p *rodPage) within(ctx context.Context) *rod.Page {
	return p.page.Context(ctx).Timeout(timeoutFromContext(ctx, p.cfg.Timeout))
}

func (p *rodPage) Navigate(ctx context.Context, url string) error {
	page := p.within(ctx)
	defer page.CancelTimeout()

	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("failed to load %s: %w", url, err)
	}
	return nil
}

func (p *rodPage) Title(ctx context.Context) (string, error) {
	info, err := p.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("failed to read page info: %w", err)
	}
	return info.Title, nil
}

// first returns the first match without waiting for it to appear.
func (p *rodPage) first(ctx context.Context, selector string) (*rod.Element, error) {
	els, err := p.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	if len(els) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, selector)
	}
	return els.First(), nil
}

func (p *rodPage) Text(ctx context.Context, selector string) (string, error) {
	el, err := p.first(ctx, selector)
	if err != nil {
		return "", err
	}
	text, err := el.Text()
	if err != nil {
		return "", fmt.Errorf("text of %q: %w", selector, err)
	}
	return text, nil
}

func (p *rodPage) Count(ctx context.Context, selector string) (int, error) {
	els, err := p.page.Context(ctx).Elements(selector)
	if err != nil {
		return 0, fmt.Errorf("query %q: %w", selector, err)
	}
	return len(els), nil
}

func (p *rodPage) Visible(ctx context.Context, selector string) (bool, error) {
	el, err := p.first(ctx, selector)
	if err != nil {
		return false, err
	}
	visible, err := el.Visible()
	if err != nil {
		return false, fmt.Errorf("visibility of %q: %w", selector, err)
	}
	return visible, nil
}

// Fill waits for the input, selects its current value and types over it.
func (p *rodPage) Fill(ctx context.Context, selector, value string) error {
	page := p.within(ctx)
	defer page.CancelTimeout()

	el, err := page.Element(selector)
	if err != nil {
		return fmt.Errorf("find %q: %w", selector, err)
	}
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("select text of %q: %w", selector, err)
	}
	if err := el.Input(value); err != nil {
		return fmt.Errorf("input into %q: %w", selector, err)
	}
	return nil
}

func (p *rodPage) Click(ctx context.Context, selector string) error {
	page := p.within(ctx)
	defer page.CancelTimeout()

	el, err := page.Element(selector)
	if err != nil {
		return fmt.Errorf("find %q: %w", selector, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click %q: %w", selector, err)
	}
	return nil
}

func (p *rodPage) Close() error {
	return p.page.Close()
}
