package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chromedp/chromedp"
)

type chromedpBrowser struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	cfg           Config
}

func newChromedpBrowser(cfg Config) (*chromedpBrowser, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.DisableGPU,
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// The first Run starts the browser and ties it to browserCtx, so it must
	// not run under a derived timeout context.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to launch Chrome: %w", err)
	}

	return &chromedpBrowser{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		cfg:           cfg,
	}, nil
}

func (b *chromedpBrowser) NewPage(_ context.Context) (Page, error) {
	tabCtx, cancel := chromedp.NewContext(b.browserCtx)
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	return &chromedpPage{ctx: tabCtx, cancel: cancel, cfg: b.cfg}, nil
}

func (b *chromedpBrowser) Close() error {
	err := chromedp.Cancel(b.browserCtx)
	b.browserCancel()
	b.allocCancel()
	return err
}

// runWithin runs actions on the target context while honouring the deadline
// and cancellation of the caller's ctx. Contexts derived from a tab context
// can be cancelled without closing the tab.
func runWithin(ctx, target context.Context, cfg Config, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(target, timeoutFromContext(ctx, cfg.Timeout))
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

type chromedpPage struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    Config
}

func (p *chromedpPage) run(ctx context.Context, actions ...chromedp.Action) error {
	return runWithin(ctx, p.ctx, p.cfg, actions...)
}

func (p *chromedpPage) Navigate(ctx context.Context, url string) error {
	if err := p.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (p *chromedpPage) Title(ctx context.Context) (string, error) {
	var title string
	if err := p.run(ctx, chromedp.Title(&title)); err != nil {
		return "", fmt.Errorf("failed to read title: %w", err)
	}
	return title, nil
}

// probe is the result shape of the read scripts below.
type probe struct {
	Found   bool   `json:"found"`
	Text    string `json:"text"`
	Visible bool   `json:"visible"`
	Count   int    `json:"count"`
}

const probeScript = `(() => {
	const all = document.querySelectorAll(%s);
	const el = all[0];
	if (!el) return {found: false, text: "", visible: false, count: 0};
	const visible = typeof el.checkVisibility === "function"
		? el.checkVisibility()
		: !!(el.offsetWidth || el.offsetHeight || el.getClientRects().length);
	return {found: true, text: el.innerText, visible: visible, count: all.length};
})()`

// query inspects selector without waiting for it to appear.
func (p *chromedpPage) query(ctx context.Context, selector string) (probe, error) {
	quoted, err := json.Marshal(selector)
	if err != nil {
		return probe{}, fmt.Errorf("quote selector %q: %w", selector, err)
	}
	var res probe
	if err := p.run(ctx, chromedp.Evaluate(fmt.Sprintf(probeScript, quoted), &res)); err != nil {
		return probe{}, fmt.Errorf("query %q: %w", selector, err)
	}
	return res, nil
}

func (p *chromedpPage) Text(ctx context.Context, selector string) (string, error) {
	res, err := p.query(ctx, selector)
	if err != nil {
		return "", err
	}
	if !res.Found {
		return "", fmt.Errorf("%w: %s", ErrNotFound, selector)
	}
	return res.Text, nil
}

func (p *chromedpPage) Count(ctx context.Context, selector string) (int, error) {
	res, err := p.query(ctx, selector)
	if err != nil {
		return 0, err
	}
	return res.Count, nil
}

func (p *chromedpPage) Visible(ctx context.Context, selector string) (bool, error) {
	res, err := p.query(ctx, selector)
	if err != nil {
		return false, err
	}
	if !res.Found {
		return false, fmt.Errorf("%w: %s", ErrNotFound, selector)
	}
	return res.Visible, nil
}

func (p *chromedpPage) Fill(ctx context.Context, selector, value string) error {
	err := p.run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("fill %q: %w", selector, err)
	}
	return nil
}

func (p *chromedpPage) Click(ctx context.Context, selector string) error {
	if err := p.run(ctx, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible)); err != nil {
		return fmt.Errorf("click %q: %w", selector, err)
	}
	return nil
}

// Close cancels the tab context, which closes the tab.
func (p *chromedpPage) Close() error {
	p.cancel()
	return nil
}
