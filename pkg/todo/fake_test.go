package todo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/thesyncim/todo-e2e/pkg/browser"
)

// fakeServer renders the todo application's observable state in memory.
// Mutations become visible only after lag reads, imitating a page that
// re-renders asynchronously.
type fakeServer struct {
	title   string
	items   []string
	pending []pendingOp
	lag     int

	stuckDelete bool // X clicks are accepted but remove nothing
	countErrs   int  // number of upcoming Count calls that fail

	input        string
	addClicks    int
	deleteClicks int
}

type pendingOp struct {
	readsLeft int
	apply     func(s *fakeServer)
}

func newFakeServer(items ...string) *fakeServer {
	return &fakeServer{title: PageTitle, items: append([]string(nil), items...)}
}

// settle advances pending mutations by one read.
func (s *fakeServer) settle() {
	for len(s.pending) > 0 {
		op := &s.pending[0]
		if op.readsLeft > 0 {
			op.readsLeft--
			return
		}
		op.apply(s)
		s.pending = s.pending[1:]
	}
}

func (s *fakeServer) enqueue(apply func(s *fakeServer)) {
	s.pending = append(s.pending, pendingOp{readsLeft: s.lag, apply: apply})
}

type fakePage struct {
	srv       *fakeServer
	navigated []string
	closed    bool
	panicOn   string // selector whose Click panics
}

var _ browser.Page = (*fakePage)(nil)

func (p *fakePage) Navigate(_ context.Context, url string) error {
	p.navigated = append(p.navigated, url)
	return nil
}

func (p *fakePage) Title(context.Context) (string, error) {
	p.srv.settle()
	return p.srv.title, nil
}

func (p *fakePage) Text(_ context.Context, selector string) (string, error) {
	p.srv.settle()
	items := p.srv.items
	switch selector {
	case SelectorHeader:
		return HeaderText, nil
	case SelectorMain:
		return "", nil
	case SelectorEmptyMessage:
		if len(items) == 0 {
			return EmptyMessage, nil
		}
	case SelectorList:
		if len(items) > 0 {
			return strings.Join(items, "\n"), nil
		}
	case SelectorListItem:
		if len(items) > 0 {
			return items[0], nil
		}
	}
	return "", fmt.Errorf("%w: %s", browser.ErrNotFound, selector)
}

func (p *fakePage) Count(_ context.Context, selector string) (int, error) {
	if p.srv.countErrs > 0 {
		p.srv.countErrs--
		return 0, errors.New("execution context was destroyed")
	}
	p.srv.settle()
	n := len(p.srv.items)
	switch selector {
	case SelectorListItem, SelectorDeleteButton:
		return n, nil
	case SelectorList:
		return min(n, 1), nil
	case SelectorEmptyMessage:
		if n == 0 {
			return 1, nil
		}
		return 0, nil
	case SelectorHeader, SelectorMain, SelectorTitleInput, SelectorAddButton:
		return 1, nil
	}
	return 0, nil
}

func (p *fakePage) Visible(ctx context.Context, selector string) (bool, error) {
	n, _ := p.Count(ctx, selector)
	if n == 0 {
		return false, fmt.Errorf("%w: %s", browser.ErrNotFound, selector)
	}
	return true, nil
}

func (p *fakePage) Fill(_ context.Context, selector, value string) error {
	if selector != SelectorTitleInput {
		return fmt.Errorf("%w: %s", browser.ErrNotFound, selector)
	}
	p.srv.input = value
	return nil
}

func (p *fakePage) Click(ctx context.Context, selector string) error {
	if selector == p.panicOn {
		panic("click on " + selector)
	}
	switch selector {
	case SelectorAddButton:
		p.srv.addClicks++
		title := p.srv.input
		p.srv.enqueue(func(s *fakeServer) { s.items = append(s.items, title) })
		return nil
	case SelectorDeleteButton:
		if n, _ := p.Count(ctx, selector); n == 0 {
			return fmt.Errorf("%w: %s", browser.ErrNotFound, selector)
		}
		p.srv.deleteClicks++
		if p.srv.stuckDelete {
			return nil
		}
		p.srv.enqueue(func(s *fakeServer) {
			if len(s.items) > 0 {
				s.items = s.items[1:]
			}
		})
		return nil
	}
	return fmt.Errorf("%w: %s", browser.ErrNotFound, selector)
}

func (p *fakePage) Close() error {
	p.closed = true
	return nil
}

// fakeBrowser hands out pages that all talk to the same server, like tabs
// pointed at one running application.
type fakeBrowser struct {
	srv     *fakeServer
	pages   []*fakePage
	panicOn string
	openErr error
}

func (b *fakeBrowser) NewPage(context.Context) (browser.Page, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	p := &fakePage{srv: b.srv, panicOn: b.panicOn}
	b.pages = append(b.pages, p)
	return p, nil
}

func (b *fakeBrowser) Close() error { return nil }

// fastExpect keeps assertion polling short in tests.
func fastExpect() ExpectConfig {
	return ExpectConfig{Timeout: 200 * time.Millisecond, Interval: time.Millisecond}
}

func newTestApp(srv *fakeServer) (*App, *fakePage) {
	page := &fakePage{srv: srv}
	return NewApp(page, "", fastExpect()), page
}
