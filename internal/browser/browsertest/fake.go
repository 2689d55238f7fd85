// Package browsertest provides an in-memory browser.Launcher that serves HTML
// fixtures and records what flows did with it.
package browsertest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"bidscout-engine/internal/browser"
	"bidscout-engine/internal/domain"
)

type Launcher struct {
	mu sync.Mutex

	// Pages maps a URL to the HTML served for it. Unknown URLs serve an empty body.
	Pages map[string]string
	// Redirects maps a clicked selector to the URL the page ends up on.
	Redirects map[string]string
	// Fail maps "op:selector" (op is click, keys or wait) or "navigate:url" to an error.
	Fail map[string]error
	// State is returned by StorageState.
	State domain.StorageState
	// WaitForNodes makes Click on a missing selector block until ctx is done,
	// the way chromedp waits for the node to appear.
	WaitForNodes bool

	LaunchErr error

	launched []*Page
	options  []browser.LaunchOptions
}

func NewLauncher() *Launcher {
	return &Launcher{
		Pages:     map[string]string{},
		Redirects: map[string]string{},
		Fail:      map[string]error{},
		State: domain.StorageState{
			Cookies: []domain.Cookie{{Name: "session_id", Value: "fake", Domain: ".example.com", Path: "/"}},
		},
	}
}

func (l *Launcher) Launch(ctx context.Context, opts browser.LaunchOptions) (browser.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.options = append(l.options, opts)
	if l.LaunchErr != nil {
		return nil, l.LaunchErr
	}
	p := &Page{l: l, typed: map[string]string{}}
	l.launched = append(l.launched, p)
	return p, nil
}

func (l *Launcher) Launched() []*Page {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*Page(nil), l.launched...)
}

func (l *Launcher) Options() []browser.LaunchOptions {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]browser.LaunchOptions(nil), l.options...)
}

// Navigations returns every URL navigated to, across all pages.
func (l *Launcher) Navigations() []string {
	var out []string
	for _, p := range l.Launched() {
		out = append(out, p.Navigations()...)
	}
	return out
}

// AllClosed reports whether every launched page has been closed.
func (l *Launcher) AllClosed() bool {
	for _, p := range l.Launched() {
		if !p.Closed() {
			return false
		}
	}
	return true
}

func (l *Launcher) fail(key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Fail[key]
}

func (l *Launcher) html(url string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if h, ok := l.Pages[url]; ok {
		return h
	}
	return "<html><body></body></html>"
}

func (l *Launcher) redirect(selector string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, ok := l.Redirects[selector]
	return u, ok
}

type Page struct {
	l *Launcher

	mu          sync.Mutex
	url         string
	navigations []string
	clicks      []string
	typed       map[string]string
	scrolls     int
	closed      bool
}

var ErrClosed = errors.New("page closed")

func (p *Page) Navigations() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.navigations...)
}

func (p *Page) Clicks() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.clicks...)
}

func (p *Page) Typed(selector string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.typed[selector]
}

func (p *Page) Scrolls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scrolls
}

func (p *Page) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Page) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	return nil
}

func (p *Page) doc() (*goquery.Document, error) {
	p.mu.Lock()
	url := p.url
	p.mu.Unlock()
	return goquery.NewDocumentFromReader(strings.NewReader(p.l.html(url)))
}

func (p *Page) has(selector string) bool {
	doc, err := p.doc()
	if err != nil {
		return false
	}
	return doc.Find(selector).Length() > 0
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := p.check(ctx); err != nil {
		return err
	}
	if err := p.l.fail("navigate:" + url); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url = url
	p.navigations = append(p.navigations, url)
	return nil
}

func (p *Page) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	if err := p.check(ctx); err != nil {
		return err
	}
	if err := p.l.fail("wait:" + selector); err != nil {
		return err
	}
	if p.has(selector) {
		return nil
	}
	return fmt.Errorf("%w: %s after %s", browser.ErrTimeout, selector, timeout)
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	if err := p.check(ctx); err != nil {
		return "", err
	}
	p.mu.Lock()
	url := p.url
	p.mu.Unlock()
	return p.l.html(url), nil
}

func (p *Page) Click(ctx context.Context, selector string) error {
	if err := p.check(ctx); err != nil {
		return err
	}
	if err := p.l.fail("click:" + selector); err != nil {
		return err
	}
	if !p.has(selector) {
		if p.l.WaitForNodes {
			<-ctx.Done()
			return ctx.Err()
		}
		return fmt.Errorf("no element matches %s", selector)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clicks = append(p.clicks, selector)
	if u, ok := p.l.redirect(selector); ok {
		p.url = u
	}
	return nil
}

func (p *Page) ClickAll(ctx context.Context, selector string) (int, error) {
	if err := p.check(ctx); err != nil {
		return 0, err
	}
	if err := p.l.fail("click:" + selector); err != nil {
		return 0, err
	}
	doc, err := p.doc()
	if err != nil {
		return 0, err
	}
	n := doc.Find(selector).Length()
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := 0; i < n; i++ {
		p.clicks = append(p.clicks, selector)
	}
	return n, nil
}

func (p *Page) SendKeys(ctx context.Context, selector, text string) error {
	if err := p.check(ctx); err != nil {
		return err
	}
	if err := p.l.fail("keys:" + selector); err != nil {
		return err
	}
	if !p.has(selector) {
		return fmt.Errorf("no element matches %s", selector)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.typed[selector] += text
	return nil
}

func (p *Page) Location(ctx context.Context) (string, error) {
	if err := p.check(ctx); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url, nil
}

func (p *Page) ScrollBy(ctx context.Context, dy int) error {
	if err := p.check(ctx); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scrolls++
	return nil
}

func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	if err := p.check(ctx); err != nil {
		return nil, err
	}
	return []byte("\x89PNG fake"), nil
}

func (p *Page) StorageState(ctx context.Context) (domain.StorageState, error) {
	if err := p.check(ctx); err != nil {
		return domain.StorageState{}, err
	}
	p.l.mu.Lock()
	defer p.l.mu.Unlock()
	return p.l.State, nil
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
