package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"bidscout-engine/internal/domain"
)

// ChromeLauncher starts a fresh Chrome process per Launch.
type ChromeLauncher struct {
	ExecPath string
}

func (l *ChromeLauncher) Launch(ctx context.Context, opts LaunchOptions) (Page, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("lang", "en-US,en"),
		chromedp.WindowSize(1366, 768),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if l.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(l.ExecPath))
	}

	// The browser outlives ctx: it is torn down only by Close.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	p := &chromePage{
		ctx:  browserCtx,
		idle: make(chan struct{}, 1),
		cancel: func() {
			browserCancel()
			allocCancel()
		},
	}

	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		if e, ok := ev.(*page.EventLifecycleEvent); ok && e.Name == "networkIdle" {
			select {
			case p.idle <- struct{}{}:
			default:
			}
		}
	})

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// The first Run allocates the browser and must use the browser context itself.
	errCh := make(chan error, 1)
	go func() { errCh <- chromedp.Run(browserCtx, setupActions(opts)...) }()

	select {
	case err := <-errCh:
		if err != nil {
			_ = p.Close()
			return nil, err
		}
	case <-time.After(timeout):
		_ = p.Close()
		return nil, fmt.Errorf("browser did not start within %s", timeout)
	case <-ctx.Done():
		_ = p.Close()
		return nil, ctx.Err()
	}
	return p, nil
}

func setupActions(opts LaunchOptions) []chromedp.Action {
	actions := []chromedp.Action{
		network.Enable(),
		page.SetLifecycleEventsEnabled(true),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
			return err
		}),
	}
	if opts.Storage == nil {
		return actions
	}

	st := *opts.Storage
	if len(st.Cookies) > 0 {
		actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
			return network.SetCookies(cookieParams(st.Cookies)).Do(ctx)
		}))
	}
	if len(st.Origins) > 0 {
		byOrigin := map[string]map[string]string{}
		for _, o := range st.Origins {
			byOrigin[o.Origin] = o.LocalStorage
		}
		data, _ := json.Marshal(byOrigin)
		script := fmt.Sprintf(`(() => {
  const data = %s;
  const items = data[window.location.origin];
  if (!items) return;
  for (const [k, v] of Object.entries(items)) {
    try { window.localStorage.setItem(k, v); } catch (_) {}
  }
})();`, data)
		actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(script).Do(ctx)
			return err
		}))
	}
	return actions
}

func cookieParams(in []domain.Cookie) []*network.CookieParam {
	out := make([]*network.CookieParam, 0, len(in))
	for _, c := range in {
		cp := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
		}
		if c.SameSite != "" {
			cp.SameSite = network.CookieSameSite(c.SameSite)
		}
		if c.Expires > 0 {
			exp := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
			cp.Expires = &exp
		}
		out = append(out, cp)
	}
	return out
}

type chromePage struct {
	ctx    context.Context
	cancel func()
	idle   chan struct{}
	once   sync.Once
}

// run executes actions on the tab while honoring the caller's ctx.
func (p *chromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	opCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(opCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (p *chromePage) Navigate(ctx context.Context, url string) error {
	select {
	case <-p.idle:
	default:
	}
	return p.run(ctx,
		chromedp.Navigate(url),
		chromedp.ActionFunc(func(ctx context.Context) error {
			select {
			case <-p.idle:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}),
	)
}

func (p *chromePage) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	err := p.run(wctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
	if err != nil && ctx.Err() == nil && errors.Is(wctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s after %s", ErrTimeout, selector, timeout)
	}
	return err
}

func (p *chromePage) HTML(ctx context.Context) (string, error) {
	var html string
	err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (p *chromePage) Click(ctx context.Context, selector string) error {
	return p.run(ctx, chromedp.Click(selector, chromedp.ByQuery))
}

func (p *chromePage) ClickAll(ctx context.Context, selector string) (int, error) {
	sel, _ := json.Marshal(selector)
	js := fmt.Sprintf(`(() => {
  const els = document.querySelectorAll(%s);
  els.forEach((el) => { try { el.click(); } catch (_) {} });
  return els.length;
})()`, sel)
	var n int
	err := p.run(ctx, chromedp.Evaluate(js, &n))
	return n, err
}

func (p *chromePage) SendKeys(ctx context.Context, selector, text string) error {
	return p.run(ctx, chromedp.SendKeys(selector, text, chromedp.ByQuery))
}

func (p *chromePage) Location(ctx context.Context) (string, error) {
	var loc string
	err := p.run(ctx, chromedp.Location(&loc))
	return loc, err
}

func (p *chromePage) ScrollBy(ctx context.Context, dy int) error {
	var ok bool
	return p.run(ctx, chromedp.Evaluate(fmt.Sprintf(`(window.scrollBy(0, %d), true)`, dy), &ok))
}

func (p *chromePage) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := p.run(ctx, chromedp.FullScreenshot(&buf, 80))
	return buf, err
}

func (p *chromePage) StorageState(ctx context.Context) (domain.StorageState, error) {
	var (
		st      domain.StorageState
		cookies []*network.Cookie
		origin  string
		local   string
	)
	err := p.run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			cookies, err = network.GetCookies().Do(ctx)
			return err
		}),
		chromedp.Evaluate(`window.location.origin`, &origin),
		chromedp.Evaluate(`JSON.stringify(Object.assign({}, window.localStorage))`, &local),
	)
	if err != nil {
		return st, err
	}

	for _, c := range cookies {
		st.Cookies = append(st.Cookies, domain.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		})
	}

	items := map[string]string{}
	if local != "" {
		_ = json.Unmarshal([]byte(local), &items)
	}
	if len(items) > 0 {
		st.Origins = append(st.Origins, domain.OriginStorage{Origin: origin, LocalStorage: items})
	}
	return st, nil
}

func (p *chromePage) Close() error {
	var err error
	p.once.Do(func() {
		cctx, cancel := context.WithTimeout(p.ctx, 5*time.Second)
		defer cancel()
		err = chromedp.Cancel(cctx)
		p.cancel()
	})
	return err
}
