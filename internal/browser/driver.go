package browser

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"go.uber.org/zap"

	"bidscout-engine/internal/domain"
	apperrors "bidscout-engine/internal/errors"
	"bidscout-engine/internal/scrape/util"
)

type Options struct {
	Headless          bool
	LaunchTimeout     time.Duration
	NavigationTimeout time.Duration
	UserAgents        []string
	ScreenshotDir     string
	Behavior          Behavior
	Limiter           *util.HostLimiter
}

// Driver wraps a Launcher with the typed errors, timeouts, pacing and
// best-effort side effects every flow needs.
type Driver struct {
	launcher Launcher
	opts     Options
	log      *zap.Logger
}

func NewDriver(l Launcher, opts Options, log *zap.Logger) *Driver {
	if opts.LaunchTimeout <= 0 {
		opts.LaunchTimeout = 30 * time.Second
	}
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = 45 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Driver{launcher: l, opts: opts, log: log.Named("browser")}
}

func (d *Driver) Behavior() Behavior { return d.opts.Behavior }

// Launch starts an isolated browser context, optionally pre-seeded with storage.
func (d *Driver) Launch(ctx context.Context, storage *domain.StorageState) (Page, error) {
	ua := ""
	if n := len(d.opts.UserAgents); n > 0 {
		ua = d.opts.UserAgents[rand.IntN(n)]
	}
	p, err := d.launcher.Launch(ctx, LaunchOptions{
		Headless:  d.opts.Headless,
		Timeout:   d.opts.LaunchTimeout,
		UserAgent: ua,
		Storage:   storage,
	})
	if err != nil {
		return nil, apperrors.BrowserLaunch("launch browser", err)
	}
	d.log.Debug("browser launched", zap.Bool("headless", d.opts.Headless), zap.Bool("seeded", storage != nil))
	return p, nil
}

// Navigate waits for the host's rate limiter, then loads url under the
// navigation timeout.
func (d *Driver) Navigate(ctx context.Context, p Page, url string) error {
	if err := d.opts.Limiter.WaitURL(ctx, url); err != nil {
		return apperrors.Navigation("rate limit wait "+url, err)
	}
	nctx, cancel := context.WithTimeout(ctx, d.opts.NavigationTimeout)
	defer cancel()

	start := time.Now()
	if err := p.Navigate(nctx, url); err != nil {
		return apperrors.Navigation("navigate "+url, err)
	}
	d.log.Debug("navigated", zap.String("url", url), zap.Duration("took", time.Since(start)))
	return nil
}

func (d *Driver) WaitVisible(ctx context.Context, p Page, selector string, timeout time.Duration) error {
	if err := p.WaitVisible(ctx, selector, timeout); err != nil {
		if errors.Is(err, ErrTimeout) {
			return apperrors.SelectorTimeout("wait "+selector, err)
		}
		return apperrors.Navigation("wait "+selector, err)
	}
	return nil
}

// Click clicks selector, giving up after timeout. A node that never shows up
// is reported as a selector timeout.
func (d *Driver) Click(ctx context.Context, p Page, selector string, timeout time.Duration) error {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := p.Click(cctx, selector); err != nil {
		if ctx.Err() == nil && errors.Is(cctx.Err(), context.DeadlineExceeded) {
			return apperrors.SelectorTimeout(fmt.Sprintf("click %s after %s", selector, timeout), err)
		}
		return apperrors.Navigation("click "+selector, err)
	}
	return nil
}

// WaitForURL polls the page location until match accepts it or timeout elapses.
func (d *Driver) WaitForURL(ctx context.Context, p Page, match *regexp.Regexp, timeout time.Duration) (string, error) {
	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	const interval = 200 * time.Millisecond
	last := ""
	for {
		if loc, err := p.Location(wctx); err == nil {
			last = loc
			if match.MatchString(loc) {
				return loc, nil
			}
		}
		if err := sleep(wctx, interval); err != nil {
			return last, apperrors.SelectorTimeout(fmt.Sprintf("url never matched %s (last %q)", match, last), err)
		}
	}
}

func (d *Driver) SimulateHumanBehavior(ctx context.Context, p Page) {
	d.opts.Behavior.Simulate(ctx, p, d.log)
}

func (d *Driver) TypeHuman(ctx context.Context, p Page, selector, text string) error {
	return d.opts.Behavior.TypeHuman(ctx, p, selector, text)
}

// Screenshot writes a debug capture to the screenshot dir and returns its
// path. It returns "" when screenshots are disabled or anything fails.
func (d *Driver) Screenshot(ctx context.Context, p Page, label string) string {
	if d.opts.ScreenshotDir == "" || p == nil {
		return ""
	}
	b, err := p.Screenshot(ctx)
	if err != nil {
		d.log.Warn("screenshot failed", zap.String("label", label), zap.Error(err))
		return ""
	}
	if err := os.MkdirAll(d.opts.ScreenshotDir, 0o755); err != nil {
		d.log.Warn("screenshot dir", zap.String("dir", d.opts.ScreenshotDir), zap.Error(err))
		return ""
	}
	path := filepath.Join(d.opts.ScreenshotDir, fmt.Sprintf("%s-%d.png", label, time.Now().UnixMilli()))
	if err := os.WriteFile(path, b, 0o644); err != nil {
		d.log.Warn("screenshot write failed", zap.String("path", path), zap.Error(err))
		return ""
	}
	d.log.Info("screenshot saved", zap.String("path", path))
	return path
}

// Close releases the page. Safe on nil and on already-closed pages.
func (d *Driver) Close(p Page) {
	if p == nil {
		return
	}
	if err := p.Close(); err != nil {
		d.log.Warn("browser close", zap.Error(err))
	}
}
