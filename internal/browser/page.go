// Package browser drives a headless browser for the scraping, login and
// proposal flows. Flows talk to the Page interface; the chromedp launcher is
// the production implementation and browsertest provides a fake.
package browser

import (
	"context"
	"errors"
	"time"

	"bidscout-engine/internal/domain"
)

// ErrTimeout is returned by Page.WaitVisible when the selector never appears.
var ErrTimeout = errors.New("timed out waiting for selector")

type LaunchOptions struct {
	Headless  bool
	Timeout   time.Duration
	UserAgent string
	// Storage, when set, is installed before the first navigation.
	Storage *domain.StorageState
}

type Launcher interface {
	Launch(ctx context.Context, opts LaunchOptions) (Page, error)
}

// Page is one isolated browser context with a single tab. Pages are never
// shared between goroutines.
type Page interface {
	// Navigate loads url and returns once the network has gone idle.
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	HTML(ctx context.Context) (string, error)
	Click(ctx context.Context, selector string) error
	// ClickAll clicks every element matching selector and reports how many it clicked.
	ClickAll(ctx context.Context, selector string) (int, error)
	SendKeys(ctx context.Context, selector, text string) error
	Location(ctx context.Context) (string, error)
	ScrollBy(ctx context.Context, dy int) error
	Screenshot(ctx context.Context) ([]byte, error)
	StorageState(ctx context.Context) (domain.StorageState, error)
	// Close releases the context and its processes. It is idempotent.
	Close() error
}
