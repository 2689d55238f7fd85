package browser

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// stealthScript runs before any page script on every document. It hides the
// usual headless automation markers.
const stealthScript = `(() => {
  Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
  Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en', 'es'] });
  Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3, 4, 5] });
  window.chrome = window.chrome || { runtime: {} };
  const query = window.navigator.permissions && window.navigator.permissions.query;
  if (query) {
    window.navigator.permissions.query = (p) =>
      p && p.name === 'notifications'
        ? Promise.resolve({ state: Notification.permission })
        : query(p);
  }
  const getParameter = WebGLRenderingContext.prototype.getParameter;
  WebGLRenderingContext.prototype.getParameter = function (param) {
    if (param === 37445) return 'Intel Inc.';
    if (param === 37446) return 'Intel Iris OpenGL Engine';
    return getParameter.call(this, param);
  };
})();`

// Behavior holds the tunable ranges for human behavior simulation. The exact
// magnitudes are not load-bearing; they only need to be non-zero and random.
type Behavior struct {
	MinIterations int
	MaxIterations int
	MinPause      time.Duration
	MaxPause      time.Duration
	MinScroll     int
	MaxScroll     int
	MinKeyDelay   time.Duration
	MaxKeyDelay   time.Duration
}

func DefaultBehavior() Behavior {
	return Behavior{
		MinIterations: 3,
		MaxIterations: 5,
		MinPause:      500 * time.Millisecond,
		MaxPause:      2 * time.Second,
		MinScroll:     200,
		MaxScroll:     700,
		MinKeyDelay:   40 * time.Millisecond,
		MaxKeyDelay:   160 * time.Millisecond,
	}
}

func randInt(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rand.IntN(hi-lo+1)
}

func randDuration(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rand.Int64N(int64(hi-lo)+1))
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Simulate scrolls down by a random amount, pauses, and scrolls back up by a
// smaller amount, a random number of times. Failures are logged and dropped.
func (b Behavior) Simulate(ctx context.Context, p Page, log *zap.Logger) {
	n := randInt(b.MinIterations, b.MaxIterations)
	for i := 0; i < n; i++ {
		down := randInt(b.MinScroll, b.MaxScroll)
		if err := p.ScrollBy(ctx, down); err != nil {
			log.Debug("human behavior scroll failed", zap.Int("iteration", i), zap.Error(err))
			return
		}
		if err := sleep(ctx, randDuration(b.MinPause, b.MaxPause)); err != nil {
			return
		}
		if err := p.ScrollBy(ctx, -randInt(0, down/2)); err != nil {
			log.Debug("human behavior scroll back failed", zap.Int("iteration", i), zap.Error(err))
			return
		}
	}
}

// TypeHuman sends text one rune at a time with a random delay between keystrokes.
func (b Behavior) TypeHuman(ctx context.Context, p Page, selector, text string) error {
	for _, r := range text {
		if err := p.SendKeys(ctx, selector, string(r)); err != nil {
			return err
		}
		if err := sleep(ctx, randDuration(b.MinKeyDelay, b.MaxKeyDelay)); err != nil {
			return err
		}
	}
	return nil
}
