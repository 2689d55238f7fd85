// Package retry wraps the few operations that are safe to repeat, such as
// storage writes. Browser navigation is never retried.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Permanent marks err so WithBackoff stops immediately.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// WithBackoff runs op up to maxAttempts times with exponential backoff that
// starts at baseDelay. It returns op's last error.
func WithBackoff(ctx context.Context, maxAttempts int, baseDelay time.Duration, op func(ctx context.Context) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = baseDelay
	eb.MaxInterval = 20 * baseDelay
	eb.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(maxAttempts-1)), ctx)
	return backoff.Retry(func() error { return op(ctx) }, b)
}
