package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"bidscout-engine/internal/retry"
)

func TestWithBackoff_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := retry.WithBackoff(context.Background(), 5, time.Millisecond, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithBackoff_GivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	boom := errors.New("disk full")
	err := retry.WithBackoff(context.Background(), 3, time.Millisecond, func(context.Context) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestWithBackoff_PermanentStops(t *testing.T) {
	calls := 0
	err := retry.WithBackoff(context.Background(), 5, time.Millisecond, func(context.Context) error {
		calls++
		return retry.Permanent(errors.New("constraint violated"))
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithBackoff_HonorsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := retry.WithBackoff(ctx, 5, time.Second, func(context.Context) error {
		calls++
		return errors.New("x")
	})
	assert.Error(t, err)
	assert.LessOrEqual(t, calls, 1)
}
