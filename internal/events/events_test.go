package events_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidscout-engine/internal/domain"
	"bidscout-engine/internal/events"
)

func TestNewJob(t *testing.T) {
	b, err := events.NewJob("run-1", domain.JobRecord{Title: "t", Platform: domain.Upwork, Link: "https://www.upwork.com/jobs/~1"})
	require.NoError(t, err)

	var e events.Event
	require.NoError(t, json.Unmarshal(b, &e))
	assert.Equal(t, events.TypeJobNew, e.Type)
	assert.Equal(t, 1, e.Version)
	assert.Equal(t, "run-1", e.RunID)
	assert.Equal(t, domain.Upwork, e.Platform)
	assert.Contains(t, string(e.Data), `"link":"https://www.upwork.com/jobs/~1"`)
}

func TestHub_FanOutAndDrop(t *testing.T) {
	h := events.NewHub()
	a := h.Subscribe(1)
	b := h.Subscribe(4)

	h.Publish([]byte("one"))
	h.Publish([]byte("two"))

	assert.Equal(t, "one", string(<-a))
	assert.Len(t, a, 0) // second event dropped for the full subscriber
	assert.Len(t, b, 2)

	h.Unsubscribe(a)
	h.Unsubscribe(a)
	_, open := <-a
	assert.False(t, open)
}

func TestHub_SendWaitsForSpace(t *testing.T) {
	h := events.NewHub()
	ch := h.Subscribe(1)

	require.NoError(t, h.Send(context.Background(), []byte("one")))

	done := make(chan error, 1)
	go func() { done <- h.Send(context.Background(), []byte("two")) }()

	assert.Equal(t, "one", string(<-ch))
	assert.Equal(t, "two", string(<-ch))
	require.NoError(t, <-done)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, h.Send(ctx, []byte("three")))
	cancel()
	assert.ErrorIs(t, h.Send(ctx, []byte("four")), context.Canceled)
}
