package util

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter paces navigations per hostname (www.workana.com, www.upwork.com).
// A nil HostLimiter or a non-positive rate never blocks.
type HostLimiter struct {
	mu sync.Mutex
	m  map[string]*rate.Limiter
	r  rate.Limit
	b  int
}

func NewHostLimiter(reqPerSec float64, burst int) *HostLimiter {
	if burst < 1 {
		burst = 1
	}
	return &HostLimiter{
		m: make(map[string]*rate.Limiter),
		r: rate.Limit(reqPerSec),
		b: burst,
	}
}

func (hl *HostLimiter) limiterFor(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	if lim, ok := hl.m[host]; ok {
		return lim
	}
	lim := rate.NewLimiter(hl.r, hl.b)
	hl.m[host] = lim
	return lim
}

func (hl *HostLimiter) WaitURL(ctx context.Context, raw string) error {
	if hl == nil || hl.r <= 0 {
		return ctx.Err()
	}
	host := Host(raw)
	if host == "" {
		host = "_"
	}
	return hl.limiterFor(host).Wait(ctx)
}
