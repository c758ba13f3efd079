package util

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter keeps one token bucket per hostname, so the blog feed, the mobile
// board and the detail pages are paced independently.
type HostLimiter struct {
	limit rate.Limit
	burst int

	mu    sync.Mutex
	hosts map[string]*rate.Limiter
}

// NewHostLimiter allows reqPerSec per host. reqPerSec <= 0 means unlimited.
func NewHostLimiter(reqPerSec float64, burst int) *HostLimiter {
	hl := &HostLimiter{limit: rate.Inf, burst: max(burst, 1), hosts: map[string]*rate.Limiter{}}
	if reqPerSec > 0 {
		hl.limit = rate.Limit(reqPerSec)
	}
	return hl
}

// WaitURL blocks until a request to raw's host may go out. Unparseable URLs share one bucket.
func (hl *HostLimiter) WaitURL(ctx context.Context, raw string) error {
	return hl.bucket(hostKey(raw)).Wait(ctx)
}

func (hl *HostLimiter) bucket(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()
	lim, ok := hl.hosts[host]
	if !ok {
		lim = rate.NewLimiter(hl.limit, hl.burst)
		hl.hosts[host] = lim
	}
	return lim
}

func hostKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "_"
	}
	return strings.ToLower(u.Hostname())
}
