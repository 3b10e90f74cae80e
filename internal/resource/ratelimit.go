package resource

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// DomainLimiter holds one token-bucket limiter per host, grounded on the
// teacher's per-domain RateLimiter (internal/services/crawler/rate_limiter.go)
// but backed by golang.org/x/time/rate instead of a hand-rolled
// last-request timestamp, since the pool needs a burst allowance (the
// first few URLs on a freshly claimed batch) rather than strict spacing.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

// NewDomainLimiter creates a limiter allowing rps requests per second per
// host, with burst allowed up front.
func NewDomainLimiter(rps float64, burst int) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

// Wait blocks until the host in rawURL's next request is allowed.
func (d *DomainLimiter) Wait(ctx context.Context, rawURL string) error {
	host := hostOf(rawURL)
	if host == "" {
		return nil
	}

	d.mu.Lock()
	limiter, ok := d.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(d.rps, d.burst)
		d.limiters[host] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Host
}
