package ingest

import (
	"context"
	"strings"
	"sync"

	"github.com/bkayser/concierge"
	"golang.org/x/time/rate"
)

// DefaultRequestsPerSecond is the per-domain request rate used by the
// command-line tools.
const DefaultRequestsPerSecond = 2.0

var _ concierge.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter rate limits requests per domain with token buckets, so
// different sites are fetched concurrently while each one sees at most rps
// requests per second. Domains differing only by case or a "www." prefix
// share a bucket.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewDomainLimiter creates a DomainLimiter allowing rps requests per second
// to each domain with no bursting. A non-positive rps disables limiting.
func NewDomainLimiter(rps float64) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until a request to domain is allowed or ctx is done.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	if d.rps <= 0 {
		return ctx.Err()
	}

	key := strings.TrimPrefix(strings.ToLower(domain), "www.")

	d.mu.Lock()
	limiter, ok := d.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(d.rps), 1)
		d.limiters[key] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}
