package mock

import (
	"context"

	"github.com/bkayser/concierge"
)

// Compile-time interface verification.
var (
	_ concierge.Resolver       = (*Resolver)(nil)
	_ concierge.RedirectFinder = (*RedirectFinder)(nil)
)

// Resolver is a mock implementation of concierge.Resolver.
type Resolver struct {
	ResolveFn func(ctx context.Context, rawURL string, s *concierge.Session) (*concierge.Response, error)
}

func (r *Resolver) Resolve(ctx context.Context, rawURL string, s *concierge.Session) (*concierge.Response, error) {
	return r.ResolveFn(ctx, rawURL, s)
}

// RedirectFinder is a mock implementation of concierge.RedirectFinder.
type RedirectFinder struct {
	FindRedirectFn func(body, pageURL string, policy concierge.RedirectPolicy) (string, bool)
}

func (f *RedirectFinder) FindRedirect(body, pageURL string, policy concierge.RedirectPolicy) (string, bool) {
	return f.FindRedirectFn(body, pageURL, policy)
}
