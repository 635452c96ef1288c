// Package slog decorates concierge services with structured logging.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/bkayser/concierge"
)

// Ensure LoggingResolver implements concierge.Resolver.
var _ concierge.Resolver = (*LoggingResolver)(nil)

// LoggingResolver wraps a Resolver with debug logging.
type LoggingResolver struct {
	next   concierge.Resolver
	logger *slog.Logger
}

// NewLoggingResolver creates a new LoggingResolver.
func NewLoggingResolver(next concierge.Resolver, logger *slog.Logger) *LoggingResolver {
	return &LoggingResolver{next: next, logger: logger}
}

// Resolve delegates to the wrapped resolver and logs the final URL, status
// and number of requests issued.
func (r *LoggingResolver) Resolve(ctx context.Context, rawURL string, s *concierge.Session) (resp *concierge.Response, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"url", rawURL,
			"authenticated", s != nil,
			"duration", time.Since(begin),
		}
		if resp != nil {
			attrs = append(attrs,
				"final", resp.URL,
				"status", resp.StatusCode,
				"requests", resp.Requests,
				"bytes", len(resp.Body),
			)
		}
		if err != nil {
			attrs = append(attrs, "err", err)
		}
		r.logger.Debug("resolve", attrs...)
	}(time.Now())
	return r.next.Resolve(ctx, rawURL, s)
}
