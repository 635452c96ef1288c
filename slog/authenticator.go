package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/bkayser/concierge"
)

// Ensure LoggingAuthenticator implements concierge.Authenticator.
var _ concierge.Authenticator = (*LoggingAuthenticator)(nil)

// LoggingAuthenticator wraps an Authenticator with logging. Credentials are
// never logged.
type LoggingAuthenticator struct {
	next   concierge.Authenticator
	logger *slog.Logger
}

// NewLoggingAuthenticator creates a new LoggingAuthenticator.
func NewLoggingAuthenticator(next concierge.Authenticator, logger *slog.Logger) *LoggingAuthenticator {
	return &LoggingAuthenticator{next: next, logger: logger}
}

// Session delegates to the wrapped authenticator. Failures are logged as
// warnings since authenticated URLs are skipped without a session.
func (a *LoggingAuthenticator) Session(ctx context.Context) (s *concierge.Session, err error) {
	defer func(begin time.Time) {
		if err != nil {
			a.logger.Warn("login failed",
				"code", concierge.ErrorCode(err),
				"duration", time.Since(begin),
				"err", err,
			)
			return
		}
		a.logger.Debug("session ready", "duration", time.Since(begin))
	}(time.Now())
	return a.next.Session(ctx)
}
