package slog

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"time"

	"github.com/bkayser/concierge"
)

// Ensure LoggingSitemapService implements concierge.SitemapService.
var _ concierge.SitemapService = (*LoggingSitemapService)(nil)

// LoggingSitemapService wraps a SitemapService with logging. Each call logs
// the site, the path the results are scoped to, the filter patterns and
// how many pages survived them.
type LoggingSitemapService struct {
	next   concierge.SitemapService
	logger *slog.Logger
}

// NewLoggingSitemapService creates a new LoggingSitemapService.
func NewLoggingSitemapService(next concierge.SitemapService, logger *slog.Logger) *LoggingSitemapService {
	return &LoggingSitemapService{next: next, logger: logger}
}

// DiscoverURLs delegates to the wrapped service. Failures are logged as
// warnings since the curated run continues with its other inputs.
func (s *LoggingSitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *concierge.URLFilter) (urls []string, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"domain", concierge.Domain(baseURL),
			"path", basePath(baseURL),
		}
		if filter != nil {
			if len(filter.Include) > 0 {
				attrs = append(attrs, "include", patterns(filter.Include))
			}
			if len(filter.Exclude) > 0 {
				attrs = append(attrs, "exclude", patterns(filter.Exclude))
			}
		}
		attrs = append(attrs, "duration", time.Since(begin))

		if err != nil {
			attrs = append(attrs, "code", concierge.ErrorCode(err), "err", err)
			s.logger.Warn("sitemap discovery failed", attrs...)
			return
		}
		attrs = append(attrs, "discovered", len(urls))
		s.logger.Info("sitemap discovery", attrs...)
	}(time.Now())
	return s.next.DiscoverURLs(ctx, baseURL, filter)
}

// basePath returns the path discovery is scoped to, "/" for a whole site.
func basePath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}

func patterns(res []*regexp.Regexp) []string {
	out := make([]string, 0, len(res))
	for _, re := range res {
		out = append(out, re.String())
	}
	return out
}
