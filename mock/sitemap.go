package mock

import (
	"context"

	"github.com/bkayser/concierge"
)

var _ concierge.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of concierge.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string, filter *concierge.URLFilter) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *concierge.URLFilter) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL, filter)
}
