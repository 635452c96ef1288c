package mock

import (
	"context"

	"github.com/bkayser/concierge"
)

var _ concierge.PageStore = (*PageStore)(nil)

// PageStore is a mock implementation of concierge.PageStore.
type PageStore struct {
	SaveFn func(ctx context.Context, page *concierge.Page) (string, error)
}

func (s *PageStore) Save(ctx context.Context, page *concierge.Page) (string, error) {
	return s.SaveFn(ctx, page)
}

var _ concierge.SeenFilter = (*SeenFilter)(nil)

// SeenFilter is a mock implementation of concierge.SeenFilter.
type SeenFilter struct {
	SeenFn func(rawURL string) bool
}

func (f *SeenFilter) Seen(rawURL string) bool {
	return f.SeenFn(rawURL)
}
