package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/bkayser/concierge"
)

// Ensure LoggingIndex implements concierge.Index.
var _ concierge.Index = (*LoggingIndex)(nil)

// LoggingIndex wraps an Index with logging.
type LoggingIndex struct {
	next   concierge.Index
	logger *slog.Logger
}

// NewLoggingIndex creates a new LoggingIndex.
func NewLoggingIndex(next concierge.Index, logger *slog.Logger) *LoggingIndex {
	return &LoggingIndex{next: next, logger: logger}
}

// Add delegates to the wrapped index and logs the batch size.
func (i *LoggingIndex) Add(ctx context.Context, chunks []*concierge.Chunk) (err error) {
	defer func(begin time.Time) {
		i.logger.Info("index add",
			"chunks", len(chunks),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return i.next.Add(ctx, chunks)
}

// Search delegates to the wrapped index and logs the number of results.
func (i *LoggingIndex) Search(ctx context.Context, query string, k int) (results []concierge.SearchResult, err error) {
	defer func(begin time.Time) {
		i.logger.Info("index search",
			"query", query,
			"k", k,
			"count", len(results),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return i.next.Search(ctx, query, k)
}

// Reset delegates to the wrapped index.
func (i *LoggingIndex) Reset(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		i.logger.Info("index reset",
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return i.next.Reset(ctx)
}
