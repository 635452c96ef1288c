// Package ingest orchestrates document ingestion: fetching web pages,
// loading files, normalizing, chunking and indexing. It also drives the
// curated fetch that saves web pages as Markdown for human review.
package ingest

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/bkayser/concierge"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of URLs fetched at once.
const DefaultConcurrency = 4

// Fetcher resolves URLs with the session their domain requires. It is
// shared by WebLoader and Curator.
type Fetcher struct {
	Classifier    *concierge.Classifier
	Authenticator concierge.Authenticator
	Resolver      concierge.Resolver
	RateLimiter   concierge.DomainLimiter
	Concurrency   int
}

// Session returns the authenticated session, or an error when none can be
// had. A nil Authenticator is treated like missing credentials.
func (f *Fetcher) Session(ctx context.Context) (*concierge.Session, error) {
	if f.Authenticator == nil {
		return nil, concierge.Errorf(concierge.EUNAUTHORIZED, "no credentials configured")
	}
	return f.Authenticator.Session(ctx)
}

// Partition splits urls into those requiring a session and the rest.
func (f *Fetcher) Partition(urls []string) (auth, anon []string) {
	return f.classifier().Partition(urls)
}

// RequiresAuth reports whether rawURL is on the authenticated domain.
func (f *Fetcher) RequiresAuth(rawURL string) bool {
	return f.classifier().RequiresAuth(rawURL)
}

func (f *Fetcher) classifier() *concierge.Classifier {
	if f.Classifier == nil {
		return concierge.NewClassifier()
	}
	return f.Classifier
}

// Fetch waits for the domain's rate limit and resolves rawURL. Responses
// outside 2xx are returned as errors.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, session *concierge.Session) (*concierge.Response, error) {
	if f.RateLimiter != nil {
		if err := f.RateLimiter.Wait(ctx, concierge.Domain(rawURL)); err != nil {
			return nil, err
		}
	}

	resp, err := f.Resolver.Resolve(ctx, rawURL, session)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, resp.URL)
	}
	return resp, nil
}

func (f *Fetcher) concurrency() int {
	if f.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return f.Concurrency
}

// unitResult is the outcome of processing one unit in forEach.
type unitResult struct {
	pos  int
	unit string
	err  error
}

// forEach runs fn for every unit with at most limit running at once and
// returns each unit's error by position. progress, if non-nil, is called
// from the calling goroutine as units finish. It returns early only when
// ctx is canceled.
func forEach(ctx context.Context, limit int, units []string, progress concierge.ProgressFunc, fn func(ctx context.Context, pos int, unit string) error) ([]error, error) {
	resultCh := make(chan unitResult, len(units))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	go func() {
		for i, u := range units {
			g.Go(func() error {
				resultCh <- unitResult{pos: i, unit: u, err: fn(gctx, i, u)}
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	errs := make([]error, len(units))
	var completed atomic.Int64
	for r := range resultCh {
		errs[r.pos] = r.err
		n := completed.Add(1)
		if progress != nil {
			progress(concierge.Progress{
				Unit:      r.unit,
				Completed: int(n),
				Total:     len(units),
				Error:     r.err,
			})
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return errs, nil
}
