package mock

import (
	"context"

	"github.com/bkayser/concierge"
)

// Compile-time interface verification.
var (
	_ concierge.Embedder      = (*Embedder)(nil)
	_ concierge.Index         = (*Index)(nil)
	_ concierge.DomainLimiter = (*DomainLimiter)(nil)
)

// Embedder is a mock implementation of concierge.Embedder.
type Embedder struct {
	EmbedDocumentsFn func(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQueryFn     func(ctx context.Context, text string) ([]float32, error)
}

func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return e.EmbedDocumentsFn(ctx, texts)
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.EmbedQueryFn(ctx, text)
}

// Index is a mock implementation of concierge.Index.
type Index struct {
	AddFn    func(ctx context.Context, chunks []*concierge.Chunk) error
	SearchFn func(ctx context.Context, query string, k int) ([]concierge.SearchResult, error)
	ResetFn  func(ctx context.Context) error
}

func (i *Index) Add(ctx context.Context, chunks []*concierge.Chunk) error {
	return i.AddFn(ctx, chunks)
}

func (i *Index) Search(ctx context.Context, query string, k int) ([]concierge.SearchResult, error) {
	return i.SearchFn(ctx, query, k)
}

func (i *Index) Reset(ctx context.Context) error {
	return i.ResetFn(ctx)
}

// DomainLimiter is a mock implementation of concierge.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
