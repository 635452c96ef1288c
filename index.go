package concierge

import "context"

// Embedder turns texts into vectors.
type Embedder interface {
	// EmbedDocuments returns one vector per text, in order.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery returns the vector for a search query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// SearchResult is a chunk returned by a search with its similarity score.
type SearchResult struct {
	Chunk *Chunk
	Score float32
}

// Index stores embedded chunks and answers similarity queries.
type Index interface {
	// Add embeds and stores chunks.
	Add(ctx context.Context, chunks []*Chunk) error

	// Search returns up to k chunks most similar to query, best first.
	Search(ctx context.Context, query string, k int) ([]SearchResult, error)

	// Reset removes all stored chunks so a run can rebuild the index.
	Reset(ctx context.Context) error
}
