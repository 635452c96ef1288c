// Package ollama computes embeddings with a local Ollama server through
// langchaingo.
package ollama

import (
	"context"
	"fmt"

	"github.com/bkayser/concierge"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
)

// Defaults for a local Ollama install.
const (
	DefaultModel     = "nomic-embed-text:latest"
	DefaultServerURL = "http://localhost:11434"
	DefaultBatchSize = 32
)

// Ensure Embedder implements concierge.Embedder at compile time.
var _ concierge.Embedder = (*Embedder)(nil)

// Embedder adapts a langchaingo embedder to concierge.Embedder.
type Embedder struct {
	emb embeddings.Embedder
}

// Config holds the Ollama connection settings.
type Config struct {
	Model     string
	ServerURL string
	BatchSize int
}

// New connects an Embedder to the Ollama server described by config.
// Empty fields use the defaults.
func New(config Config) (*Embedder, error) {
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.ServerURL == "" {
		config.ServerURL = DefaultServerURL
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultBatchSize
	}

	llm, err := ollama.New(ollama.WithModel(config.Model), ollama.WithServerURL(config.ServerURL))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ollama client: %w", err)
	}
	emb, err := embeddings.NewEmbedder(llm, embeddings.WithBatchSize(config.BatchSize))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	return NewEmbedder(emb), nil
}

// NewEmbedder wraps an existing langchaingo embedder.
func NewEmbedder(emb embeddings.Embedder) *Embedder {
	return &Embedder{emb: emb}
}

// EmbedDocuments embeds texts for storage.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vecs, err := e.emb.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed documents: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, concierge.Errorf(concierge.EINTERNAL, "ollama returned %d embeddings for %d texts", len(vecs), len(texts))
	}
	return vecs, nil
}

// EmbedQuery embeds a search query.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.emb.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return vec, nil
}
