package sqlite

import (
	"context"
	"sort"
	"time"

	"github.com/bkayser/concierge"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ concierge.Index = (*Index)(nil)

// Index implements concierge.Index with embeddings stored as blobs and
// exhaustive cosine-similarity search.
type Index struct {
	db       *DB
	embedder concierge.Embedder
}

// NewIndex creates a new Index.
func NewIndex(db *DB, embedder concierge.Embedder) *Index {
	return &Index{db: db, embedder: embedder}
}

// Add embeds chunks and stores them in one transaction. Every chunk gets
// its own row; identical chunks are stored as often as they are added.
func (idx *Index) Add(ctx context.Context, chunks []*concierge.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vecs, err := idx.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return err
	}
	if len(vecs) != len(chunks) {
		return concierge.Errorf(concierge.EINTERNAL, "embedder returned %d vectors for %d chunks", len(vecs), len(chunks))
	}

	dims, err := idx.dimensions(ctx)
	if err != nil {
		return err
	}

	tx, err := idx.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	for i, c := range chunks {
		if dims == 0 {
			dims = len(vecs[i])
		}
		if len(vecs[i]) != dims {
			return concierge.Errorf(concierge.EINVALID, "embedding has %d dimensions, index has %d", len(vecs[i]), dims)
		}

		m := c.Metadata
		_, err := tx.ExecContext(ctx, `
			INSERT INTO chunks (id, source, title, doc_type, org, page, position, content, content_hash, dimensions, embedding, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, uuid.New().String(), m.Source, m.Title, string(m.DocType), m.Org, m.Page, c.Position,
			c.Content, hashContent(c.Content), dims, encodeVector(vecs[i]), now)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// dimensions returns the vector size of stored chunks, or 0 when empty.
func (idx *Index) dimensions(ctx context.Context) (int, error) {
	var n int
	err := idx.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(dimensions), 0) FROM chunks`).Scan(&n)
	return n, err
}

// Search returns up to k chunks ranked by cosine similarity to query.
func (idx *Index) Search(ctx context.Context, query string, k int) ([]concierge.SearchResult, error) {
	if k <= 0 {
		return nil, concierge.Errorf(concierge.EINVALID, "k must be positive")
	}
	if query == "" {
		return nil, concierge.Errorf(concierge.EINVALID, "query required")
	}

	q, err := idx.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	rows, err := idx.db.QueryContext(ctx, `
		SELECT source, title, doc_type, org, page, position, content, embedding
		FROM chunks
		WHERE dimensions = ?
	`, len(q))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []concierge.SearchResult
	for rows.Next() {
		var c concierge.Chunk
		var docType string
		var blob []byte
		if err := rows.Scan(&c.Metadata.Source, &c.Metadata.Title, &docType, &c.Metadata.Org,
			&c.Metadata.Page, &c.Position, &c.Content, &blob); err != nil {
			return nil, err
		}
		c.Metadata.DocType = concierge.DocType(docType)

		vec, err := decodeVector(blob)
		if err != nil {
			return nil, err
		}
		results = append(results, concierge.SearchResult{Chunk: &c, Score: cosine(q, vec)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Reset deletes every stored chunk.
func (idx *Index) Reset(ctx context.Context) error {
	_, err := idx.db.ExecContext(ctx, `DELETE FROM chunks`)
	return err
}

// Count returns the number of stored chunks.
func (idx *Index) Count(ctx context.Context) (int, error) {
	var n int
	err := idx.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n)
	return n, err
}
