// Package postgres provides a concierge.Index backed by PostgreSQL with
// the pgvector extension.
package postgres

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/bkayser/concierge"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// Defaults for Config.
const (
	DefaultTableName = "concierge_chunks"
	DefaultDimension = 768
)

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Config holds connection and table settings.
type Config struct {
	ConnString string
	TableName  string

	// Dimension is the embedding size; it is fixed when the table is
	// created.
	Dimension int
}

// Compile-time interface verification.
var _ concierge.Index = (*Index)(nil)

// Index stores chunks in a pgvector table and searches by cosine
// distance.
type Index struct {
	pool     *pgxpool.Pool
	table    string
	dim      int
	embedder concierge.Embedder
}

// Open connects to the database and creates the extension, table and
// vector index when missing.
func Open(ctx context.Context, config Config, embedder concierge.Embedder) (*Index, error) {
	config, err := config.withDefaults()
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	idx := &Index{pool: pool, table: config.TableName, dim: config.Dimension, embedder: embedder}
	if err := idx.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return idx, nil
}

func (c Config) withDefaults() (Config, error) {
	if c.ConnString == "" {
		return c, concierge.Errorf(concierge.EINVALID, "postgres connection string required")
	}
	if c.TableName == "" {
		c.TableName = DefaultTableName
	}
	if !tableNamePattern.MatchString(c.TableName) {
		return c, concierge.Errorf(concierge.EINVALID, "invalid table name %q", c.TableName)
	}
	if c.Dimension <= 0 {
		c.Dimension = DefaultDimension
	}
	return c, nil
}

func (idx *Index) initialize(ctx context.Context) error {
	if _, err := idx.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			source TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			doc_type TEXT NOT NULL DEFAULT '',
			org TEXT NOT NULL DEFAULT '',
			page INTEGER NOT NULL DEFAULT 0,
			position INTEGER NOT NULL DEFAULT 0,
			content TEXT NOT NULL,
			embedding vector(%d) NOT NULL
		)`, idx.table, idx.dim)
	if _, err := idx.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_embedding_idx
		ON %s
		USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = 100)`, idx.table, idx.table)
	if _, err := idx.pool.Exec(ctx, createIndex); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (idx *Index) Close() {
	idx.pool.Close()
}

// ChunkID returns a stable ID for a chunk derived from its source, page,
// position and content, so re-adding a chunk replaces it.
func ChunkID(c *concierge.Chunk) uuid.UUID {
	key := fmt.Sprintf("%s\x00%d\x00%d\x00%s", c.Metadata.Source, c.Metadata.Page, c.Position, c.Content)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key))
}

// Add embeds chunks and upserts them in one transaction.
func (idx *Index) Add(ctx context.Context, chunks []*concierge.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = sanitize(c.Content)
	}
	vecs, err := idx.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return err
	}
	if len(vecs) != len(chunks) {
		return concierge.Errorf(concierge.EINTERNAL, "embedder returned %d vectors for %d chunks", len(vecs), len(chunks))
	}

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, source, title, doc_type, org, page, position, content, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			doc_type = EXCLUDED.doc_type,
			org = EXCLUDED.org,
			embedding = EXCLUDED.embedding`, idx.table)

	batch := &pgx.Batch{}
	for i, c := range chunks {
		if len(vecs[i]) != idx.dim {
			return concierge.Errorf(concierge.EINVALID, "embedding has %d dimensions, table has %d", len(vecs[i]), idx.dim)
		}
		m := c.Metadata
		batch.Queue(stmt, ChunkID(c), m.Source, sanitize(m.Title), string(m.DocType), m.Org,
			m.Page, c.Position, texts[i], pgvector.NewVector(vecs[i]))
	}

	tx, err := idx.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert chunks: %w", err)
	}
	return tx.Commit(ctx)
}

// Search returns up to k chunks nearest to query by cosine distance.
// Score is the cosine similarity.
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

	rows, err := idx.pool.Query(ctx, fmt.Sprintf(`
		SELECT source, title, doc_type, org, page, position, content, 1 - (embedding <=> $1)
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2`, idx.table), pgvector.NewVector(q), k)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var results []concierge.SearchResult
	for rows.Next() {
		var c concierge.Chunk
		var docType string
		var score float64
		if err := rows.Scan(&c.Metadata.Source, &c.Metadata.Title, &docType, &c.Metadata.Org,
			&c.Metadata.Page, &c.Position, &c.Content, &score); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		c.Metadata.DocType = concierge.DocType(docType)
		results = append(results, concierge.SearchResult{Chunk: &c, Score: float32(score)})
	}
	return results, rows.Err()
}

// Reset deletes every stored chunk.
func (idx *Index) Reset(ctx context.Context) error {
	_, err := idx.pool.Exec(ctx, fmt.Sprintf("TRUNCATE %s", idx.table))
	return err
}

// sanitize drops invalid UTF-8, which PostgreSQL rejects in TEXT columns,
// along with NUL bytes.
func sanitize(s string) string {
	return strings.ReplaceAll(strings.ToValidUTF8(s, ""), "\x00", "")
}
