package ingest_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bkayser/concierge"
	"github.com/bkayser/concierge/fs"
	"github.com/bkayser/concierge/ingest"
	"github.com/bkayser/concierge/langchaingo"
	"github.com/bkayser/concierge/mock"
	"github.com/bkayser/concierge/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wordSplitter returns one chunk per whitespace-separated word.
func wordSplitter() *mock.Splitter {
	return &mock.Splitter{
		SplitFn: func(docs []*concierge.Document) ([]*concierge.Chunk, error) {
			var chunks []*concierge.Chunk
			for _, d := range docs {
				for i, w := range strings.Fields(d.Content) {
					chunks = append(chunks, &concierge.Chunk{Content: w, Metadata: d.Metadata, Position: i})
				}
			}
			return chunks, nil
		},
	}
}

// recordingIndex collects added chunks.
type recordingIndex struct {
	mock.Index
	resets  int
	batches [][]*concierge.Chunk
}

func newRecordingIndex() *recordingIndex {
	idx := &recordingIndex{}
	idx.ResetFn = func(context.Context) error {
		idx.resets++
		return nil
	}
	idx.AddFn = func(_ context.Context, chunks []*concierge.Chunk) error {
		idx.batches = append(idx.batches, chunks)
		return nil
	}
	return idx
}

func fileLoader(docs ...*concierge.Document) *mock.DocumentLoader {
	return &mock.DocumentLoader{
		LoadFn: func(context.Context) (*concierge.LoadResult, error) {
			return &concierge.LoadResult{Documents: docs, Files: len(docs)}, nil
		},
	}
}

func TestPipeline_Run(t *testing.T) {
	t.Parallel()

	t.Run("indexes normalized file and web documents", func(t *testing.T) {
		t.Parallel()

		idx := newRecordingIndex()
		p := &ingest.Pipeline{
			Files: fileLoader(&concierge.Document{
				Content:  "offside positions",
				Metadata: concierge.Metadata{Source: "data/orgs/NWSC/referee_fees.md"},
			}),
			Web:      ingest.NewWebLoader(&ingest.Fetcher{Resolver: okResolver()}, echoExtractor("Laws")),
			URLs:     []string{"https://www.theifab.com/laws/"},
			Splitter: wordSplitter(),
			Index:    idx,
			TokenCounter: &mock.TokenCounter{
				CountTokensFn: func(_ context.Context, text string) (int, error) {
					return len(strings.Fields(text)), nil
				},
			},
		}

		summary, err := p.Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 2, summary.Documents)
		assert.Equal(t, 1, summary.Files)
		assert.Equal(t, 1, summary.URLs)
		assert.Equal(t, 3, summary.Chunks)
		assert.Equal(t, 3, summary.Tokens)
		assert.Zero(t, summary.Skipped())
		assert.Equal(t, 1, idx.resets)

		require.Len(t, idx.batches, 1)
		chunks := idx.batches[0]
		assert.Equal(t, concierge.DocTypeOrg, chunks[0].Metadata.DocType)
		assert.Equal(t, "NWSC", chunks[0].Metadata.Org)
		assert.Equal(t, "referee fees", chunks[0].Metadata.Title)
		assert.Equal(t, concierge.DocTypeLaws, chunks[2].Metadata.DocType)
	})

	t.Run("aggregates failures from both loaders", func(t *testing.T) {
		t.Parallel()

		files := &mock.DocumentLoader{
			LoadFn: func(context.Context) (*concierge.LoadResult, error) {
				return &concierge.LoadResult{
					Documents: []*concierge.Document{{Content: "a", Metadata: concierge.Metadata{Source: "data/a.txt"}}},
					Files:     1,
					Failures: []concierge.Failure{
						{Unit: "data/broken.pdf", Stage: concierge.StageLoadPDF, Err: errors.New("malformed")},
					},
				}, nil
			},
		}
		resolver := &mock.Resolver{
			ResolveFn: func(_ context.Context, rawURL string, _ *concierge.Session) (*concierge.Response, error) {
				return &concierge.Response{URL: rawURL, StatusCode: http.StatusInternalServerError}, nil
			},
		}
		p := &ingest.Pipeline{
			Files:    files,
			Web:      ingest.NewWebLoader(&ingest.Fetcher{Resolver: resolver}, echoExtractor("")),
			URLs:     []string{"https://example.com/", "https://reftown.com/x.asp"},
			Splitter: wordSplitter(),
			Index:    newRecordingIndex(),
		}

		summary, err := p.Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Documents)
		assert.Equal(t, 0, summary.URLs)
		assert.Equal(t, 3, summary.Skipped())

		stages := map[concierge.Stage]int{}
		for _, f := range summary.Failures {
			stages[f.Stage]++
		}
		assert.Equal(t, map[concierge.Stage]int{
			concierge.StageLoadPDF: 1,
			concierge.StageFetch:   1,
			concierge.StageAuth:    1,
		}, stages)
	})

	t.Run("adds chunks in batches", func(t *testing.T) {
		t.Parallel()

		idx := newRecordingIndex()
		p := &ingest.Pipeline{
			Files: fileLoader(&concierge.Document{
				Content:  "one two three four five",
				Metadata: concierge.Metadata{Source: "data/text/faq.txt"},
			}),
			Splitter:  wordSplitter(),
			Index:     idx,
			BatchSize: 2,
		}

		summary, err := p.Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 5, summary.Chunks)
		require.Len(t, idx.batches, 3)
		assert.Len(t, idx.batches[0], 2)
		assert.Len(t, idx.batches[2], 1)
	})

	t.Run("records failed batches and continues", func(t *testing.T) {
		t.Parallel()

		calls := 0
		idx := &mock.Index{
			ResetFn: func(context.Context) error { return nil },
			AddFn: func(context.Context, []*concierge.Chunk) error {
				calls++
				if calls == 1 {
					return errors.New("embedding quota exceeded")
				}
				return nil
			},
		}
		p := &ingest.Pipeline{
			Files: fileLoader(&concierge.Document{
				Content:  "one two three",
				Metadata: concierge.Metadata{Source: "data/a.txt"},
			}),
			Splitter:  wordSplitter(),
			Index:     idx,
			BatchSize: 2,
		}

		summary, err := p.Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Chunks)
		require.Len(t, summary.Failures, 1)
		assert.Equal(t, concierge.StageIndex, summary.Failures[0].Stage)
		assert.Equal(t, "chunks 1-2", summary.Failures[0].Unit)
	})

	t.Run("leaves index untouched when nothing was loaded", func(t *testing.T) {
		t.Parallel()

		idx := &mock.Index{
			ResetFn: func(context.Context) error {
				t.Fatal("reset should not be called")
				return nil
			},
		}
		p := &ingest.Pipeline{
			Files:    fileLoader(),
			Splitter: wordSplitter(),
			Index:    idx,
		}

		summary, err := p.Run(context.Background())

		require.NoError(t, err)
		assert.Zero(t, summary.Documents)
		assert.Zero(t, summary.Chunks)
	})

	t.Run("returns error when file loader fails", func(t *testing.T) {
		t.Parallel()

		p := &ingest.Pipeline{
			Files: &mock.DocumentLoader{
				LoadFn: func(context.Context) (*concierge.LoadResult, error) {
					return nil, errors.New("permission denied")
				},
			},
			Splitter: wordSplitter(),
			Index:    newRecordingIndex(),
		}

		_, err := p.Run(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading files")
	})

	t.Run("returns error when reset fails", func(t *testing.T) {
		t.Parallel()

		p := &ingest.Pipeline{
			Files:    fileLoader(&concierge.Document{Content: "x", Metadata: concierge.Metadata{Source: "a.txt"}}),
			Splitter: wordSplitter(),
			Index: &mock.Index{
				ResetFn: func(context.Context) error { return errors.New("database is locked") },
			},
		}

		_, err := p.Run(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "resetting index")
	})

	t.Run("returns error when splitter fails", func(t *testing.T) {
		t.Parallel()

		p := &ingest.Pipeline{
			Files: fileLoader(&concierge.Document{Content: "x", Metadata: concierge.Metadata{Source: "a.txt"}}),
			Splitter: &mock.Splitter{
				SplitFn: func([]*concierge.Document) ([]*concierge.Chunk, error) {
					return nil, concierge.Errorf(concierge.EINTERNAL, "split failed")
				},
			},
			Index: newRecordingIndex(),
		}

		_, err := p.Run(context.Background())

		assert.Equal(t, concierge.EINTERNAL, concierge.ErrorCode(err))
	})
}

func TestPipeline_Run_DataRoot(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "text"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "text", "general.txt"), []byte("Hello"), 0o644))

	idx := newRecordingIndex()
	p := &ingest.Pipeline{
		Files:      fs.NewLoader(root, pdf.NewReader()),
		Normalizer: concierge.NewNormalizer(),
		Splitter:   langchaingo.NewSplitter(),
		Index:      idx,
	}

	summary, err := p.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Files)
	assert.Equal(t, 1, summary.Documents)
	assert.Equal(t, 1, summary.Chunks)
	assert.Empty(t, summary.Failures)

	require.Len(t, idx.batches, 1)
	require.Len(t, idx.batches[0], 1)
	chunk := idx.batches[0][0]
	assert.Equal(t, "Hello", chunk.Content)
	assert.Equal(t, concierge.DocTypeGeneral, chunk.Metadata.DocType)
	assert.Equal(t, filepath.ToSlash(filepath.Join(root, "text", "general.txt")), chunk.Metadata.Source)
	assert.Equal(t, 1, idx.resets)
}
