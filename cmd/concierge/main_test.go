package main_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/bkayser/concierge"
	main "github.com/bkayser/concierge/cmd/concierge"
	"github.com/bkayser/concierge/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLI_HelpShowsAllCommands(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	parser, err := kong.New(cli,
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	require.NoError(t, err)

	_, _ = parser.Parse([]string{"--help"})

	for _, cmd := range []string{"ingest", "search"} {
		assert.Contains(t, stdout.String(), cmd, "Help should mention %s command", cmd)
	}
}

func testMain(idx concierge.Index) *main.Main {
	m := main.NewMain()
	m.DotenvPath = ""
	m.Config = &main.Config{
		Index:    main.IndexConfig{Backend: main.BackendSQLite},
		Embedder: main.EmbedderConfig{Provider: main.ProviderGemini},
		Chunk:    main.ChunkConfig{Size: 100, Overlap: 10},
	}
	m.Index = idx
	return m
}

func TestMain_Run(t *testing.T) {
	t.Parallel()

	t.Run("help returns nil and shows commands", func(t *testing.T) {
		t.Parallel()

		var stdout, stderr bytes.Buffer
		err := testMain(nil).Run(context.Background(), []string{"--help"}, &stdout, &stderr)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Usage:")
		assert.Contains(t, stdout.String(), "ingest")
	})

	t.Run("no arguments returns error", func(t *testing.T) {
		t.Parallel()

		var stdout, stderr bytes.Buffer
		err := testMain(nil).Run(context.Background(), nil, &stdout, &stderr)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no command specified")
	})

	t.Run("search prints ranked results", func(t *testing.T) {
		t.Parallel()

		idx := &mock.Index{
			SearchFn: func(_ context.Context, query string, k int) ([]concierge.SearchResult, error) {
				assert.Equal(t, "offside position", query)
				assert.Equal(t, 2, k)
				return []concierge.SearchResult{
					{
						Chunk: &concierge.Chunk{
							Content:  "A player is in an offside position if...",
							Metadata: concierge.Metadata{Source: "https://www.theifab.com/laws/latest/offside/", Title: "Law 11", DocType: concierge.DocTypeLaws},
						},
						Score: 0.91,
					},
					{
						Chunk: &concierge.Chunk{
							Content:  "Assistant referee\nsignals",
							Metadata: concierge.Metadata{Source: "data/pdfs/guide.pdf", DocType: concierge.DocTypeGeneral, Page: 4},
						},
						Score: 0.5,
					},
				}, nil
			},
		}

		var stdout, stderr bytes.Buffer
		err := testMain(idx).Run(context.Background(), []string{"search", "offside position", "-k", "2"}, &stdout, &stderr)

		require.NoError(t, err)
		out := stdout.String()
		assert.Contains(t, out, "1. [0.910] Law 11 (laws)")
		assert.Contains(t, out, "2. [0.500] data/pdfs/guide.pdf (general)")
		assert.Contains(t, out, "data/pdfs/guide.pdf p.4")
		assert.Contains(t, out, "Assistant referee signals")
	})

	t.Run("search reports empty index", func(t *testing.T) {
		t.Parallel()

		idx := &mock.Index{
			SearchFn: func(context.Context, string, int) ([]concierge.SearchResult, error) {
				return nil, nil
			},
		}

		var stdout, stderr bytes.Buffer
		err := testMain(idx).Run(context.Background(), []string{"search", "fees"}, &stdout, &stderr)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No results")
	})

	t.Run("search returns index errors", func(t *testing.T) {
		t.Parallel()

		idx := &mock.Index{
			SearchFn: func(context.Context, string, int) ([]concierge.SearchResult, error) {
				return nil, errors.New("database is locked")
			},
		}

		var stdout, stderr bytes.Buffer
		err := testMain(idx).Run(context.Background(), []string{"search", "fees"}, &stdout, &stderr)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "error:")
	})

	t.Run("rejects unknown index backend flag", func(t *testing.T) {
		t.Parallel()

		var stdout, stderr bytes.Buffer
		err := testMain(&mock.Index{}).Run(context.Background(), []string{"search", "fees", "--index", "faiss"}, &stdout, &stderr)

		assert.Equal(t, concierge.EINVALID, concierge.ErrorCode(err))
	})

	t.Run("long snippets are shortened", func(t *testing.T) {
		t.Parallel()

		idx := &mock.Index{
			SearchFn: func(context.Context, string, int) ([]concierge.SearchResult, error) {
				return []concierge.SearchResult{{
					Chunk: &concierge.Chunk{Content: strings.Repeat("é", 500), Metadata: concierge.Metadata{Source: "a.txt"}},
				}}, nil
			},
		}

		var stdout, stderr bytes.Buffer
		err := testMain(idx).Run(context.Background(), []string{"search", "x"}, &stdout, &stderr)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), strings.Repeat("é", 197)+"...")
		assert.NotContains(t, stdout.String(), strings.Repeat("é", 198))
	})
}

func TestMain_RunIngest(t *testing.T) {
	t.Parallel()

	t.Run("skips the configured URL file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "text"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "text", "general.txt"), []byte("Hello"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "urls.txt"), []byte("# no pages yet\n"), 0o644))

		var added []*concierge.Chunk
		m := testMain(&mock.Index{
			ResetFn: func(context.Context) error { return nil },
			AddFn: func(_ context.Context, chunks []*concierge.Chunk) error {
				added = append(added, chunks...)
				return nil
			},
		})
		m.TokenCounter = &mock.TokenCounter{
			CountTokensFn: func(context.Context, string) (int, error) { return 1, nil },
		}

		var stdout, stderr bytes.Buffer
		err := m.Run(context.Background(), []string{"ingest", "--data", dir, "--urls", filepath.Join(dir, "urls.txt")}, &stdout, &stderr)

		require.NoError(t, err)
		require.Len(t, added, 1)
		assert.Equal(t, "Hello", added[0].Content)
		assert.Equal(t, concierge.DocTypeGeneral, added[0].Metadata.DocType)
		assert.Contains(t, stdout.String(), "Loaded 1 documents (1 files, 0 URLs)")
	})
}
