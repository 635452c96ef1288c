package ingest_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/bkayser/concierge"
	"github.com/bkayser/concierge/bloom"
	"github.com/bkayser/concierge/fs"
	"github.com/bkayser/concierge/ingest"
	"github.com/bkayser/concierge/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identityConverter() *mock.Converter {
	return &mock.Converter{
		ConvertFn: func(html string) (string, error) { return html, nil },
	}
}

func TestCurator_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("saves one markdown file per URL", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		c := &ingest.Curator{
			Fetcher:   &ingest.Fetcher{Resolver: okResolver()},
			Extractor: echoExtractor("Referee Fees"),
			Converter: identityConverter(),
			Store:     fs.NewWriter(dir),
		}

		result, err := c.Fetch(context.Background(), []concierge.URLEntry{
			{URL: "https://www.example.com/fees/2024"},
			{URL: "https://example.com/other", Output: "custom"},
		})

		require.NoError(t, err)
		assert.Equal(t, "2/2 URLs processed", result.String())
		assert.Equal(t, []string{
			filepath.Join(dir, "example.com_fees_2024.md"),
			filepath.Join(dir, "custom.md"),
		}, result.Saved)

		data, err := os.ReadFile(filepath.Join(dir, "custom.md"))
		require.NoError(t, err)
		assert.Equal(t, "---\nsource: https://example.com/other\ntitle: Referee Fees\n---\n\n# Referee Fees\n\n<p>https://example.com/other</p>\n", string(data))
	})

	t.Run("never overwrites existing files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		existing := filepath.Join(dir, "kept.md")
		require.NoError(t, os.WriteFile(existing, []byte("hand edited"), 0o644))

		c := &ingest.Curator{
			Fetcher:   &ingest.Fetcher{Resolver: okResolver()},
			Extractor: echoExtractor("T"),
			Converter: identityConverter(),
			Store:     fs.NewWriter(dir),
		}

		result, err := c.Fetch(context.Background(), []concierge.URLEntry{
			{URL: "https://example.com/a", Output: "kept.md"},
		})

		require.NoError(t, err)
		assert.Equal(t, "0/1 URLs processed", result.String())
		require.Len(t, result.Failures, 1)
		assert.Equal(t, concierge.StageSave, result.Failures[0].Stage)
		assert.Equal(t, concierge.ECONFLICT, concierge.ErrorCode(result.Failures[0].Err))

		data, err := os.ReadFile(existing)
		require.NoError(t, err)
		assert.Equal(t, "hand edited", string(data))
	})

	t.Run("fetches auth URLs anonymously without a session", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		var fetched []string
		resolver := &mock.Resolver{
			ResolveFn: func(_ context.Context, rawURL string, s *concierge.Session) (*concierge.Response, error) {
				assert.Nil(t, s)
				mu.Lock()
				fetched = append(fetched, rawURL)
				mu.Unlock()
				return &concierge.Response{URL: rawURL, StatusCode: 200, Body: []byte("x")}, nil
			},
		}
		c := &ingest.Curator{
			Fetcher: &ingest.Fetcher{
				Authenticator: &mock.Authenticator{
					SessionFn: func(context.Context) (*concierge.Session, error) {
						return nil, concierge.Errorf(concierge.EUNAUTHORIZED, "missing credentials")
					},
				},
				Resolver: resolver,
			},
			Extractor: echoExtractor("T"),
			Converter: identityConverter(),
			Store: &mock.PageStore{
				SaveFn: func(_ context.Context, p *concierge.Page) (string, error) { return p.URL, nil },
			},
		}

		result, err := c.Fetch(context.Background(), []concierge.URLEntry{{URL: "https://reftown.com/doc.asp"}})

		require.NoError(t, err)
		assert.Equal(t, []string{"https://reftown.com/doc.asp"}, fetched)
		assert.Empty(t, result.Failures)
	})

	t.Run("uses the session only for auth URLs", func(t *testing.T) {
		t.Parallel()

		session := &concierge.Session{}
		var mu sync.Mutex
		used := map[string]*concierge.Session{}
		resolver := &mock.Resolver{
			ResolveFn: func(_ context.Context, rawURL string, s *concierge.Session) (*concierge.Response, error) {
				mu.Lock()
				used[rawURL] = s
				mu.Unlock()
				return &concierge.Response{URL: rawURL, StatusCode: 200, Body: []byte("x")}, nil
			},
		}
		c := &ingest.Curator{
			Fetcher: &ingest.Fetcher{
				Authenticator: &mock.Authenticator{
					SessionFn: func(context.Context) (*concierge.Session, error) { return session, nil },
				},
				Resolver: resolver,
			},
			Extractor: echoExtractor("T"),
			Converter: identityConverter(),
			Store: &mock.PageStore{
				SaveFn: func(_ context.Context, p *concierge.Page) (string, error) { return p.URL, nil },
			},
		}

		_, err := c.Fetch(context.Background(), []concierge.URLEntry{
			{URL: "https://reftown.com/doc.asp"},
			{URL: "https://example.com/"},
		})

		require.NoError(t, err)
		assert.Same(t, session, used["https://reftown.com/doc.asp"])
		assert.Nil(t, used["https://example.com/"])
	})

	t.Run("records conversion failures", func(t *testing.T) {
		t.Parallel()

		c := &ingest.Curator{
			Fetcher:   &ingest.Fetcher{Resolver: okResolver()},
			Extractor: echoExtractor("T"),
			Converter: &mock.Converter{
				ConvertFn: func(string) (string, error) { return "", errors.New("bad markup") },
			},
			Store: &mock.PageStore{
				SaveFn: func(context.Context, *concierge.Page) (string, error) {
					t.Fatal("save should not be called")
					return "", nil
				},
			},
		}

		result, err := c.Fetch(context.Background(), []concierge.URLEntry{{URL: "https://example.com/"}})

		require.NoError(t, err)
		require.Len(t, result.Failures, 1)
		assert.Equal(t, concierge.StageFetch, result.Failures[0].Stage)
	})

	t.Run("skips URLs already seen", func(t *testing.T) {
		t.Parallel()

		var saved []string
		c := &ingest.Curator{
			Fetcher:   &ingest.Fetcher{Resolver: okResolver(), Concurrency: 1},
			Extractor: echoExtractor("T"),
			Converter: identityConverter(),
			Store: &mock.PageStore{
				SaveFn: func(_ context.Context, p *concierge.Page) (string, error) {
					saved = append(saved, p.URL)
					return p.URL, nil
				},
			},
			Seen: bloom.NewFilter(bloom.DefaultCapacity, bloom.DefaultFPRate),
		}

		result, err := c.Fetch(context.Background(), []concierge.URLEntry{
			{URL: "https://example.com/a"},
			{URL: "https://www.example.com/a/"},
			{URL: "https://example.com/b"},
		})

		require.NoError(t, err)
		assert.Equal(t, "2/2 URLs processed", result.String())
		assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, saved)
	})
}

func TestCurator_Discover(t *testing.T) {
	t.Parallel()

	t.Run("returns sitemap URLs as entries", func(t *testing.T) {
		t.Parallel()

		c := &ingest.Curator{
			Sitemaps: &mock.SitemapService{
				DiscoverURLsFn: func(_ context.Context, baseURL string, _ *concierge.URLFilter) ([]string, error) {
					assert.Equal(t, "https://www.theifab.com/laws/", baseURL)
					return []string{"https://www.theifab.com/laws/offside"}, nil
				},
			},
		}

		entries, err := c.Discover(context.Background(), "https://www.theifab.com/laws/", nil)

		require.NoError(t, err)
		assert.Equal(t, []concierge.URLEntry{{URL: "https://www.theifab.com/laws/offside"}}, entries)
	})

	t.Run("returns error without sitemap service", func(t *testing.T) {
		t.Parallel()

		_, err := (&ingest.Curator{}).Discover(context.Background(), "https://example.com", nil)

		assert.Equal(t, concierge.EINVALID, concierge.ErrorCode(err))
	})
}
