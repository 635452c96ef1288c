package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/bkayser/concierge"
	conciergehttp "github.com/bkayser/concierge/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const urlset = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/laws/offside</loc></url>
  <url><loc>{{BASE}}/laws/fouls</loc></url>
  <url><loc>{{BASE}}/news/2024</loc></url>
</urlset>`

func TestSitemapService_DiscoverURLs(t *testing.T) {
	t.Parallel()

	t.Run("reads sitemap declared in robots.txt", func(t *testing.T) {
		t.Parallel()

		srv := newSiteServer(t, map[string]string{
			"/robots.txt":  "User-agent: *\nSitemap: {{BASE}}/pages.xml\n",
			"/pages.xml":   urlset,
			"/sitemap.xml": "<urlset></urlset>",
		})

		svc := conciergehttp.NewSitemapService(srv.Client())
		urls, err := svc.DiscoverURLs(context.Background(), srv.URL, nil)

		require.NoError(t, err)
		assert.Equal(t, []string{
			srv.URL + "/laws/offside",
			srv.URL + "/laws/fouls",
			srv.URL + "/news/2024",
		}, urls)
	})

	t.Run("falls back to sitemap.xml", func(t *testing.T) {
		t.Parallel()

		srv := newSiteServer(t, map[string]string{
			"/sitemap.xml": urlset,
		})

		svc := conciergehttp.NewSitemapService(srv.Client())
		urls, err := svc.DiscoverURLs(context.Background(), srv.URL, nil)

		require.NoError(t, err)
		assert.Len(t, urls, 3)
	})

	t.Run("follows sitemap index once per sitemap", func(t *testing.T) {
		t.Parallel()

		srv := newSiteServer(t, map[string]string{
			"/sitemap.xml": `<sitemapindex>
  <sitemap><loc>{{BASE}}/a.xml</loc></sitemap>
  <sitemap><loc>{{BASE}}/a.xml</loc></sitemap>
  <sitemap><loc>{{BASE}}/b.xml</loc></sitemap>
</sitemapindex>`,
			"/a.xml": `<urlset><url><loc>{{BASE}}/one</loc></url></urlset>`,
			"/b.xml": `<urlset><url><loc>{{BASE}}/two</loc></url><url><loc>{{BASE}}/one</loc></url></urlset>`,
		})

		svc := conciergehttp.NewSitemapService(srv.Client())
		urls, err := svc.DiscoverURLs(context.Background(), srv.URL, nil)

		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/one", srv.URL + "/two"}, urls)
	})

	t.Run("limits results to the base path", func(t *testing.T) {
		t.Parallel()

		srv := newSiteServer(t, map[string]string{
			"/sitemap.xml": urlset,
		})

		svc := conciergehttp.NewSitemapService(srv.Client())
		urls, err := svc.DiscoverURLs(context.Background(), srv.URL+"/laws/", nil)

		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/laws/offside", srv.URL + "/laws/fouls"}, urls)
	})

	t.Run("applies include and exclude filters", func(t *testing.T) {
		t.Parallel()

		srv := newSiteServer(t, map[string]string{
			"/sitemap.xml": urlset,
		})

		filter := &concierge.URLFilter{
			Include: []*regexp.Regexp{regexp.MustCompile(`/laws/`)},
			Exclude: []*regexp.Regexp{regexp.MustCompile(`fouls`)},
		}
		svc := conciergehttp.NewSitemapService(srv.Client())
		urls, err := svc.DiscoverURLs(context.Background(), srv.URL, filter)

		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/laws/offside"}, urls)
	})

	t.Run("returns empty slice when no sitemap exists", func(t *testing.T) {
		t.Parallel()

		srv := newSiteServer(t, map[string]string{})

		svc := conciergehttp.NewSitemapService(srv.Client())
		urls, err := svc.DiscoverURLs(context.Background(), srv.URL, nil)

		require.NoError(t, err)
		assert.NotNil(t, urls)
		assert.Empty(t, urls)
	})

	t.Run("returns error for canceled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		svc := conciergehttp.NewSitemapService(nil)
		_, err := svc.DiscoverURLs(ctx, "https://example.com", nil)

		require.ErrorIs(t, err, context.Canceled)
	})
}

// newSiteServer serves fixed bodies by path. {{BASE}} is replaced with the
// server URL.
func newSiteServer(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(strings.ReplaceAll(body, "{{BASE}}", srv.URL)))
	}))
	t.Cleanup(srv.Close)
	return srv
}
