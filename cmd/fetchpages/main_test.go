package main_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	main "github.com/bkayser/concierge/cmd/fetchpages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMain() *main.Main {
	m := main.NewMain()
	m.DotenvPath = ""
	return m
}

const refereePage = `<html><head><title>Referee Fees</title></head><body>
<nav>Home | About</nav>
<main>
<h2>Fees</h2>
<ul><li>U10: $25</li><li>U12: $30</li></ul>
<img src="logo.png">
</main>
<footer>Copyright</footer>
</body></html>`

func TestMain_Run(t *testing.T) {
	t.Parallel()

	t.Run("help returns nil", func(t *testing.T) {
		t.Parallel()

		var stdout, stderr bytes.Buffer
		err := newMain().Run(context.Background(), []string{"--help"}, &stdout, &stderr)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "fetchpages")
		assert.Contains(t, stdout.String(), "--extractor")
	})

	t.Run("no arguments returns error", func(t *testing.T) {
		t.Parallel()

		var stdout, stderr bytes.Buffer
		err := newMain().Run(context.Background(), nil, &stdout, &stderr)

		assert.Error(t, err)
	})

	t.Run("rejects unknown extractor", func(t *testing.T) {
		t.Parallel()

		var stdout, stderr bytes.Buffer
		err := newMain().Run(context.Background(), []string{"https://example.com", "--extractor", "lynx"}, &stdout, &stderr)

		assert.Error(t, err)
	})

	t.Run("fetches page and writes markdown", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(refereePage))
		}))
		defer srv.Close()
		out := t.TempDir()

		var stdout, stderr bytes.Buffer
		err := newMain().Run(context.Background(), []string{srv.URL + "/fees/2024", "--out", out}, &stdout, &stderr)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Done. 1/1 URLs processed successfully.")

		files, err := os.ReadDir(out)
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.True(t, strings.HasSuffix(files[0].Name(), "_fees_2024.md"))

		data, err := os.ReadFile(filepath.Join(out, files[0].Name()))
		require.NoError(t, err)
		md := string(data)
		assert.True(t, strings.HasPrefix(md, "---\nsource: "+srv.URL+"/fees/2024\ntitle: Referee Fees\n---\n\n# Referee Fees\n\n"))
		assert.Contains(t, md, "## Fees")
		assert.Contains(t, md, "- U10: $25")
		assert.NotContains(t, md, "Copyright")
		assert.NotContains(t, md, "logo.png")
	})

	t.Run("reads URL file with output names", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(refereePage))
		}))
		defer srv.Close()
		dir := t.TempDir()
		list := filepath.Join(dir, "_urls.txt")
		require.NoError(t, os.WriteFile(list, []byte("# curated\n"+srv.URL+"/a fees\n"), 0o644))
		out := filepath.Join(dir, "out")

		var stdout, stderr bytes.Buffer
		err := newMain().Run(context.Background(), []string{"--file", list, "--out", out}, &stdout, &stderr)

		require.NoError(t, err)
		_, err = os.Stat(filepath.Join(out, "fees.md"))
		assert.NoError(t, err)
	})

	t.Run("returns error for missing URL file", func(t *testing.T) {
		t.Parallel()

		var stdout, stderr bytes.Buffer
		err := newMain().Run(context.Background(), []string{"--file", filepath.Join(t.TempDir(), "nope.txt")}, &stdout, &stderr)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "file not found")
	})

	t.Run("reports failed URLs and continues", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/gone" {
				http.NotFound(w, r)
				return
			}
			_, _ = w.Write([]byte(refereePage))
		}))
		defer srv.Close()

		var stdout, stderr bytes.Buffer
		err := newMain().Run(context.Background(), []string{srv.URL + "/gone", srv.URL + "/ok", "--out", t.TempDir()}, &stdout, &stderr)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Done. 1/2 URLs processed successfully.")
		assert.Contains(t, stderr.String(), "HTTP 404")
	})
}
