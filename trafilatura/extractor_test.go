package trafilatura_test

import (
	"testing"

	"github.com/bkayser/concierge"
	"github.com/bkayser/concierge/trafilatura"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lawPage = `<!DOCTYPE html>
<html>
<head>
<title>Law 11 - Offside | IFAB</title>
<meta property="og:title" content="Law 11 - Offside">
</head>
<body>
<nav class="site-nav">
<ul>
<li><a href="/laws/latest/the-field-of-play/">Law 1</a></li>
<li><a href="/laws/latest/the-ball/">Law 2</a></li>
</ul>
</nav>
<main>
<article>
<h1>Offside</h1>
<h2>1. Offside position</h2>
<p>It is not an offence to be in an offside position. A player is in an offside
position if any part of the head, body or feet is in the opponents' half,
excluding the halfway line.</p>
<h2>2. Offside offence</h2>
<p>A player in an offside position at the moment the ball is played or touched
by a team-mate is only penalised on becoming involved in active play.</p>
</article>
</main>
<footer class="site-footer"><p>Copyright The IFAB 2024</p></footer>
</body>
</html>`

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts article content and title", func(t *testing.T) {
		t.Parallel()

		ext := trafilatura.NewExtractor()
		result, err := ext.Extract(lawPage, "https://www.theifab.com/laws/latest/offside/")

		require.NoError(t, err)
		assert.NotEmpty(t, result.Title)
		assert.Contains(t, result.ContentHTML, "not an offence to be in an offside position")
		assert.Contains(t, result.Text, "active play")
	})

	t.Run("removes navigation and footer boilerplate", func(t *testing.T) {
		t.Parallel()

		ext := trafilatura.NewExtractor()
		result, err := ext.Extract(lawPage, "")

		require.NoError(t, err)
		assert.NotContains(t, result.ContentHTML, "site-nav")
		assert.NotContains(t, result.ContentHTML, "Copyright The IFAB")
	})

	t.Run("handles minimal valid HTML", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><p>Referees must check in 30 minutes before kickoff.</p></body></html>`

		ext := trafilatura.NewExtractor()
		result, err := ext.Extract(html, "https://example.com/")

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "30 minutes before kickoff")
	})

	t.Run("returns error for empty input", func(t *testing.T) {
		t.Parallel()

		ext := trafilatura.NewExtractor()
		_, err := ext.Extract("  ", "https://example.com/")

		assert.Equal(t, concierge.EINVALID, concierge.ErrorCode(err))
	})
}
