//go:build integration

package ollama_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/bkayser/concierge/ollama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedder_Integration(t *testing.T) {
	t.Parallel()

	serverURL := os.Getenv("OLLAMA_URL")
	if serverURL == "" {
		t.Skip("OLLAMA_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	emb, err := ollama.New(ollama.Config{ServerURL: serverURL})
	require.NoError(t, err)

	vecs, err := emb.EmbedDocuments(ctx, []string{"Law 11 covers offside.", "Fees are paid monthly."})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.NotEmpty(t, vecs[0])

	q, err := emb.EmbedQuery(ctx, "offside")
	require.NoError(t, err)
	assert.Len(t, q, len(vecs[0]))
}
