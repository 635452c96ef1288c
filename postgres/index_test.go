package postgres

import (
	"context"
	"testing"

	"github.com/bkayser/concierge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_WithDefaults(t *testing.T) {
	t.Parallel()

	t.Run("fills defaults", func(t *testing.T) {
		t.Parallel()

		c, err := Config{ConnString: "postgres://localhost/concierge"}.withDefaults()

		require.NoError(t, err)
		assert.Equal(t, DefaultTableName, c.TableName)
		assert.Equal(t, DefaultDimension, c.Dimension)
	})

	t.Run("requires connection string", func(t *testing.T) {
		t.Parallel()

		_, err := Config{}.withDefaults()

		assert.Equal(t, concierge.EINVALID, concierge.ErrorCode(err))
	})

	t.Run("rejects unsafe table names", func(t *testing.T) {
		t.Parallel()

		for _, name := range []string{"chunks; DROP TABLE x", "Chunks", "1chunks", "a-b"} {
			_, err := Config{ConnString: "postgres://x", TableName: name}.withDefaults()
			assert.Equal(t, concierge.EINVALID, concierge.ErrorCode(err), name)
		}
	})
}

func TestOpen_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), Config{}, nil)

	assert.Equal(t, concierge.EINVALID, concierge.ErrorCode(err))
}

func TestChunkID(t *testing.T) {
	t.Parallel()

	a := &concierge.Chunk{Content: "Offside", Metadata: concierge.Metadata{Source: "s"}}
	b := &concierge.Chunk{Content: "Offside", Metadata: concierge.Metadata{Source: "s"}, Position: 1}

	assert.Equal(t, ChunkID(a), ChunkID(a))
	assert.NotEqual(t, ChunkID(a), ChunkID(b))
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "offside", sanitize("off\x00side"))
	assert.Equal(t, "fee", sanitize("f\xffee"))
	assert.Equal(t, "Ünïcode", sanitize("Ünïcode"))
}
