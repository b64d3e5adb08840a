package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narwhalmedia/catalogd/pkg/interfaces"
)

func TestConfig_BuildWritesToRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalogd.log")
	cfg := DefaultConfig()
	cfg.OutputPath = path

	l, err := cfg.Build()
	require.NoError(t, err)

	l.Info("batch finished", interfaces.String("batch_id", "b-1"), interfaces.Int("matched", 3))
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"batch finished"`)
	assert.Contains(t, string(data), `"matched":3`)
}

func TestConfig_BuildFallsBackToInfoOnBadLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "loud"

	l, err := cfg.Build()
	require.NoError(t, err)
	assert.False(t, l.Zap().Core().Enabled(-1))
}

func TestBatchIDFromContext(t *testing.T) {
	ctx := WithBatchID(context.Background(), "abc")
	id, ok := BatchIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "abc", id)

	_, ok = BatchIDFromContext(context.Background())
	assert.False(t, ok)
}
