package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWithoutPathIsNop(t *testing.T) {
	l, err := New("", true)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.ErrorLevel))
}

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rfind.log")
	l, err := New(path, false)
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("search", zap.Int("matches", 3))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"search"`)
	assert.Contains(t, string(data), `"matches":3`)
	assert.NotContains(t, string(data), "hidden")
}

func TestDebugLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rfind.log")
	l, err := New(path, true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zap.DebugLevel))
}

func TestContextRoundTrip(t *testing.T) {
	assert.NotNil(t, L(context.Background()))

	l := zap.NewExample()
	ctx := NewContext(context.Background(), l)
	assert.Same(t, l, L(ctx))
}
