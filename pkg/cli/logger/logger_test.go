package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestInitWritesToFile(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() {
		Close()
		slog.SetDefault(previous)
	})

	dir := filepath.Join(t.TempDir(), "logs")
	log, err := Init(dir, "debug")
	require.NoError(t, err)

	log.Debug("job list refreshed", "count", 3)
	path := Path()
	require.NotEmpty(t, path)
	assert.Equal(t, dir, filepath.Dir(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"job list refreshed"`)
	assert.Contains(t, string(data), `"count":3`)

	Close()
	assert.Empty(t, Path())
}
