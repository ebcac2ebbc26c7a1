package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/USSTM/facility-portal/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestInit_WritesRotatedFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	file := filepath.Join(t.TempDir(), "nested", "portal.log")
	require.NoError(t, Init(&config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Filename: file,
		MaxSize:  1,
	}))

	Info("guard ready", "portal", "admin")
	slog.Debug("below threshold")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"guard ready"`)
	assert.Contains(t, string(data), `"portal":"admin"`)
	assert.NotContains(t, string(data), "below threshold")
}
