package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEngineConfig(t *testing.T) {
	t.Setenv("CHESSREVIEW_ENGINE_PATH", "/usr/games/stockfish")
	t.Setenv("CHESSREVIEW_ENGINE_EVAL_TIMEOUT", "750ms")
	t.Setenv("CHESSREVIEW_ENGINE_THREADS", "4")

	cfg := LoadEngineConfig()

	assert.Equal(t, "/usr/games/stockfish", cfg.EnginePath)
	assert.Equal(t, 750*time.Millisecond, cfg.EvalTimeout)
	assert.Equal(t, DefaultStartupTimeout, cfg.StartupTimeout)
	assert.Equal(t, 4, cfg.Threads)
	assert.Equal(t, 16, cfg.HashMB)
}

func TestGetEnvIntFallback(t *testing.T) {
	t.Setenv("CHESSREVIEW_TEST_INT", "")
	assert.Equal(t, 7, getEnvInt("CHESSREVIEW_TEST_INT", 7))

	t.Setenv("CHESSREVIEW_TEST_INT", "12")
	assert.Equal(t, 12, getEnvInt("CHESSREVIEW_TEST_INT", 7))
}

func TestGetEnvDurationFallback(t *testing.T) {
	t.Setenv("CHESSREVIEW_TEST_DURATION", "")
	assert.Equal(t, time.Second, getEnvDuration("CHESSREVIEW_TEST_DURATION", time.Second))

	t.Setenv("CHESSREVIEW_TEST_DURATION", "2m")
	assert.Equal(t, 2*time.Minute, getEnvDuration("CHESSREVIEW_TEST_DURATION", time.Second))
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		value   string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"Warn", slog.LevelWarn, false},
		{"ERROR", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := parseLogLevel(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	content := "CHESSREVIEW_TEST_DOTENV=from-file\nCHESSREVIEW_TEST_PRESET=from-file\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))

	t.Setenv("CHESSREVIEW_TEST_PRESET", "from-env")
	t.Cleanup(func() { os.Unsetenv("CHESSREVIEW_TEST_DOTENV") })

	LoadDotEnv()

	assert.Equal(t, "from-file", os.Getenv("CHESSREVIEW_TEST_DOTENV"))
	assert.Equal(t, "from-env", os.Getenv("CHESSREVIEW_TEST_PRESET"))
}

func TestLoadDotEnvWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	assert.NotPanics(t, LoadDotEnv)
}
