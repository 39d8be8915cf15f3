package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/park285/chess-explainer/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STOCKFISH_PATH", "/usr/bin/stockfish")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "/usr/bin/stockfish", cfg.StockfishPath)
	assert.Equal(t, 0, cfg.EngineDepth)
	assert.Equal(t, 2000, cfg.EngineMoveTimeMillis)
	assert.Equal(t, 5000, cfg.EngineTimeoutMillis)
	assert.Equal(t, 1, cfg.EngineThreads)
	assert.Equal(t, 64, cfg.EngineHashMB)
	assert.Equal(t, 50, cfg.InaccuracyCP)
	assert.Equal(t, 100, cfg.MistakeCP)
	assert.Equal(t, 300, cfg.BlunderCP)
	assert.Equal(t, "gpt-4o-mini", cfg.ExplainModel)
	assert.False(t, cfg.ExplainConfigured())
}

func TestLoad_MissingEnginePath(t *testing.T) {
	t.Setenv("STOCKFISH_PATH", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STOCKFISH_PATH")
}

func TestLoad_DepthReplacesMovetime(t *testing.T) {
	t.Setenv("STOCKFISH_PATH", "/usr/bin/stockfish")
	t.Setenv("ENGINE_DEPTH", "14")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 14, cfg.EngineDepth)
	assert.Equal(t, 0, cfg.EngineMoveTimeMillis)
}

func TestLoad_DepthWinsOverExplicitMovetime(t *testing.T) {
	t.Setenv("STOCKFISH_PATH", "/usr/bin/stockfish")
	t.Setenv("ENGINE_DEPTH", "12")
	t.Setenv("ENGINE_MOVETIME_MS", "3000")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.EngineDepth)
	assert.Equal(t, 0, cfg.EngineMoveTimeMillis)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STOCKFISH_PATH", "/opt/sf/stockfish")
	t.Setenv("ENGINE_MOVETIME_MS", "1500")
	t.Setenv("ENGINE_THREADS", "4")
	t.Setenv("ENGINE_HASH_MB", "256")
	t.Setenv("CLASSIFY_INACCURACY_CP", "40")
	t.Setenv("CLASSIFY_MISTAKE_CP", "90")
	t.Setenv("CLASSIFY_BLUNDER_CP", "250")
	t.Setenv("EXPLAIN_API_URL", "https://api.example.com/v1")
	t.Setenv("EXPLAIN_MODEL", "gpt-4o")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 1500, cfg.EngineMoveTimeMillis)
	assert.Equal(t, 4, cfg.EngineThreads)
	assert.Equal(t, 256, cfg.EngineHashMB)
	assert.Equal(t, 40, cfg.InaccuracyCP)
	assert.Equal(t, 90, cfg.MistakeCP)
	assert.Equal(t, 250, cfg.BlunderCP)
	assert.Equal(t, "gpt-4o", cfg.ExplainModel)
	assert.True(t, cfg.ExplainConfigured())
}

func TestLoad_InvalidNumbersKeepDefaults(t *testing.T) {
	t.Setenv("STOCKFISH_PATH", "/usr/bin/stockfish")
	t.Setenv("ENGINE_MOVETIME_MS", "soon")
	t.Setenv("ENGINE_THREADS", "-2")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 2000, cfg.EngineMoveTimeMillis)
	assert.Equal(t, 1, cfg.EngineThreads)
}

func TestLoad_RejectsUnorderedThresholds(t *testing.T) {
	t.Setenv("STOCKFISH_PATH", "/usr/bin/stockfish")
	t.Setenv("CLASSIFY_INACCURACY_CP", "200")
	t.Setenv("CLASSIFY_MISTAKE_CP", "100")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ascending")
}
