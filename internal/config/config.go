package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	StockfishPath string

	EngineDepth          int
	EngineMoveTimeMillis int
	EngineTimeoutMillis  int
	EngineThreads        int
	EngineHashMB         int
	EnginePoolSize       int

	InaccuracyCP int
	MistakeCP    int
	BlunderCP    int

	ExplainAPIURL        string
	ExplainAPIKey        string
	ExplainModel         string
	ExplainTimeoutMillis int

	PromptTemplateDir string
}

// Load reads configuration from a .env file (if present) and environment
// variables, applying documented defaults when values are missing.
func Load() (*AppConfig, error) {
	// Ignore error so the tool still starts when .env is absent.
	_ = godotenv.Load()

	cfg := &AppConfig{
		EngineMoveTimeMillis: 2000,
		EngineTimeoutMillis:  5000,
		EngineThreads:        1,
		EngineHashMB:         64,
		InaccuracyCP:         50,
		MistakeCP:            100,
		BlunderCP:            300,
		ExplainModel:         "gpt-4o-mini",
		ExplainTimeoutMillis: 15000,
	}

	cfg.StockfishPath = strings.TrimSpace(os.Getenv("STOCKFISH_PATH"))

	if v := strings.TrimSpace(os.Getenv("ENGINE_MOVETIME_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.EngineMoveTimeMillis = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("ENGINE_DEPTH")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.EngineDepth = n
			// An explicit depth replaces any movetime budget, including one set
			// through ENGINE_MOVETIME_MS.
			cfg.EngineMoveTimeMillis = 0
		}
	}
	if v := strings.TrimSpace(os.Getenv("ENGINE_TIMEOUT_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.EngineTimeoutMillis = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("ENGINE_THREADS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.EngineThreads = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("ENGINE_HASH_MB")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.EngineHashMB = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("ENGINE_POOL_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.EnginePoolSize = n
		}
	}

	if v := strings.TrimSpace(os.Getenv("CLASSIFY_INACCURACY_CP")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.InaccuracyCP = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CLASSIFY_MISTAKE_CP")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MistakeCP = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CLASSIFY_BLUNDER_CP")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BlunderCP = n
		}
	}

	cfg.ExplainAPIURL = strings.TrimSpace(os.Getenv("EXPLAIN_API_URL"))
	cfg.ExplainAPIKey = strings.TrimSpace(os.Getenv("EXPLAIN_API_KEY"))
	if v := strings.TrimSpace(os.Getenv("EXPLAIN_MODEL")); v != "" {
		cfg.ExplainModel = v
	}
	if v := strings.TrimSpace(os.Getenv("EXPLAIN_TIMEOUT_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ExplainTimeoutMillis = n
		}
	}

	cfg.PromptTemplateDir = strings.TrimSpace(os.Getenv("PROMPT_TEMPLATE_DIR"))

	if cfg.StockfishPath == "" {
		return nil, errors.New("STOCKFISH_PATH is required")
	}
	if cfg.InaccuracyCP >= cfg.MistakeCP || cfg.MistakeCP >= cfg.BlunderCP {
		return nil, errors.New("classification thresholds must be strictly ascending")
	}

	return cfg, nil
}

// ExplainConfigured reports whether the explanation-service boundary is set
// up. The pipeline works without it; the CLI then prints engine output only.
func (c *AppConfig) ExplainConfigured() bool {
	return c.ExplainAPIURL != ""
}
