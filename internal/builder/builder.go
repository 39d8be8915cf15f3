package builder

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/park285/chess-explainer/internal/analyzer"
	"github.com/park285/chess-explainer/internal/assess"
	"github.com/park285/chess-explainer/internal/config"
	"github.com/park285/chess-explainer/internal/engine"
	"github.com/park285/chess-explainer/internal/engine/uci"
	"github.com/park285/chess-explainer/internal/explain"
	"github.com/park285/chess-explainer/internal/prompt"
)

// Deps holds the wired pipeline components.
type Deps struct {
	Engine    *engine.Client
	Analyzer  *analyzer.Analyzer
	Explainer *explain.Client
	Catalog   *prompt.Catalog
}

func New(cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if strings.TrimSpace(cfg.StockfishPath) == "" {
		return nil, fmt.Errorf("STOCKFISH_PATH is required for the engine client")
	}
	if _, err := os.Stat(cfg.StockfishPath); err != nil {
		return nil, fmt.Errorf("stockfish binary check: %w", err)
	}

	engineClient, err := engine.NewClient(engine.Config{
		BinaryPath: cfg.StockfishPath,
		Timeout:    time.Duration(cfg.EngineTimeoutMillis) * time.Millisecond,
		Threads:    cfg.EngineThreads,
		HashMB:     cfg.EngineHashMB,
		PoolSize:   cfg.EnginePoolSize,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init engine client: %w", err)
	}

	anl, err := analyzer.New(engineClient, analyzer.Config{
		Limits: uci.Limits{
			Depth:          cfg.EngineDepth,
			MoveTimeMillis: cfg.EngineMoveTimeMillis,
		},
		Thresholds: assess.Thresholds{
			InaccuracyCP: cfg.InaccuracyCP,
			MistakeCP:    cfg.MistakeCP,
			BlunderCP:    cfg.BlunderCP,
		},
	}, logger)
	if err != nil {
		_ = engineClient.Close()
		return nil, fmt.Errorf("init analyzer: %w", err)
	}

	catalog, err := prompt.New(cfg.PromptTemplateDir)
	if err != nil {
		_ = engineClient.Close()
		return nil, fmt.Errorf("init prompt catalog: %w", err)
	}

	var explainer *explain.Client
	if cfg.ExplainConfigured() {
		explainer = explain.NewClient(
			cfg.ExplainAPIURL,
			cfg.ExplainAPIKey,
			cfg.ExplainModel,
			catalog,
			logger,
			explain.WithTimeout(time.Duration(cfg.ExplainTimeoutMillis)*time.Millisecond),
		)
	}

	return &Deps{
		Engine:    engineClient,
		Analyzer:  anl,
		Explainer: explainer,
		Catalog:   catalog,
	}, nil
}

// Close releases the engine pool.
func (d *Deps) Close() error {
	if d == nil || d.Engine == nil {
		return nil
	}
	return d.Engine.Close()
}
