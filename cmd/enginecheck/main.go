package main

import (
	"context"
	"log"
	"time"

	appcfg "github.com/park285/chess-explainer/internal/config"
	"github.com/park285/chess-explainer/internal/engine"
	"github.com/park285/chess-explainer/internal/engine/uci"
	"github.com/park285/chess-explainer/internal/explain"
	"github.com/park285/chess-explainer/internal/prompt"
	"go.uber.org/zap"
)

// Smoke check for the two external collaborators: the UCI engine binary and,
// when configured, the explanation API endpoint.
func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	client, err := engine.NewClient(engine.Config{
		BinaryPath: cfg.StockfishPath,
		Timeout:    8 * time.Second,
		Threads:    cfg.EngineThreads,
		HashMB:     cfg.EngineHashMB,
	}, zap.NewNop())
	if err != nil {
		log.Fatalf("engine check failed: %v", err)
	}
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	verdict, err := client.Evaluate(ctx, "startpos", uci.Limits{Depth: 8})
	if err != nil {
		log.Fatalf("engine probe search failed: %v", err)
	}
	log.Printf("engine ok: bestmove=%s depth=%d score_cp=%d in %s",
		verdict.BestMove, verdict.Depth, verdict.ScoreCP, verdict.Duration)

	if !cfg.ExplainConfigured() {
		log.Println("EXPLAIN_API_URL not set; skipping explanation API check")
		return
	}

	catalog, err := prompt.New(cfg.PromptTemplateDir)
	if err != nil {
		log.Fatalf("prompt catalog error: %v", err)
	}
	explainer := explain.NewClient(cfg.ExplainAPIURL, cfg.ExplainAPIKey, cfg.ExplainModel, catalog, zap.NewNop())
	if err := explainer.Ping(ctx); err != nil {
		log.Printf("explanation API check failed: %v", err)
		return
	}
	log.Printf("explanation API ok: %s", cfg.ExplainAPIURL)
}
