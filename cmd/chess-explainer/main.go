package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/park285/chess-explainer/internal/builder"
	appcfg "github.com/park285/chess-explainer/internal/config"
	"github.com/park285/chess-explainer/internal/engine"
	"github.com/park285/chess-explainer/internal/obslog"
	"github.com/park285/chess-explainer/internal/position"
	"github.com/park285/chess-explainer/internal/presenter"
	"github.com/park285/chess-explainer/pkg/explaindto"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 || isHelpArg(args[0]) {
		printUsage()
		return
	}

	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	deps, err := builder.New(cfg, logger)
	if err != nil {
		logger.Fatal("pipeline init failed", zap.Error(err))
	}
	defer func() { _ = deps.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := analyze(ctx, deps, args)
	if err != nil {
		de := friendlyError(err)
		fmt.Fprintf(os.Stderr, "error: %s\n", de.Error())
		if de.Retryable {
			fmt.Fprintln(os.Stderr, "this failure may be temporary; try again")
		}
		os.Exit(1)
	}

	attachExplanation(ctx, deps, report)

	fmt.Println(presenter.NewFormatter().Report(report))
}

// analyze dispatches on the argument shape: "FEN move" analyzes one move in
// a given position; a bare move list replays it from the starting position
// and analyzes the final move.
func analyze(ctx context.Context, deps *builder.Deps, args []string) (*explaindto.Report, error) {
	if len(args) >= 2 && isFEN(args[0]) {
		return deps.Analyzer.AnalyzeMove(ctx, args[0], args[1])
	}
	if isFEN(args[0]) {
		return nil, fmt.Errorf("%w: a move to analyze is required after the FEN", position.ErrIllegalMove)
	}
	return deps.Analyzer.AnalyzeLine(ctx, args)
}

func attachExplanation(ctx context.Context, deps *builder.Deps, report *explaindto.Report) {
	if deps.Explainer == nil {
		if note, err := deps.Catalog.Render("cli.no_explainer", nil); err == nil {
			fmt.Fprintln(os.Stderr, note)
		}
		return
	}
	text, err := deps.Explainer.Explain(ctx, report.Summary)
	if err != nil {
		obslog.L().Warn("explanation unavailable", zap.Error(err))
		if note, renderErr := deps.Catalog.Render("cli.explainer_failed", nil); renderErr == nil {
			fmt.Fprintln(os.Stderr, note)
		}
		return
	}
	report.Explanation = text
}

func isFEN(text string) bool {
	_, err := position.Parse(text)
	return err == nil && text != "" && text != "startpos"
}

func isHelpArg(arg string) bool {
	switch arg {
	case "--help", "-h", "help":
		return true
	default:
		return false
	}
}

// friendlyError maps pipeline sentinels onto the external error contract.
func friendlyError(err error) explaindto.DomainError {
	switch {
	case errors.Is(err, position.ErrInvalidPosition):
		return explaindto.DomainError{Code: "invalid_position", Message: fmt.Sprintf("invalid position: %v", err)}
	case errors.Is(err, position.ErrIllegalMove):
		return explaindto.DomainError{Code: "illegal_move", Message: fmt.Sprintf("illegal move: %v", err)}
	case errors.Is(err, engine.ErrEngineUnavailable):
		return explaindto.DomainError{Code: "engine_unavailable", Message: fmt.Sprintf("engine unavailable, check STOCKFISH_PATH: %v", err), Retryable: true}
	case errors.Is(err, engine.ErrEngineProtocol):
		return explaindto.DomainError{Code: "engine_protocol", Message: fmt.Sprintf("engine answered with an unexpected response: %v", err)}
	default:
		return explaindto.DomainError{Code: "internal", Message: err.Error()}
	}
}

func printUsage() {
	fmt.Print(`chess-explainer - evaluate a chess move and explain it

Usage:
  chess-explainer "<FEN>" <move>    analyze a move played in the given position
  chess-explainer <move> [move...]  replay moves from the start and analyze the last one
  chess-explainer --help            show this help

Examples:
  chess-explainer "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1" e4
  chess-explainer e4 e5 Nf3

Environment:
  STOCKFISH_PATH     path to the engine binary (required)
  ENGINE_DEPTH       fixed search depth (overrides movetime)
  ENGINE_MOVETIME_MS search time per position in ms (default 2000)
  ENGINE_TIMEOUT_MS  hard per-evaluation timeout in ms (default 5000)
  EXPLAIN_API_URL    OpenAI-compatible endpoint for prose explanations (optional)
`)
}
