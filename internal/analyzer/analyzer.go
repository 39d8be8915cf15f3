package analyzer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/chess-explainer/internal/assess"
	"github.com/park285/chess-explainer/internal/engine"
	"github.com/park285/chess-explainer/internal/engine/uci"
	"github.com/park285/chess-explainer/internal/explain"
	"github.com/park285/chess-explainer/internal/position"
	"github.com/park285/chess-explainer/pkg/explaindto"
)

// Evaluator is the oracle boundary: one position in, one verdict out.
type Evaluator interface {
	Evaluate(ctx context.Context, fen string, limits uci.Limits) (engine.Verdict, error)
}

type Config struct {
	Limits     uci.Limits
	Thresholds assess.Thresholds
}

// Analyzer runs the move-evaluation pipeline: parse, evaluate the baseline,
// apply the move, evaluate the result, compare, classify, summarise. It holds
// no mutable per-request state and is safe for concurrent use.
type Analyzer struct {
	engine Evaluator
	cfg    Config
	logger *zap.Logger
}

func New(evaluator Evaluator, cfg Config, logger *zap.Logger) (*Analyzer, error) {
	if evaluator == nil {
		return nil, fmt.Errorf("engine evaluator is required")
	}
	if cfg.Limits.Depth <= 0 && cfg.Limits.MoveTimeMillis <= 0 {
		return nil, fmt.Errorf("search limits required")
	}
	if err := cfg.Thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("threshold validation failed: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{engine: evaluator, cfg: cfg, logger: logger}, nil
}

// AnalyzeMove evaluates a single move played from the given position. Both
// engine verdicts are re-expressed in the mover's perspective before the loss
// is computed; this is the only place the sign flip happens.
func (a *Analyzer) AnalyzeMove(ctx context.Context, fenText, moveText string) (*explaindto.Report, error) {
	requestID := uuid.NewString()

	pos, err := position.Parse(fenText)
	if err != nil {
		return nil, err
	}
	posAfter, move, err := pos.ApplyMove(moveText)
	if err != nil {
		return nil, err
	}

	verdictBefore, err := a.engine.Evaluate(ctx, pos.FEN(), a.cfg.Limits)
	if err != nil {
		return nil, err
	}
	verdictAfter, err := a.engine.Evaluate(ctx, posAfter.FEN(), a.cfg.Limits)
	if err != nil {
		return nil, err
	}

	// verdictBefore speaks for the mover already; verdictAfter speaks for the
	// opponent, so its score is negated.
	evalBefore := verdictBefore.ScoreCP
	evalAfterMover := -verdictAfter.ScoreCP

	assessment := assess.Evaluate(evalBefore, evalAfterMover, a.cfg.Thresholds)
	summary := explain.BuildSummary(pos, move, assessment, verdictBefore, verdictAfter)

	a.logger.Info("move analyzed",
		zap.String("request_id", requestID),
		zap.String("fen", summary.FEN),
		zap.String("move", summary.MoveSAN),
		zap.Int("eval_before_cp", summary.EvalBeforeCP),
		zap.Int("eval_after_cp", summary.EvalAfterCP),
		zap.Int("centipawn_loss", summary.CentipawnLoss),
		zap.String("classification", summary.Classification),
		zap.Duration("engine_duration", verdictBefore.Duration+verdictAfter.Duration),
	)

	return &explaindto.Report{
		RequestID:      requestID,
		Summary:        summary,
		FENAfter:       posAfter.FEN(),
		EngineDepth:    verdictBefore.Depth,
		EngineDuration: verdictBefore.Duration + verdictAfter.Duration,
	}, nil
}

// AnalyzeLine replays a move sequence from the starting position and analyzes
// the final move of the sequence.
func (a *Analyzer) AnalyzeLine(ctx context.Context, moves []string) (*explaindto.Report, error) {
	if len(moves) == 0 {
		return nil, fmt.Errorf("%w: empty move sequence", position.ErrIllegalMove)
	}

	pos, err := position.Parse("startpos")
	if err != nil {
		return nil, err
	}
	for _, mv := range moves[:len(moves)-1] {
		pos, _, err = pos.ApplyMove(mv)
		if err != nil {
			return nil, err
		}
	}
	return a.AnalyzeMove(ctx, pos.FEN(), moves[len(moves)-1])
}
