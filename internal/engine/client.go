package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/park285/chess-explainer/internal/engine/uci"
	"go.uber.org/zap"
)

// MateScoreCP is the sentinel magnitude a forced mate is mapped to, so that
// downstream centipawn arithmetic never has to special-case mate scores.
const MateScoreCP = 100000

const defaultTimeout = 5 * time.Second

var (
	// ErrEngineUnavailable covers a missing binary, a dead process and search
	// timeouts. Callers may retry with backoff; the client itself does not.
	ErrEngineUnavailable = errors.New("chess engine unavailable")
	// ErrEngineProtocol covers responses the UCI parser cannot make sense of.
	// It indicates an engine contract mismatch and is not retried.
	ErrEngineProtocol = errors.New("chess engine protocol error")
)

// Verdict is the engine's answer for one position. ScoreCP is always from the
// perspective of the side to move in the evaluated position: positive means
// the mover stands better. A forced mate keeps its distance in MateIn and
// carries ±MateScoreCP in ScoreCP.
type Verdict struct {
	ScoreCP  int
	MateIn   int
	Depth    int
	PV       []string
	BestMove string
	Duration time.Duration
}

type Config struct {
	BinaryPath string
	Timeout    time.Duration
	Threads    int
	HashMB     int
	PoolSize   int
}

// Client is a synchronous request/response front for a pool of UCI engine
// processes. One Evaluate call uses exactly one pooled session.
type Client struct {
	pool    *uci.Pool
	timeout time.Duration
	logger  *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pool, err := uci.NewPool(uci.PoolConfig{
		BinaryPath: cfg.BinaryPath,
		Capacity:   cfg.PoolSize,
		Options: uci.Options{
			Threads: cfg.Threads,
			HashMB:  cfg.HashMB,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{pool: pool, timeout: timeout, logger: logger}, nil
}

// Evaluate analyses one position within the configured timeout and returns a
// normalized Verdict.
func (c *Client) Evaluate(ctx context.Context, fen string, limits uci.Limits) (Verdict, error) {
	start := time.Now()

	evalCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	session, err := c.pool.Acquire(evalCtx)
	if err != nil {
		return Verdict{}, c.mapError("acquire session", fen, err)
	}
	var releaseErr error
	defer func() {
		c.pool.Release(session, releaseErr)
	}()

	if err := session.NewGame(evalCtx); err != nil {
		releaseErr = err
		return Verdict{}, c.mapError("new game", fen, err)
	}

	res, err := session.Search(evalCtx, fen, limits)
	if err != nil {
		releaseErr = err
		return Verdict{}, c.mapError("search", fen, err)
	}

	return normalizeResult(res, time.Since(start)), nil
}

func (c *Client) Close() error {
	if c.pool == nil {
		return nil
	}
	return c.pool.Close()
}

func (c *Client) mapError(stage, fen string, err error) error {
	if errors.Is(err, uci.ErrMalformedResponse) {
		c.logger.Error("engine protocol mismatch",
			zap.String("stage", stage),
			zap.String("fen", fen),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %s: %v", ErrEngineProtocol, stage, err)
	}
	c.logger.Warn("engine unavailable",
		zap.String("stage", stage),
		zap.String("fen", fen),
		zap.Error(err),
	)
	return fmt.Errorf("%w: %s: %v", ErrEngineUnavailable, stage, err)
}

func normalizeResult(res uci.Result, dur time.Duration) Verdict {
	v := Verdict{
		ScoreCP:  res.ScoreCP,
		MateIn:   res.MateIn,
		Depth:    res.Depth,
		PV:       append([]string(nil), res.PV...),
		BestMove: res.BestMove,
		Duration: dur,
	}
	if res.Checkmated {
		// The side to move has already been mated; the game is over.
		v.ScoreCP = -MateScoreCP
	} else if res.MateIn > 0 {
		v.ScoreCP = MateScoreCP
	} else if res.MateIn < 0 {
		v.ScoreCP = -MateScoreCP
	} else if v.ScoreCP > MateScoreCP {
		v.ScoreCP = MateScoreCP
	} else if v.ScoreCP < -MateScoreCP {
		v.ScoreCP = -MateScoreCP
	}
	return v
}
