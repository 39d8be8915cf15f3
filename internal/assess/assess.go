package assess

import (
	"fmt"

	"github.com/park285/chess-explainer/internal/engine"
)

// Class labels the quality of a single move. A sound move is an explicit
// category, never an empty value, so consumers can tell "evaluated, sound"
// from "not evaluated".
type Class string

const (
	ClassGood       Class = "good"
	ClassInaccuracy Class = "inaccuracy"
	ClassMistake    Class = "mistake"
	ClassBlunder    Class = "blunder"
)

// Thresholds are the centipawn-loss boundaries between classes, checked in
// ascending order. They are injectable configuration, not constants.
type Thresholds struct {
	InaccuracyCP int
	MistakeCP    int
	BlunderCP    int
}

func DefaultThresholds() Thresholds {
	return Thresholds{InaccuracyCP: 50, MistakeCP: 100, BlunderCP: 300}
}

func (t Thresholds) Validate() error {
	if t.InaccuracyCP <= 0 || t.MistakeCP <= 0 || t.BlunderCP <= 0 {
		return fmt.Errorf("thresholds must be positive: %+v", t)
	}
	if t.InaccuracyCP >= t.MistakeCP || t.MistakeCP >= t.BlunderCP {
		return fmt.Errorf("thresholds must be strictly ascending: %+v", t)
	}
	return nil
}

// Classify maps a centipawn loss to its class, first match wins.
func (t Thresholds) Classify(lossCP int) Class {
	switch {
	case lossCP < t.InaccuracyCP:
		return ClassGood
	case lossCP < t.MistakeCP:
		return ClassInaccuracy
	case lossCP < t.BlunderCP:
		return ClassMistake
	default:
		return ClassBlunder
	}
}

// Assessment combines both evaluations, re-expressed in the mover's
// perspective, with the resulting loss and class.
type Assessment struct {
	EvalBeforeCP  int
	EvalAfterCP   int
	CentipawnLoss int
	Class         Class
}

// CentipawnLoss computes the evaluation drop attributable to the played move.
// Both arguments must already be from the perspective of the side that made
// the move. A move at least as good as the engine's best yields zero, never a
// negative gain. Inputs are clamped to the mate sentinel range so positions
// that are already decided cannot produce runaway magnitudes.
func CentipawnLoss(evalBeforeCP, evalAfterCP int) int {
	before := clampCP(evalBeforeCP)
	after := clampCP(evalAfterCP)
	loss := before - after
	if loss < 0 {
		return 0
	}
	return loss
}

// Evaluate is the full comparator + classifier step as one pure function.
func Evaluate(evalBeforeCP, evalAfterCP int, t Thresholds) Assessment {
	loss := CentipawnLoss(evalBeforeCP, evalAfterCP)
	return Assessment{
		EvalBeforeCP:  clampCP(evalBeforeCP),
		EvalAfterCP:   clampCP(evalAfterCP),
		CentipawnLoss: loss,
		Class:         t.Classify(loss),
	}
}

func clampCP(v int) int {
	if v > engine.MateScoreCP {
		return engine.MateScoreCP
	}
	if v < -engine.MateScoreCP {
		return -engine.MateScoreCP
	}
	return v
}
