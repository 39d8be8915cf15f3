package assess_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/park285/chess-explainer/internal/assess"
	"github.com/park285/chess-explainer/internal/engine"
)

func TestClassify_Boundaries(t *testing.T) {
	th := assess.DefaultThresholds()

	tests := []struct {
		name     string
		lossCP   int
		expected assess.Class
	}{
		{name: "zero loss", lossCP: 0, expected: assess.ClassGood},
		{name: "just under inaccuracy", lossCP: 49, expected: assess.ClassGood},
		{name: "at inaccuracy threshold", lossCP: 50, expected: assess.ClassInaccuracy},
		{name: "just under mistake", lossCP: 99, expected: assess.ClassInaccuracy},
		{name: "at mistake threshold", lossCP: 100, expected: assess.ClassMistake},
		{name: "just under blunder", lossCP: 299, expected: assess.ClassMistake},
		{name: "at blunder threshold", lossCP: 300, expected: assess.ClassBlunder},
		{name: "huge loss", lossCP: 2500, expected: assess.ClassBlunder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, th.Classify(tt.lossCP))
		})
	}
}

func TestClassify_Monotonic(t *testing.T) {
	th := assess.DefaultThresholds()
	rank := map[assess.Class]int{
		assess.ClassGood:       0,
		assess.ClassInaccuracy: 1,
		assess.ClassMistake:    2,
		assess.ClassBlunder:    3,
	}
	prev := rank[th.Classify(0)]
	for loss := 1; loss <= 400; loss++ {
		cur := rank[th.Classify(loss)]
		require.GreaterOrEqual(t, cur, prev, "class regressed at loss %d", loss)
		prev = cur
	}
}

func TestCentipawnLoss(t *testing.T) {
	tests := []struct {
		name     string
		before   int
		after    int
		expected int
	}{
		{name: "simple drop", before: 20, after: -80, expected: 100},
		{name: "no drop", before: 30, after: 28, expected: 2},
		{name: "improvement clamps to zero", before: 10, after: 150, expected: 0},
		{name: "equal evals", before: 0, after: 0, expected: 0},
		{name: "winning to losing", before: 400, after: -400, expected: 800},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, assess.CentipawnLoss(tt.before, tt.after))
		})
	}
}

func TestCentipawnLoss_MateSentinelClamp(t *testing.T) {
	// throwing away a forced mate is the largest expressible loss
	loss := assess.CentipawnLoss(engine.MateScoreCP, -engine.MateScoreCP)
	assert.Equal(t, 2*engine.MateScoreCP, loss)

	// values beyond the sentinel range are clamped before subtraction
	assert.Equal(t, 2*engine.MateScoreCP, assess.CentipawnLoss(engine.MateScoreCP*5, -engine.MateScoreCP*5))
}

func TestEvaluate(t *testing.T) {
	th := assess.DefaultThresholds()

	a := assess.Evaluate(20, -80, th)
	assert.Equal(t, 20, a.EvalBeforeCP)
	assert.Equal(t, -80, a.EvalAfterCP)
	assert.Equal(t, 100, a.CentipawnLoss)
	assert.Equal(t, assess.ClassMistake, a.Class)

	a = assess.Evaluate(20, 25, th)
	assert.Equal(t, 0, a.CentipawnLoss)
	assert.Equal(t, assess.ClassGood, a.Class)
}

func TestThresholds_Validate(t *testing.T) {
	require.NoError(t, assess.DefaultThresholds().Validate())

	bad := []assess.Thresholds{
		{InaccuracyCP: 0, MistakeCP: 100, BlunderCP: 300},
		{InaccuracyCP: -10, MistakeCP: 100, BlunderCP: 300},
		{InaccuracyCP: 100, MistakeCP: 100, BlunderCP: 300},
		{InaccuracyCP: 50, MistakeCP: 300, BlunderCP: 100},
	}
	for _, th := range bad {
		assert.Error(t, th.Validate(), "thresholds %+v", th)
	}
}
