package engine

import (
	"testing"
	"time"

	"github.com/park285/chess-explainer/internal/engine/uci"
)

func TestNormalizeResult_Centipawns(t *testing.T) {
	res := uci.Result{ScoreCP: 42, Depth: 18, PV: []string{"e2e4", "e7e5"}, BestMove: "e2e4"}
	v := normalizeResult(res, 150*time.Millisecond)

	if v.ScoreCP != 42 || v.MateIn != 0 || v.Depth != 18 {
		t.Fatalf("unexpected verdict: %+v", v)
	}
	if v.BestMove != "e2e4" || len(v.PV) != 2 {
		t.Fatalf("pv/bestmove lost: %+v", v)
	}
	if v.Duration != 150*time.Millisecond {
		t.Fatalf("duration = %v", v.Duration)
	}
}

func TestNormalizeResult_MateSentinel(t *testing.T) {
	v := normalizeResult(uci.Result{MateIn: 3, ScoreCP: 0}, 0)
	if v.ScoreCP != MateScoreCP || v.MateIn != 3 {
		t.Fatalf("winning mate: %+v", v)
	}

	v = normalizeResult(uci.Result{MateIn: -2, ScoreCP: 0}, 0)
	if v.ScoreCP != -MateScoreCP || v.MateIn != -2 {
		t.Fatalf("losing mate: %+v", v)
	}
}

func TestNormalizeResult_CheckmatedTerminal(t *testing.T) {
	v := normalizeResult(uci.Result{Checkmated: true, Depth: 0}, 0)
	if v.ScoreCP != -MateScoreCP || v.MateIn != 0 {
		t.Fatalf("mated side: %+v", v)
	}
	if v.BestMove != "" || len(v.PV) != 0 {
		t.Fatalf("terminal position carries no continuation: %+v", v)
	}
}

func TestNormalizeResult_ClampsExtremeScores(t *testing.T) {
	if v := normalizeResult(uci.Result{ScoreCP: MateScoreCP * 2}, 0); v.ScoreCP != MateScoreCP {
		t.Fatalf("positive clamp: %+v", v)
	}
	if v := normalizeResult(uci.Result{ScoreCP: -MateScoreCP * 2}, 0); v.ScoreCP != -MateScoreCP {
		t.Fatalf("negative clamp: %+v", v)
	}
}

func TestNormalizeResult_CopiesPV(t *testing.T) {
	pv := []string{"e2e4"}
	v := normalizeResult(uci.Result{ScoreCP: 1, PV: pv}, 0)
	pv[0] = "mutated"
	if v.PV[0] != "e2e4" {
		t.Fatalf("pv aliases caller slice: %v", v.PV)
	}
}
