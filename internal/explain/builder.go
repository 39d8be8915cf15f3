package explain

import (
	"strings"

	"github.com/park285/chess-explainer/internal/assess"
	"github.com/park285/chess-explainer/internal/engine"
	"github.com/park285/chess-explainer/internal/position"
	"github.com/park285/chess-explainer/pkg/explaindto"
)

// pvPlyLimit bounds the principal variation shown to the text service.
const pvPlyLimit = 4

// BuildSummary assembles the structured input contract of the explanation
// service from the pipeline's immutable values. Pure assembly, no I/O.
func BuildSummary(
	pos *position.Position,
	move position.Move,
	assessment assess.Assessment,
	verdictBefore engine.Verdict,
	verdictAfter engine.Verdict,
) explaindto.Summary {
	line := pos.SANLine(verdictBefore.PV, pvPlyLimit)

	bestSAN := ""
	if len(line) > 0 {
		bestSAN = line[0]
	} else if verdictBefore.BestMove != "" {
		bestSAN = strings.ToLower(verdictBefore.BestMove)
	}

	return explaindto.Summary{
		FEN:            pos.FEN(),
		SideToMove:     pos.SideToMove(),
		MoveSAN:        move.SAN,
		MoveUCI:        move.UCI,
		EvalBeforeCP:   assessment.EvalBeforeCP,
		EvalAfterCP:    assessment.EvalAfterCP,
		CentipawnLoss:  assessment.CentipawnLoss,
		Classification: string(assessment.Class),
		BestMoveSAN:    bestSAN,
		PrincipalLine:  line,
		MateBefore:     verdictBefore.MateIn,
		// The post-move verdict is from the opponent's perspective; flip it so
		// the whole summary speaks for the mover.
		MateAfter: -verdictAfter.MateIn,
	}
}
