package presenter

import (
	"fmt"
	"strings"

	"github.com/park285/chess-explainer/internal/assess"
	"github.com/park285/chess-explainer/internal/position"
	"github.com/park285/chess-explainer/pkg/explaindto"
)

const headerLine = "♔ Chess Move Explainer ♔"

// Formatter renders analysis reports into terminal-friendly text blocks.
type Formatter struct{}

func NewFormatter() *Formatter {
	return &Formatter{}
}

// Report renders the full analysis of a single move, board included.
func (f *Formatter) Report(report *explaindto.Report) string {
	if report == nil {
		return ""
	}
	s := report.Summary

	var sb strings.Builder
	sb.WriteString(headerLine)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 40))
	sb.WriteString("\n\n")

	if pos, err := position.Parse(s.FEN); err == nil {
		sb.WriteString(pos.RenderBoard())
		sb.WriteString("\n\n")
	}

	sb.WriteString(fmt.Sprintf("FEN: %s\n", s.FEN))
	sb.WriteString(fmt.Sprintf("Move played: %s (%s) by %s\n", s.MoveSAN, s.MoveUCI, s.SideToMove))
	sb.WriteString(fmt.Sprintf("Evaluation: %s → %s (for %s)\n",
		formatEval(s.EvalBeforeCP, s.MateBefore),
		formatEval(s.EvalAfterCP, s.MateAfter),
		s.SideToMove,
	))
	sb.WriteString(fmt.Sprintf("Centipawn loss: %d\n", s.CentipawnLoss))
	sb.WriteString(fmt.Sprintf("Verdict: %s\n", verdictLabel(s.Classification)))

	if s.BestMoveSAN != "" && s.BestMoveSAN != s.MoveSAN {
		sb.WriteString(fmt.Sprintf("Engine preferred: %s\n", s.BestMoveSAN))
	}
	if len(s.PrincipalLine) > 0 {
		sb.WriteString(fmt.Sprintf("Best line: %s\n", strings.Join(s.PrincipalLine, " ")))
	}

	if strings.TrimSpace(report.Explanation) != "" {
		sb.WriteString("\n")
		sb.WriteString(strings.TrimSpace(report.Explanation))
		sb.WriteString("\n")
	}

	return sb.String()
}

func verdictLabel(classification string) string {
	switch assess.Class(classification) {
	case assess.ClassGood:
		return "sound move"
	case assess.ClassInaccuracy:
		return "inaccuracy"
	case assess.ClassMistake:
		return "mistake"
	case assess.ClassBlunder:
		return "blunder"
	default:
		return classification
	}
}

// formatEval renders centipawns as pawns ("+0.20") and mates as "#3" / "#-3".
func formatEval(cp, mate int) string {
	if mate != 0 {
		return fmt.Sprintf("#%d", mate)
	}
	return fmt.Sprintf("%+.2f", float64(cp)/100)
}
