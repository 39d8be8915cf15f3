package explaindto

import "time"

// Summary is the structured input contract of the explanation service. Every
// field is populated by the pipeline before the summary leaves the process;
// evaluations are centipawns from the perspective of the side that played the
// move.
type Summary struct {
	FEN            string   `json:"fen"`
	SideToMove     string   `json:"side_to_move"`
	MoveSAN        string   `json:"move_san"`
	MoveUCI        string   `json:"move_uci"`
	EvalBeforeCP   int      `json:"eval_before_cp"`
	EvalAfterCP    int      `json:"eval_after_cp"`
	CentipawnLoss  int      `json:"centipawn_loss"`
	Classification string   `json:"classification"`
	BestMoveSAN    string   `json:"best_move_san"`
	PrincipalLine  []string `json:"principal_variation"`
	MateBefore     int      `json:"mate_before,omitempty"`
	MateAfter      int      `json:"mate_after,omitempty"`
}

// Report is the full outcome of one analysis request.
type Report struct {
	RequestID      string        `json:"request_id"`
	Summary        Summary       `json:"summary"`
	FENAfter       string        `json:"fen_after"`
	EngineDepth    int           `json:"engine_depth"`
	EngineDuration time.Duration `json:"engine_duration"`
	Explanation    string        `json:"explanation,omitempty"`
}
