package position

import (
	"errors"
	"fmt"
	"strings"

	chesslib "github.com/corentings/chess/v2"
)

var (
	ErrInvalidPosition = errors.New("invalid chess position")
	ErrIllegalMove     = errors.New("illegal chess move")
)

// StartFEN is the conventional starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Position is an immutable snapshot of a game state. ApplyMove never mutates
// the receiver; it returns a fresh Position built on a cloned game.
type Position struct {
	game *chesslib.Game
}

// Move carries both notations of a single validated ply.
type Move struct {
	SAN string
	UCI string
}

// Parse builds a Position from a FEN string. "startpos" and the empty string
// map to the initial position.
func Parse(text string) (*Position, error) {
	fen := strings.TrimSpace(text)
	if fen == "" || fen == "startpos" {
		return &Position{game: chesslib.NewGame()}, nil
	}

	option, err := chesslib.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: parse fen %q: %v", ErrInvalidPosition, fen, err)
	}
	game := chesslib.NewGame(option)

	if err := validateBoard(game); err != nil {
		return nil, fmt.Errorf("%w: fen %q: %v", ErrInvalidPosition, fen, err)
	}
	return &Position{game: game}, nil
}

func validateBoard(game *chesslib.Game) error {
	pos := game.Position()
	if pos == nil {
		return fmt.Errorf("no position")
	}
	board := pos.Board()
	kings := map[chesslib.Color]int{}
	for file := chesslib.FileA; file <= chesslib.FileH; file++ {
		for rank := chesslib.Rank1; rank <= chesslib.Rank8; rank++ {
			piece := board.Piece(chesslib.NewSquare(file, rank))
			if piece == chesslib.NoPiece {
				continue
			}
			if piece.Type() == chesslib.King {
				kings[piece.Color()]++
			}
			if piece.Type() == chesslib.Pawn && (rank == chesslib.Rank1 || rank == chesslib.Rank8) {
				return fmt.Errorf("pawn on back rank %s", chesslib.NewSquare(file, rank))
			}
		}
	}
	if kings[chesslib.White] != 1 || kings[chesslib.Black] != 1 {
		return fmt.Errorf("expected exactly one king per side, got white=%d black=%d",
			kings[chesslib.White], kings[chesslib.Black])
	}
	return nil
}

// FEN returns the full FEN encoding of the position.
func (p *Position) FEN() string {
	return p.game.FEN()
}

// Turn returns the side to move.
func (p *Position) Turn() chesslib.Color {
	return p.game.Position().Turn()
}

// SideToMove returns "white" or "black".
func (p *Position) SideToMove() string {
	return strings.ToLower(p.Turn().Name())
}

// ApplyMove validates moveText against the position and returns the resulting
// position together with both notations of the played move. SAN is tried
// first, UCI as fallback.
func (p *Position) ApplyMove(moveText string) (*Position, Move, error) {
	text := strings.TrimSpace(moveText)
	if text == "" {
		return nil, Move{}, fmt.Errorf("%w: empty move", ErrIllegalMove)
	}

	clone := p.game.Clone()
	pos := clone.Position()

	notationSAN := chesslib.AlgebraicNotation{}
	notationUCI := chesslib.UCINotation{}

	move, err := notationSAN.Decode(pos, text)
	if err != nil {
		move, err = notationUCI.Decode(pos, strings.ToLower(text))
		if err != nil {
			return nil, Move{}, fmt.Errorf("%w: %q in %s", ErrIllegalMove, moveText, p.FEN())
		}
	}
	if err := clone.Move(move, nil); err != nil {
		return nil, Move{}, fmt.Errorf("%w: %q in %s", ErrIllegalMove, moveText, p.FEN())
	}

	played := Move{
		SAN: notationSAN.Encode(pos, move),
		UCI: strings.ToLower(notationUCI.Encode(pos, move)),
	}
	return &Position{game: clone}, played, nil
}

// SANLine converts a UCI principal variation into SAN, stopping at the first
// move that fails to decode. max bounds the number of plies (0 = all).
func (p *Position) SANLine(uciMoves []string, max int) []string {
	clone := p.game.Clone()
	notationSAN := chesslib.AlgebraicNotation{}
	notationUCI := chesslib.UCINotation{}

	line := make([]string, 0, len(uciMoves))
	for i, mv := range uciMoves {
		if max > 0 && i >= max {
			break
		}
		pos := clone.Position()
		move, err := notationUCI.Decode(pos, strings.ToLower(strings.TrimSpace(mv)))
		if err != nil {
			break
		}
		san := notationSAN.Encode(pos, move)
		if err := clone.Move(move, nil); err != nil {
			break
		}
		line = append(line, san)
	}
	return line
}

var pieceGlyphs = map[chesslib.Color]map[chesslib.PieceType]rune{
	chesslib.White: {
		chesslib.Pawn:   '♙',
		chesslib.Knight: '♘',
		chesslib.Bishop: '♗',
		chesslib.Rook:   '♖',
		chesslib.Queen:  '♕',
		chesslib.King:   '♔',
	},
	chesslib.Black: {
		chesslib.Pawn:   '♟',
		chesslib.Knight: '♞',
		chesslib.Bishop: '♝',
		chesslib.Rook:   '♜',
		chesslib.Queen:  '♛',
		chesslib.King:   '♚',
	},
}

// RenderBoard draws the position as a unicode diagram with rank and file
// legends, white at the bottom.
func (p *Position) RenderBoard() string {
	board := p.game.Position().Board()
	var sb strings.Builder
	for rank := chesslib.Rank8; ; rank-- {
		sb.WriteString(fmt.Sprintf("%d │", int(rank)+1))
		for file := chesslib.FileA; file <= chesslib.FileH; file++ {
			piece := board.Piece(chesslib.NewSquare(file, rank))
			glyph := '·'
			if piece != chesslib.NoPiece {
				glyph = pieceGlyphs[piece.Color()][piece.Type()]
			}
			sb.WriteRune(' ')
			sb.WriteRune(glyph)
		}
		sb.WriteString(" │\n")
		if rank == chesslib.Rank1 {
			break
		}
	}
	sb.WriteString("    a b c d e f g h")
	return sb.String()
}
