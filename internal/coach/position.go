package coach

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParsePosition validates a FEN string and returns the resulting position.
// Malformed input fails with ErrEncoding before any engine work happens.
func ParsePosition(fen string) (*nchess.Position, error) {
	fen = strings.TrimSpace(fen)
	if fen == "" || fen == "startpos" {
		fen = StartFEN
	}
	opt, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	game := nchess.NewGame(opt)
	pos := game.Position()
	if pos == nil {
		return nil, fmt.Errorf("%w: empty position", ErrEncoding)
	}
	return pos, nil
}

// resolveMove finds moveUCI among the legal moves of pos so the returned move
// carries its legality tags (check, capture, en passant). The oracle is the
// sole authority for candidate legality; a miss here is a malformed move.
func resolveMove(pos *nchess.Position, moveUCI string) (*nchess.Move, error) {
	text := strings.ToLower(strings.TrimSpace(moveUCI))
	if text == "" {
		return nil, fmt.Errorf("empty move")
	}
	for _, mv := range pos.ValidMoves() {
		if strings.EqualFold(mv.String(), text) {
			return &mv, nil
		}
	}
	return nil, fmt.Errorf("move %s not legal in position", text)
}

// moveSAN renders a UCI move in algebraic notation for presentation.
func moveSAN(pos *nchess.Position, moveUCI string) string {
	mv, err := resolveMove(pos, moveUCI)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(moveUCI))
	}
	return nchess.AlgebraicNotation{}.Encode(pos, mv)
}
