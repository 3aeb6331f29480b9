package coach

import (
	nchess "github.com/corentings/chess/v2"
)

// Piece values in pawns, the scale the scoring model was trained on.
var pieceValues = map[nchess.PieceType]int{
	nchess.Pawn:   1,
	nchess.Knight: 3,
	nchess.Bishop: 3,
	nchess.Rook:   5,
	nchess.Queen:  9,
}

var centerSquares = [4]nchess.Square{nchess.D4, nchess.E4, nchess.D5, nchess.E5}

// grid is a plain 8x8 snapshot of the board, indexed [file][rank] with
// FileA/Rank1 at zero. All feature predicates run against it so they stay
// pure and cheap.
type grid [8][8]nchess.Piece

func snapshot(board *nchess.Board) grid {
	var g grid
	if board == nil {
		return g
	}
	for f := 0; f < 8; f++ {
		for r := 0; r < 8; r++ {
			g[f][r] = board.Piece(nchess.NewSquare(nchess.File(f), nchess.Rank(r)))
		}
	}
	return g
}

func (g *grid) at(f, r int) nchess.Piece {
	if f < 0 || f > 7 || r < 0 || r > 7 {
		return nchess.NoPiece
	}
	return g[f][r]
}

func squareCoords(sq nchess.Square) (int, int) {
	return int(sq.File()), int(sq.Rank())
}

var knightOffsets = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
var kingOffsets = [8][2]int{{0, 1}, {1, 1}, {1, 0}, {1, -1}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1}}
var bishopRays = [4][2]int{{1, 1}, {1, -1}, {-1, -1}, {-1, 1}}
var rookRays = [4][2]int{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}

// attacks reports whether the piece standing on (ff, fr) attacks (tf, tr),
// honoring blockers for sliding pieces. Pins are deliberately ignored; this
// feeds coaching heuristics, not legality.
func (g *grid) attacks(ff, fr, tf, tr int) bool {
	piece := g.at(ff, fr)
	if piece == nchess.NoPiece || (ff == tf && fr == tr) {
		return false
	}
	df, dr := tf-ff, tr-fr

	switch piece.Type() {
	case nchess.Pawn:
		dir := 1
		if piece.Color() == nchess.Black {
			dir = -1
		}
		return dr == dir && (df == 1 || df == -1)
	case nchess.Knight:
		for _, o := range knightOffsets {
			if df == o[0] && dr == o[1] {
				return true
			}
		}
		return false
	case nchess.King:
		return df >= -1 && df <= 1 && dr >= -1 && dr <= 1
	case nchess.Bishop:
		return g.slides(ff, fr, tf, tr, bishopRays[:])
	case nchess.Rook:
		return g.slides(ff, fr, tf, tr, rookRays[:])
	case nchess.Queen:
		return g.slides(ff, fr, tf, tr, bishopRays[:]) || g.slides(ff, fr, tf, tr, rookRays[:])
	default:
		return false
	}
}

func (g *grid) slides(ff, fr, tf, tr int, rays [][2]int) bool {
	for _, ray := range rays {
		f, r := ff+ray[0], fr+ray[1]
		for f >= 0 && f <= 7 && r >= 0 && r <= 7 {
			if f == tf && r == tr {
				return true
			}
			if g.at(f, r) != nchess.NoPiece {
				break
			}
			f += ray[0]
			r += ray[1]
		}
	}
	return false
}

// attackerCoords collects the squares of color's pieces attacking (tf, tr).
func (g *grid) attackerCoords(tf, tr int, color nchess.Color) [][2]int {
	var out [][2]int
	for f := 0; f < 8; f++ {
		for r := 0; r < 8; r++ {
			piece := g[f][r]
			if piece == nchess.NoPiece || piece.Color() != color {
				continue
			}
			if g.attacks(f, r, tf, tr) {
				out = append(out, [2]int{f, r})
			}
		}
	}
	return out
}

func (g *grid) isAttacked(tf, tr int, byColor nchess.Color) bool {
	for f := 0; f < 8; f++ {
		for r := 0; r < 8; r++ {
			piece := g[f][r]
			if piece == nchess.NoPiece || piece.Color() != byColor {
				continue
			}
			if g.attacks(f, r, tf, tr) {
				return true
			}
		}
	}
	return false
}

func chebyshev(af, ar, bf, br int) int {
	df, dr := af-bf, ar-br
	if df < 0 {
		df = -df
	}
	if dr < 0 {
		dr = -dr
	}
	if df > dr {
		return df
	}
	return dr
}

func opponent(c nchess.Color) nchess.Color {
	if c == nchess.White {
		return nchess.Black
	}
	return nchess.White
}
