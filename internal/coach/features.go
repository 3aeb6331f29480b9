package coach

import (
	"fmt"

	nchess "github.com/corentings/chess/v2"
)

// Feature names form the external contract with the scoring model: weights
// files key their coefficients by these strings, and they must match the
// schema the model was trained with.
const (
	FeatElo              = "elo"
	FeatMaterial         = "material_balance"
	FeatHanging          = "hanging_pieces"
	FeatKingSafety       = "king_safety"
	FeatDevelopment      = "development"
	FeatCenterControl    = "center_control"
	FeatIsCapture        = "is_capture"
	FeatGivesCheck       = "gives_check"
	FeatToCenter         = "to_center"
	FeatAfterMaterial    = "after_material_balance"
	FeatAfterHanging     = "after_hanging_pieces"
	FeatAfterKingSafety  = "after_king_safety"
	FeatAfterDevelopment = "after_development"
	FeatAfterCenter      = "after_center_control"
	FeatDeltaHanging     = "delta_hanging"
	FeatDeltaKingSafety  = "delta_king_safety"
	FeatDeltaDevelopment = "delta_development"
	FeatDeltaCenter      = "delta_center_control"
)

// FeatureNames lists every feature in schema order.
var FeatureNames = []string{
	FeatElo, FeatMaterial, FeatHanging, FeatKingSafety, FeatDevelopment,
	FeatCenterControl, FeatIsCapture, FeatGivesCheck, FeatToCenter,
	FeatAfterMaterial, FeatAfterHanging, FeatAfterKingSafety,
	FeatAfterDevelopment, FeatAfterCenter, FeatDeltaHanging,
	FeatDeltaKingSafety, FeatDeltaDevelopment, FeatDeltaCenter,
}

// FeatureVector maps feature names to values for one (position, move) pair.
type FeatureVector map[string]float64

func materialBalance(g *grid, mover nchess.Color) int {
	balance := 0
	for f := 0; f < 8; f++ {
		for r := 0; r < 8; r++ {
			piece := g[f][r]
			if piece == nchess.NoPiece {
				continue
			}
			val := pieceValues[piece.Type()]
			if piece.Color() == mover {
				balance += val
			} else {
				balance -= val
			}
		}
	}
	return balance
}

// hangingPieces counts color's pieces that are attacked and undefended.
func hangingPieces(g *grid, color nchess.Color) int {
	count := 0
	enemy := opponent(color)
	for f := 0; f < 8; f++ {
		for r := 0; r < 8; r++ {
			piece := g[f][r]
			if piece == nchess.NoPiece || piece.Color() != color {
				continue
			}
			if g.isAttacked(f, r, enemy) && !g.isAttacked(f, r, color) {
				count++
			}
		}
	}
	return count
}

// kingSafety returns zero or a negative count of enemy attackers bearing down
// near color's king. More negative means a more exposed king.
func kingSafety(g *grid, color nchess.Color) int {
	kf, kr := -1, -1
	for f := 0; f < 8 && kf < 0; f++ {
		for r := 0; r < 8; r++ {
			piece := g[f][r]
			if piece != nchess.NoPiece && piece.Type() == nchess.King && piece.Color() == color {
				kf, kr = f, r
				break
			}
		}
	}
	if kf < 0 {
		return 0
	}
	score := 0
	for _, a := range g.attackerCoords(kf, kr, opponent(color)) {
		if chebyshev(a[0], a[1], kf, kr) <= 2 {
			score--
		}
	}
	return score
}

// developmentScore counts color's knights and bishops that have left the back
// rank.
func developmentScore(g *grid, color nchess.Color) int {
	backRank := 0
	if color == nchess.Black {
		backRank = 7
	}
	score := 0
	for f := 0; f < 8; f++ {
		for r := 0; r < 8; r++ {
			piece := g[f][r]
			if piece == nchess.NoPiece || piece.Color() != color {
				continue
			}
			t := piece.Type()
			if (t == nchess.Knight || t == nchess.Bishop) && r != backRank {
				score++
			}
		}
	}
	return score
}

// centerControl counts the central four squares color attacks.
func centerControl(g *grid, color nchess.Color) int {
	count := 0
	for _, sq := range centerSquares {
		f, r := squareCoords(sq)
		if g.isAttacked(f, r, color) {
			count++
		}
	}
	return count
}

func isCenterSquare(sq nchess.Square) bool {
	for _, c := range centerSquares {
		if sq == c {
			return true
		}
	}
	return false
}

// ExtractFeatures builds the scoring feature vector for one candidate move.
// Positional terms are computed from the mover's perspective before and after
// the move, plus the deltas the model was trained on. Deterministic for
// identical inputs.
func ExtractFeatures(pos *nchess.Position, moveUCI string, elo int) (FeatureVector, error) {
	if pos == nil {
		return nil, fmt.Errorf("%w: nil position", ErrEncoding)
	}
	mv, err := resolveMove(pos, moveUCI)
	if err != nil {
		return nil, fmt.Errorf("extract features: %w", err)
	}

	mover := pos.Turn()
	before := snapshot(pos.Board())

	after := pos.Update(mv)
	if after == nil {
		return nil, fmt.Errorf("extract features: apply %s failed", moveUCI)
	}
	afterGrid := snapshot(after.Board())

	fv := FeatureVector{
		FeatElo:           float64(elo),
		FeatMaterial:      float64(materialBalance(&before, mover)),
		FeatHanging:       float64(hangingPieces(&before, mover)),
		FeatKingSafety:    float64(kingSafety(&before, mover)),
		FeatDevelopment:   float64(developmentScore(&before, mover)),
		FeatCenterControl: float64(centerControl(&before, mover)),

		FeatIsCapture:  boolFeature(mv.HasTag(nchess.Capture) || mv.HasTag(nchess.EnPassant)),
		FeatGivesCheck: boolFeature(mv.HasTag(nchess.Check)),
		FeatToCenter:   boolFeature(isCenterSquare(mv.S2())),

		FeatAfterMaterial:    float64(materialBalance(&afterGrid, mover)),
		FeatAfterHanging:     float64(hangingPieces(&afterGrid, mover)),
		FeatAfterKingSafety:  float64(kingSafety(&afterGrid, mover)),
		FeatAfterDevelopment: float64(developmentScore(&afterGrid, mover)),
		FeatAfterCenter:      float64(centerControl(&afterGrid, mover)),
	}
	fv[FeatDeltaHanging] = fv[FeatAfterHanging] - fv[FeatHanging]
	fv[FeatDeltaKingSafety] = fv[FeatAfterKingSafety] - fv[FeatKingSafety]
	fv[FeatDeltaDevelopment] = fv[FeatAfterDevelopment] - fv[FeatDevelopment]
	fv[FeatDeltaCenter] = fv[FeatAfterCenter] - fv[FeatCenterControl]

	return fv, nil
}

func boolFeature(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
