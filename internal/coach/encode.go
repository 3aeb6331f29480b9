package coach

import (
	"fmt"

	nchess "github.com/corentings/chess/v2"
)

// Tensor channel layout. Planes 0-5 hold the mover's pieces, 6-11 the
// opponent's, 12 marks empty squares.
const (
	TensorFiles    = 8
	TensorRanks    = 8
	TensorChannels = 13

	channelEmpty = 12
)

// Tensor is a fixed-shape board encoding indexed [file][rank][channel].
//
// The board is always encoded from the mover's viewpoint: when Black is to
// move the ranks are mirrored and piece colors swapped, so the mover's pieces
// occupy the same planes regardless of side to move. Training and inference
// must share this normalization; a mismatch degrades suggestions silently.
type Tensor [TensorFiles][TensorRanks][TensorChannels]float32

var pieceChannels = map[nchess.PieceType]int{
	nchess.Pawn:   0,
	nchess.Knight: 1,
	nchess.Bishop: 2,
	nchess.Rook:   3,
	nchess.Queen:  4,
	nchess.King:   5,
}

// Encode converts a position into its tensor representation. Identical
// positions always produce identical tensors.
func Encode(pos *nchess.Position) (*Tensor, error) {
	if pos == nil {
		return nil, fmt.Errorf("%w: nil position", ErrEncoding)
	}
	mover := pos.Turn()
	g := snapshot(pos.Board())

	var t Tensor
	for f := 0; f < TensorFiles; f++ {
		for r := 0; r < TensorRanks; r++ {
			rank := r
			if mover == nchess.Black {
				rank = TensorRanks - 1 - r
			}
			piece := g[f][rank]
			if piece == nchess.NoPiece {
				t[f][r][channelEmpty] = 1
				continue
			}
			channel, ok := pieceChannels[piece.Type()]
			if !ok {
				return nil, fmt.Errorf("%w: unknown piece on %c%d", ErrEncoding, 'a'+f, rank+1)
			}
			if piece.Color() != mover {
				channel += 6
			}
			t[f][r][channel] = 1
		}
	}
	return &t, nil
}
