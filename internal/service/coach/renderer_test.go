package coach

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"

	nchess "github.com/corentings/chess/v2"
)

func TestSpritesRasterizeEveryPiece(t *testing.T) {
	pieces := []nchess.Piece{
		nchess.WhiteKing, nchess.WhiteQueen, nchess.WhiteRook,
		nchess.WhiteBishop, nchess.WhiteKnight, nchess.WhitePawn,
		nchess.BlackKing, nchess.BlackQueen, nchess.BlackRook,
		nchess.BlackBishop, nchess.BlackKnight, nchess.BlackPawn,
	}
	for _, piece := range pieces {
		img, err := sprites.image(piece, 72)
		if err != nil {
			t.Fatalf("sprite %v: %v", piece, err)
		}
		if got := img.Bounds(); got != image.Rect(0, 0, 72, 72) {
			t.Fatalf("sprite %v bounds = %v", piece, got)
		}
		opaque := false
		for y := 0; y < 72 && !opaque; y++ {
			for x := 0; x < 72; x++ {
				if _, _, _, a := img.At(x, y).RGBA(); a > 0 {
					opaque = true
					break
				}
			}
		}
		if !opaque {
			t.Fatalf("sprite %v rasterized fully transparent", piece)
		}
	}
}

func TestSpritesCachePerSize(t *testing.T) {
	first, err := sprites.image(nchess.WhitePawn, 64)
	if err != nil {
		t.Fatalf("sprite: %v", err)
	}
	second, err := sprites.image(nchess.WhitePawn, 64)
	if err != nil {
		t.Fatalf("sprite: %v", err)
	}
	if first != second {
		t.Fatalf("cache returned a different image for the same key")
	}
}

func TestRenderPNGStartPosition(t *testing.T) {
	renderer := NewSVGBoardRenderer()
	board := nchess.NewGame().Position().Board()

	data, err := renderer.RenderPNG(context.Background(), board, RenderOptions{
		Highlight: &MoveHighlight{From: nchess.E2, To: nchess.E4},
	})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	// 8 squares of 72px plus a 28px margin on each side.
	want := image.Rect(0, 0, 632, 632)
	if img.Bounds() != want {
		t.Fatalf("bounds = %v, want %v", img.Bounds(), want)
	}
}

func TestRenderPNGHonorsCancellation(t *testing.T) {
	renderer := NewSVGBoardRenderer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := renderer.RenderPNG(ctx, nchess.NewGame().Position().Board(), RenderOptions{}); err == nil {
		t.Fatalf("expected cancellation error")
	}
}
