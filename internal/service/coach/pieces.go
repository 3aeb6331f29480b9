package coach

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	"sync"

	nchess "github.com/corentings/chess/v2"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

//go:embed assets/pieces/*.svg
var pieceAssets embed.FS

// spriteSet rasterizes the embedded flat-color piece sprites on demand and
// caches the result per piece and size. Sprites are drawn on a 45x45 viewbox.
type spriteSet struct {
	mu    sync.Mutex
	cache map[spriteKey]image.Image
}

type spriteKey struct {
	name string
	size int
}

var sprites = spriteSet{cache: map[spriteKey]image.Image{}}

func (s *spriteSet) image(piece nchess.Piece, size int) (image.Image, error) {
	key := spriteKey{name: spriteName(piece), size: size}

	s.mu.Lock()
	defer s.mu.Unlock()
	if img, ok := s.cache[key]; ok {
		return img, nil
	}

	img, err := rasterizeSprite(key.name, size)
	if err != nil {
		return nil, err
	}
	s.cache[key] = img
	return img, nil
}

func rasterizeSprite(name string, size int) (image.Image, error) {
	data, err := pieceAssets.ReadFile("assets/pieces/" + name + ".svg")
	if err != nil {
		return nil, fmt.Errorf("read piece sprite %s: %w", name, err)
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse piece sprite %s: %w", name, err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1.0)
	return img, nil
}

func spriteName(piece nchess.Piece) string {
	prefix := "b"
	if piece.Color() == nchess.White {
		prefix = "w"
	}
	switch piece.Type() {
	case nchess.King:
		return prefix + "K"
	case nchess.Queen:
		return prefix + "Q"
	case nchess.Rook:
		return prefix + "R"
	case nchess.Bishop:
		return prefix + "B"
	case nchess.Knight:
		return prefix + "N"
	default:
		return prefix + "P"
	}
}
