package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/park285/paint-chess/internal/board"
)

// Glyph outlines on a 45x45 canvas. %[1]s is the fill, %[2]s the stroke.
var glyphs = map[board.Piece]string{
	board.Pawn: `<circle cx="22.5" cy="14" r="5.5" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>` +
		`<path d="M 13 38 L 32 38 L 27 21 L 18 21 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>`,
	board.Rook: `<path d="M 11 38 L 34 38 L 34 34 L 30 34 L 30 17 L 33 17 L 33 9 L 29 9 L 29 12 L 25 12 L 25 9 ` +
		`L 20 9 L 20 12 L 16 12 L 16 9 L 12 9 L 12 17 L 15 17 L 15 34 L 11 34 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>`,
	board.Knight: `<path d="M 12 38 L 33 38 L 33 34 L 29 34 L 31 19 L 24 8 L 20 10 L 10 20 L 13 25 L 20 21 ` +
		`L 16 34 L 12 34 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>`,
	board.Bishop: `<circle cx="22.5" cy="8" r="2.5" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>` +
		`<path d="M 13 38 L 32 38 L 32 34 L 27 34 L 29 22 L 22.5 11 L 16 22 L 18 34 L 13 34 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>`,
	board.Queen: `<path d="M 10 38 L 35 38 L 33 30 L 37 13 L 29 23 L 27 9 L 22.5 22 L 18 9 L 16 23 L 8 13 ` +
		`L 12 30 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>`,
	board.King: `<path d="M 21 4 L 24 4 L 24 7 L 27 7 L 27 10 L 24 10 L 24 15 L 21 15 L 21 10 L 18 10 L 18 7 ` +
		`L 21 7 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.2"/>` +
		`<path d="M 11 38 L 34 38 L 32 30 L 35 19 L 26 22 L 24 15 L 21 15 L 19 22 L 10 19 L 13 30 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>`,
}

func glyphSVG(p board.Piece, fill string) ([]byte, error) {
	body, ok := glyphs[p]
	if !ok {
		return nil, fmt.Errorf("no glyph for piece %q", p)
	}
	return []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 45 45" width="45" height="45">` +
		fmt.Sprintf(body, fill, pieceStrokeHex) + `</svg>`), nil
}

type glyphKey struct {
	piece board.Piece
	fill  string
	size  int
}

var (
	glyphCache   = map[glyphKey]image.Image{}
	glyphCacheMu sync.RWMutex
)

// pieceImage rasterises one piece glyph in the given colour.
func pieceImage(p board.Piece, fill color.RGBA, size int) (image.Image, error) {
	key := glyphKey{piece: p, fill: hexOf(fill), size: size}

	glyphCacheMu.RLock()
	if img, ok := glyphCache[key]; ok {
		glyphCacheMu.RUnlock()
		return img, nil
	}
	glyphCacheMu.RUnlock()

	data, err := glyphSVG(p, key.fill)
	if err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	glyphCacheMu.Lock()
	glyphCache[key] = img
	glyphCacheMu.Unlock()
	return img, nil
}
