// Package render draws a board snapshot as a PNG: base squares, painted turf in
// each owner's colours, pieces and coordinates.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/park285/paint-chess/internal/board"
	"github.com/park285/paint-chess/internal/catalog"
)

const (
	SquareSize = 64
	Margin     = 24
	ImageSize  = SquareSize*8 + Margin*2
)

// PNG renders desc from p1's side, or from p2's side when flipped.
func PNG(ctx context.Context, desc board.Description, palette catalog.Palette, flipped bool) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	img := image.NewRGBA(image.Rect(0, 0, ImageSize, ImageSize))
	draw.Draw(img, img.Bounds(), image.NewUniform(frameColor), image.Point{}, draw.Src)
	origin := image.Point{X: Margin, Y: Margin}

	drawSquares(img, desc, palette, flipped, origin)
	if err := drawPieces(img, desc, palette, flipped, origin); err != nil {
		return nil, err
	}
	drawCoordinates(img, flipped, origin)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// screen maps a board position to its drawing cell.
func screen(p board.Pos, flipped bool) (row, col int) {
	if flipped {
		return 7 - p.Row, 7 - p.Col
	}
	return p.Row, p.Col
}

// SquareRect is the pixel rectangle of c.
func SquareRect(c board.Coord, flipped bool) (image.Rectangle, error) {
	p, ok := board.ParseCoord(c)
	if !ok {
		return image.Rectangle{}, board.ErrOutOfBounds
	}
	row, col := screen(p, flipped)
	x := Margin + col*SquareSize
	y := Margin + row*SquareSize
	return image.Rect(x, y, x+SquareSize, y+SquareSize), nil
}

func isLight(p board.Pos) bool { return (p.Row+p.Col)%2 == 0 }

// SquareColor is the background of c: turf colours when painted, the base
// colours otherwise.
func SquareColor(c board.Coord, s board.SlotDescription, palette catalog.Palette) color.RGBA {
	p, ok := board.ParseCoord(c)
	if !ok {
		return frameColor
	}
	light := isLight(p)
	if s.Turf == board.P1 || s.Turf == board.P2 {
		colors := palette.For(s.Turf)
		if light {
			return mustColor(colors.BgLight, lightSquare)
		}
		return mustColor(colors.BgDark, darkSquare)
	}
	if light {
		return lightSquare
	}
	return darkSquare
}

func drawSquares(dst draw.Image, desc board.Description, palette catalog.Palette, flipped bool, origin image.Point) {
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			pos := board.Pos{Row: r, Col: c}
			coord := pos.Coord()
			row, col := screen(pos, flipped)
			x := origin.X + col*SquareSize
			y := origin.Y + row*SquareSize
			clr := SquareColor(coord, desc[coord], palette)
			draw.Draw(dst, image.Rect(x, y, x+SquareSize, y+SquareSize), image.NewUniform(clr), image.Point{}, draw.Src)
		}
	}
}

func drawPieces(dst draw.Image, desc board.Description, palette catalog.Palette, flipped bool, origin image.Point) error {
	for coord, s := range desc {
		if s.Piece == board.NoPiece {
			continue
		}
		pos, ok := board.ParseCoord(coord)
		if !ok {
			return fmt.Errorf("%w: %q", board.ErrOutOfBounds, coord)
		}
		fill := mustColor(palette.For(s.Player).Piece, fallbackPiece)
		img, err := pieceImage(s.Piece, fill, SquareSize)
		if err != nil {
			return err
		}
		row, col := screen(pos, flipped)
		x := origin.X + col*SquareSize
		y := origin.Y + row*SquareSize
		draw.Draw(dst, image.Rect(x, y, x+SquareSize, y+SquareSize), img, image.Point{}, draw.Over)
	}
	return nil
}

func drawCoordinates(dst draw.Image, flipped bool, origin image.Point) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: dst, Face: face, Src: image.NewUniform(labelColor)}
	ascent := face.Metrics().Ascent.Ceil()
	boardEnd := origin.Y + 8*SquareSize

	for i := 0; i < 8; i++ {
		file, rank := string(rune('a'+i)), string(rune('8'-i))
		if flipped {
			file, rank = string(rune('h'-i)), string(rune('1'+i))
		}
		center := i*SquareSize + SquareSize/2
		drawCenteredText(drawer, rank, origin.X/2, origin.Y+center+ascent/2)
		drawCenteredText(drawer, file, origin.X+center, boardEnd+(Margin+ascent)/2)
	}
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	if text == "" {
		return
	}
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}
