package ui

import (
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// LabelSize is the point size of widget labels.
const LabelSize = 12

var labelFace = sync.OnceValue(func() text.Face {
	tt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return text.NewGoXFace(basicfont.Face7x13)
	}
	face, err := opentype.NewFace(tt, &opentype.FaceOptions{
		Size:    LabelSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return text.NewGoXFace(basicfont.Face7x13)
	}
	return text.NewGoXFace(face)
})

// DrawLabel draws s with its top-left corner at (x, y).
func DrawLabel(dst *ebiten.Image, s string, x, y float64, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(dst, s, labelFace(), op)
}

// MeasureLabel returns the width and height of s in the label face.
func MeasureLabel(s string) (float64, float64) {
	return text.Measure(s, labelFace(), LabelSize*1.2)
}
