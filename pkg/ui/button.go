package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Button runs OnClick on a fresh left click. A disabled button is drawn
// greyed out and ignores clicks.
type Button struct {
	Label    string
	X, Y     float64
	Width    float64
	Height   float64
	OnClick  func()
	Disabled bool

	// Styling
	BGColor       color.RGBA
	HoverColor    color.RGBA
	DisabledColor color.RGBA
	TextColor     color.RGBA
}

// NewButton creates an enabled button.
func NewButton(x, y, width, height float64, label string, onClick func()) *Button {
	return &Button{
		Label:      label,
		X:          x,
		Y:          y,
		Width:      width,
		Height:     height,
		OnClick:    onClick,
		BGColor:       color.RGBA{R: 80, G: 120, B: 180, A: 255},
		HoverColor:    color.RGBA{R: 100, G: 150, B: 220, A: 255},
		DisabledColor: color.RGBA{R: 70, G: 70, B: 75, A: 255},
		TextColor:     color.RGBA{R: 255, G: 255, B: 255, A: 255},
	}
}

func (b *Button) hovered() bool {
	x, y := ebiten.CursorPosition()
	mx, my := float64(x), float64(y)
	return mx >= b.X && mx <= b.X+b.Width && my >= b.Y && my <= b.Y+b.Height
}

// Click runs OnClick unless the button is disabled.
func (b *Button) Click() {
	if !b.Disabled && b.OnClick != nil {
		b.OnClick()
	}
}

func (b *Button) Update() {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && b.hovered() {
		b.Click()
	}
}

// Draw renders the button and its centered label.
func (b *Button) Draw(screen *ebiten.Image) {
	bgColor := b.BGColor
	switch {
	case b.Disabled:
		bgColor = b.DisabledColor
	case b.hovered():
		bgColor = b.HoverColor
	}

	vector.FillRect(screen,
		float32(b.X), float32(b.Y),
		float32(b.Width), float32(b.Height),
		bgColor, true)

	vector.StrokeRect(screen,
		float32(b.X), float32(b.Y),
		float32(b.Width), float32(b.Height),
		2, color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)

	w, h := MeasureLabel(b.Label)
	DrawLabel(screen, b.Label, b.X+(b.Width-w)/2, b.Y+(b.Height-h)/2, b.TextColor)
}

func (b *Button) height() float64 { return b.Height + 8 }

func (b *Button) setY(y float64) { b.Y = y }
