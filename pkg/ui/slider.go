package ui

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Slider edits a float in [Min, Max] by dragging.
type Slider struct {
	Label    string
	Value    float64
	Min, Max float64
	X, Y     float64
	W, H     float64

	changed bool
}

// NewSlider creates a slider with its value clamped to range.
func NewSlider(x, y, width float64, label string, min, max, value float64) *Slider {
	s := &Slider{Label: label, Min: min, Max: max, X: x, Y: y, W: width, H: 12}
	s.Set(value)
	s.changed = false
	return s
}

// Set clamps v to the slider range and records a change when it differs.
func (s *Slider) Set(v float64) {
	v = max(s.Min, min(s.Max, v))
	if v != s.Value {
		s.Value = v
		s.changed = true
	}
}

// SetFromCursor maps a horizontal cursor position onto the range.
func (s *Slider) SetFromCursor(mx float64) {
	if s.W <= 0 {
		return
	}
	s.Set(s.Min + (mx-s.X)/s.W*(s.Max-s.Min))
}

// Changed reports whether the value moved since the last call.
func (s *Slider) Changed() bool {
	c := s.changed
	s.changed = false
	return c
}

func (s *Slider) contains(mx, my float64) bool {
	return mx >= s.X && mx <= s.X+s.W && my >= s.Y && my <= s.Y+s.H
}

// Update follows the mouse while the left button is held over the bar.
func (s *Slider) Update() {
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		return
	}
	x, y := ebiten.CursorPosition()
	if mx, my := float64(x), float64(y); s.contains(mx, my) {
		s.SetFromCursor(mx)
	}
}

// Draw renders the bar and the current value.
func (s *Slider) Draw(screen *ebiten.Image) {
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W), float32(s.H), color.RGBA{R: 80, G: 80, B: 80, A: 255}, true)

	ratio := 0.0
	if s.Max > s.Min {
		ratio = (s.Value - s.Min) / (s.Max - s.Min)
	}
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W*ratio), float32(s.H), color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)

	value := fmt.Sprintf("%.3g", s.Value)
	w, _ := MeasureLabel(value)
	DrawLabel(screen, value, s.X+s.W-w, s.Y-LabelSize-2, color.RGBA{R: 160, G: 200, B: 255, A: 255})
}

func (s *Slider) height() float64 { return s.H + 25 }

func (s *Slider) setY(y float64) { s.Y = y }
