// Package ui holds the small immediate-mode widgets of the debug viewer: a
// scrollable panel of collapsible sections with sliders, checkboxes and
// buttons.
package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	titleHeight   = 30.0
	sectionHeight = 25.0
	margin        = 10.0
	scrollStep    = 20.0
)

// Widget is anything a Panel can stack.
type Widget interface {
	Update()
	Draw(screen *ebiten.Image)
	height() float64
	setY(y float64)
}

type entry struct {
	widget  Widget
	label   string
	visible bool
}

// Section groups the widgets added between AddSection and EndSection. A
// collapsed section only shows its header.
type Section struct {
	Title     string
	Collapsed bool

	start, end int
	headerY    float64
	visible    bool
}

// Panel lays widgets out top to bottom and scrolls with the mouse wheel.
type Panel struct {
	X, Y          float64
	Width, Height float64
	Title         string
	ScrollOffset  float64

	// Styling
	BGColor     color.RGBA
	BorderColor color.RGBA
	TextColor   color.RGBA

	entries  []entry
	sections []*Section
}

// NewPanel creates an empty panel.
func NewPanel(x, y, width, height float64, title string) *Panel {
	return &Panel{
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		Title:       title,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
		TextColor:   color.RGBA{R: 220, G: 220, B: 220, A: 255},
	}
}

// AddSection opens a section; widgets added until EndSection belong to it.
func (p *Panel) AddSection(title string) *Section {
	s := &Section{Title: title, start: len(p.entries), end: -1}
	p.sections = append(p.sections, s)
	return s
}

// EndSection closes the current section
func (p *Panel) EndSection() {
	if len(p.sections) > 0 {
		p.sections[len(p.sections)-1].end = len(p.entries)
	}
}

func (p *Panel) add(w Widget, label string) {
	p.entries = append(p.entries, entry{widget: w, label: label})
	p.layout()
}

// AddSlider appends a labelled slider.
func (p *Panel) AddSlider(label string, min, max, value float64) *Slider {
	s := NewSlider(p.X+margin, 0, p.Width-2*margin, label, min, max, value)
	p.add(s, label)
	return s
}

// AddCheckbox appends a labelled checkbox.
func (p *Panel) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(p.X+margin, 0, label, value)
	p.add(c, label)
	return c
}

// AddButton appends a full-width button.
func (p *Panel) AddButton(label string, onClick func()) *Button {
	b := NewButton(p.X+margin, 0, p.Width-2*margin, 22, label, onClick)
	p.add(b, "")
	return b
}

// Contains reports whether a screen point falls on the panel.
func (p *Panel) Contains(x, y float64) bool {
	return x >= p.X && x <= p.X+p.Width && y >= p.Y && y <= p.Y+p.Height
}

func (p *Panel) sectionEnd(s *Section) int {
	if s.end < 0 {
		return len(p.entries)
	}
	return s.end
}

// layout assigns every widget its scrolled Y and marks what fits inside the
// panel.
func (p *Panel) layout() {
	y := p.Y + titleHeight - p.ScrollOffset
	top, bottom := p.Y+titleHeight, p.Y+p.Height
	for i := range p.entries {
		p.entries[i].visible = false
	}
	for _, s := range p.sections {
		s.headerY = y
		s.visible = y >= top && y+sectionHeight <= bottom
		y += sectionHeight
		if s.Collapsed {
			continue
		}
		for i := s.start; i < p.sectionEnd(s); i++ {
			e := &p.entries[i]
			labelH := 0.0
			if e.label != "" {
				labelH = 15
			}
			e.widget.setY(y + labelH)
			e.visible = y >= top && y+e.widget.height() <= bottom
			y += e.widget.height()
		}
	}
}

func (p *Panel) contentHeight() float64 {
	h := titleHeight
	for _, s := range p.sections {
		h += sectionHeight
		if s.Collapsed {
			continue
		}
		for i := s.start; i < p.sectionEnd(s); i++ {
			h += p.entries[i].widget.height()
		}
	}
	return h
}

// Update scrolls, toggles sections on header clicks and updates every
// visible widget.
func (p *Panel) Update() {
	x, y := ebiten.CursorPosition()
	mx, my := float64(x), float64(y)

	if _, dy := ebiten.Wheel(); dy != 0 && p.Contains(mx, my) {
		maxScroll := max(0, p.contentHeight()-p.Height+margin)
		p.ScrollOffset = max(0, min(maxScroll, p.ScrollOffset-dy*scrollStep))
	}
	p.layout()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		for _, s := range p.sections {
			if s.visible && mx >= p.X && mx <= p.X+p.Width && my >= s.headerY && my < s.headerY+sectionHeight-5 {
				s.Collapsed = !s.Collapsed
				p.layout()
				break
			}
		}
	}

	for _, e := range p.entries {
		if e.visible {
			e.widget.Update()
		}
	}
}

// Draw renders the panel, section headers and visible widgets.
func (p *Panel) Draw(screen *ebiten.Image) {
	vector.FillRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		p.BGColor, true)
	vector.StrokeRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		2, p.BorderColor, true)
	DrawLabel(screen, p.Title, p.X+margin, p.Y+8, p.TextColor)

	for _, s := range p.sections {
		if !s.visible {
			continue
		}
		vector.FillRect(screen,
			float32(p.X+5), float32(s.headerY),
			float32(p.Width-10), 20,
			color.RGBA{R: 60, G: 60, B: 70, A: 255}, true)
		marker := "- "
		if s.Collapsed {
			marker = "+ "
		}
		DrawLabel(screen, marker+s.Title, p.X+margin, s.headerY+3, p.TextColor)
	}

	for _, e := range p.entries {
		if !e.visible {
			continue
		}
		if e.label != "" {
			DrawLabel(screen, e.label, p.X+margin, labelY(e.widget), p.TextColor)
		}
		e.widget.Draw(screen)
	}
}

func labelY(w Widget) float64 {
	switch w := w.(type) {
	case *Slider:
		return w.Y - 15
	case *Checkbox:
		return w.Y - 15
	}
	return 0
}
