package tilemap

// Occupancy counts how many ground units claim each tile.
type Occupancy struct {
	Width  int
	Height int
	counts []int
}

// NewOccupancy creates an empty occupancy grid of the given size.
func NewOccupancy(width, height int) *Occupancy {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Occupancy{
		Width:  width,
		Height: height,
		counts: make([]int, width*height),
	}
}

func (o *Occupancy) inBounds(x, y int) bool {
	return o != nil && x >= 0 && y >= 0 && x < o.Width && y < o.Height
}

// At returns the count at (x, y), 0 outside the grid.
func (o *Occupancy) At(x, y int) int {
	if !o.inBounds(x, y) {
		return 0
	}
	return o.counts[y*o.Width+x]
}

// Occupied reports a nonzero count.
func (o *Occupancy) Occupied(x, y int) bool {
	return o.At(x, y) > 0
}

// Inc adds a claim on (x, y).
func (o *Occupancy) Inc(x, y int) {
	if o.inBounds(x, y) {
		o.counts[y*o.Width+x]++
	}
}

// Dec releases a claim on (x, y); counts never go negative.
func (o *Occupancy) Dec(x, y int) {
	if o.inBounds(x, y) && o.counts[y*o.Width+x] > 0 {
		o.counts[y*o.Width+x]--
	}
}

// Reset zeroes every count, keeping the backing array.
func (o *Occupancy) Reset() {
	if o == nil {
		return
	}
	clear(o.counts)
}
