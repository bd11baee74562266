package flowfield

import (
	"math"
	"time"

	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/tilemap"
)

// Direction is one field entry: the unit vector toward the destination and
// the accumulated travel cost from this tile.
type Direction struct {
	Dir      geometry.Vector2D
	Distance float64
}

type cell struct {
	Direction
	reached bool
}

// FlowField is a square window of (2*Radius+1)^2 tiles around Center.
type FlowField struct {
	Center      tilemap.TilePos
	Destination tilemap.TilePos
	// Seed is the destination clamped into the window.
	Seed      tilemap.TilePos
	Radius    int
	CreatedAt time.Time
	LastUsed  time.Time

	side  int
	cells []cell
}

// At returns the entry for a tile, false outside the window or for tiles the
// wavefront never reached.
func (f *FlowField) At(t tilemap.TilePos) (Direction, bool) {
	i, ok := f.index(t)
	if !ok || !f.cells[i].reached {
		return Direction{}, false
	}
	return f.cells[i].Direction, true
}

// Each calls fn for every reached tile.
func (f *FlowField) Each(fn func(t tilemap.TilePos, d Direction)) {
	minX, minY := f.Center.X-f.Radius, f.Center.Y-f.Radius
	for i, c := range f.cells {
		if c.reached {
			fn(tilemap.TilePos{X: minX + i%f.side, Y: minY + i/f.side}, c.Direction)
		}
	}
}

func (f *FlowField) index(t tilemap.TilePos) (int, bool) {
	lx := t.X - (f.Center.X - f.Radius)
	ly := t.Y - (f.Center.Y - f.Radius)
	if lx < 0 || ly < 0 || lx >= f.side || ly >= f.side {
		return 0, false
	}
	return ly*f.side + lx, true
}

var neighbours = [8]struct {
	dx, dy int
	cost   float64
}{
	{0, -1, 1}, {1, 0, 1}, {0, 1, 1}, {-1, 0, 1},
	{1, -1, math.Sqrt2}, {1, 1, math.Sqrt2}, {-1, 1, math.Sqrt2}, {-1, -1, math.Sqrt2},
}

// build runs the breadth-first wavefront from the seed over the
// 8-neighbourhood. Every tile points at the node that discovered it; occupied
// tiles cost occupiedPenalty extra but are never skipped.
func build(center, dest tilemap.TilePos, radius int, grid *tilemap.Grid, occ *tilemap.Occupancy, occupiedPenalty float64, now time.Time) *FlowField {
	side := 2*radius + 1
	f := &FlowField{
		Center:      center,
		Destination: dest,
		Radius:      radius,
		CreatedAt:   now,
		LastUsed:    now,
		side:        side,
		cells:       make([]cell, side*side),
	}
	f.Seed = tilemap.TilePos{
		X: min(max(dest.X, center.X-radius), center.X+radius),
		Y: min(max(dest.Y, center.Y-radius), center.Y+radius),
	}

	seedIdx, _ := f.index(f.Seed)
	f.cells[seedIdx].reached = true

	queue := make([]tilemap.TilePos, 0, side*side)
	queue = append(queue, f.Seed)
	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		curIdx, _ := f.index(cur)
		curDist := f.cells[curIdx].Distance
		for _, n := range neighbours {
			next := tilemap.TilePos{X: cur.X + n.dx, Y: cur.Y + n.dy}
			i, ok := f.index(next)
			if !ok || f.cells[i].reached || !grid.Passable(next.X, next.Y) {
				continue
			}
			cost := n.cost
			if occ.Occupied(next.X, next.Y) {
				cost += occupiedPenalty
			}
			f.cells[i] = cell{
				Direction: Direction{
					Dir:      geometry.NewVector(float64(-n.dx), float64(-n.dy)).Normalize(),
					Distance: curDist + cost,
				},
				reached: true,
			}
			queue = append(queue, next)
		}
	}
	return f
}
