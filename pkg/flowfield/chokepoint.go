// Package flowfield finds narrow corridors on the tile grid and builds small,
// cached wavefront direction fields that guide units through them.
package flowfield

import (
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/tilemap"
)

// Axis is the direction a corridor runs along.
type Axis uint8

const (
	// AxisHorizontal corridors are walled north and south.
	AxisHorizontal Axis = iota
	// AxisVertical corridors are walled west and east.
	AxisVertical
)

func (a Axis) String() string {
	if a == AxisVertical {
		return "vertical"
	}
	return "horizontal"
}

// Chokepoint describes the corridor cross-section through a tile.
type Chokepoint struct {
	Center tilemap.TilePos
	Axis   Axis
	// Width counts the passable tiles between the two walls, the tile itself included.
	Width int
}

// Detect reports whether (tx, ty) is a chokepoint: a passable tile blocked
// both north and south (horizontal corridor) or both west and east (vertical
// corridor). The cross-section across the qualifying axis is then measured
// outward and must not exceed maxWidth. A tile enclosed on all four sides is
// reported as horizontal.
func Detect(tx, ty int, grid *tilemap.Grid, maxWidth int) (Chokepoint, bool) {
	if maxWidth < 1 || !grid.Passable(tx, ty) {
		return Chokepoint{}, false
	}
	center := tilemap.TilePos{X: tx, Y: ty}

	blocked := func(x, y int) bool { return !grid.Passable(x, y) }
	if blocked(tx, ty-1) && blocked(tx, ty+1) {
		if w, ok := crossSection(grid, tx, ty, 0, 1, maxWidth); ok {
			return Chokepoint{Center: center, Axis: AxisHorizontal, Width: w}, true
		}
	}
	if blocked(tx-1, ty) && blocked(tx+1, ty) {
		if w, ok := crossSection(grid, tx, ty, 1, 0, maxWidth); ok {
			return Chokepoint{Center: center, Axis: AxisVertical, Width: w}, true
		}
	}
	return Chokepoint{}, false
}

// crossSection walks from (tx, ty) in +d and -d until both walks hit a
// blocked tile, returning the passable width. ok is false when the width
// exceeds maxWidth before both walls are found.
func crossSection(grid *tilemap.Grid, tx, ty, dx, dy, maxWidth int) (int, bool) {
	width := 1
	fwdOpen, backOpen := true, true
	for step := 1; fwdOpen || backOpen; step++ {
		if fwdOpen {
			if grid.Passable(tx+dx*step, ty+dy*step) {
				width++
			} else {
				fwdOpen = false
			}
		}
		if backOpen {
			if grid.Passable(tx-dx*step, ty-dy*step) {
				width++
			} else {
				backOpen = false
			}
		}
		if width > maxWidth {
			return width, false
		}
	}
	return width, true
}
