// Package tilemap holds the tile grid and the occupancy grid the movement
// engine reads. Cells are normalized into a small enum when the map is
// loaded so passability checks never inspect raw map data.
package tilemap

import (
	"errors"
	"math"
)

// TileSize is the edge length of a tile in pixels.
const TileSize = 32.0

var ErrInvalidGrid = errors.New("invalid tile grid")

// Kind classifies a tile.
type Kind uint8

const (
	KindOpen Kind = iota
	KindWater
	KindRock
	KindWall // legacy numeric code 1
	KindSeedCrystal
	KindBuilding
)

func (k Kind) String() string {
	switch k {
	case KindOpen:
		return "open"
	case KindWater:
		return "water"
	case KindRock:
		return "rock"
	case KindWall:
		return "wall"
	case KindSeedCrystal:
		return "seed-crystal"
	case KindBuilding:
		return "building"
	default:
		return "unknown"
	}
}

// Tile is one normalized map cell. Building is only meaningful for KindBuilding.
type Tile struct {
	Kind     Kind
	Building uint32
}

// TerrainBlocked reports water, rock, seed crystals and legacy walls.
func (t Tile) TerrainBlocked() bool {
	switch t.Kind {
	case KindWater, KindRock, KindWall, KindSeedCrystal:
		return true
	}
	return false
}

// Passable reports whether a ground unit may stand on the tile.
func (t Tile) Passable() bool {
	return t.Kind == KindOpen
}

// TilePos addresses a tile by column (X) and row (Y).
type TilePos struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Center returns the pixel center of the tile.
func (p TilePos) Center() (float64, float64) {
	return float64(p.X)*TileSize + TileSize/2, float64(p.Y)*TileSize + TileSize/2
}

// Origin returns the pixel top-left corner of the tile.
func (p TilePos) Origin() (float64, float64) {
	return float64(p.X) * TileSize, float64(p.Y) * TileSize
}

// TileAt converts a pixel position into the tile containing it.
func TileAt(px, py float64) TilePos {
	return TilePos{X: int(math.Floor(px / TileSize)), Y: int(math.Floor(py / TileSize))}
}

// Grid is a dense row-major tile map.
type Grid struct {
	Width  int
	Height int
	tiles  []Tile
}

// NewGrid creates an all-open grid.
func NewGrid(width, height int) *Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Grid{
		Width:  width,
		Height: height,
		tiles:  make([]Tile, width*height),
	}
}

// InBounds reports whether (x, y) addresses a tile of the grid.
func (g *Grid) InBounds(x, y int) bool {
	return g != nil && x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

// At returns the tile at (x, y); ok is false outside the grid.
func (g *Grid) At(x, y int) (Tile, bool) {
	if !g.InBounds(x, y) {
		return Tile{}, false
	}
	return g.tiles[y*g.Width+x], true
}

// Set replaces the tile at (x, y). Out-of-range writes are ignored.
func (g *Grid) Set(x, y int, t Tile) {
	if !g.InBounds(x, y) {
		return
	}
	g.tiles[y*g.Width+x] = t
}

// Passable reports whether (x, y) is inside the grid and open.
// Out-of-range coordinates are blocked.
func (g *Grid) Passable(x, y int) bool {
	t, ok := g.At(x, y)
	return ok && t.Passable()
}

// Blocked is the negation of Passable.
func (g *Grid) Blocked(x, y int) bool {
	return !g.Passable(x, y)
}

// PixelWidth returns the map width in pixels.
func (g *Grid) PixelWidth() float64 {
	if g == nil {
		return 0
	}
	return float64(g.Width) * TileSize
}

// PixelHeight returns the map height in pixels.
func (g *Grid) PixelHeight() float64 {
	if g == nil {
		return 0
	}
	return float64(g.Height) * TileSize
}

// PlaceBuilding stamps a building footprint onto the grid.
func (g *Grid) PlaceBuilding(id uint32, x, y, w, h int) {
	for ty := y; ty < y+h; ty++ {
		for tx := x; tx < x+w; tx++ {
			g.Set(tx, ty, Tile{Kind: KindBuilding, Building: id})
		}
	}
}

// ClearBuilding reopens every tile owned by the building.
func (g *Grid) ClearBuilding(id uint32) {
	if g == nil {
		return
	}
	for i, t := range g.tiles {
		if t.Kind == KindBuilding && t.Building == id {
			g.tiles[i] = Tile{}
		}
	}
}
