package simulation

import (
	"time"

	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/entity"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/flowfield"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/tilemap"
)

// UnitState is a copy of what a viewer needs to draw a unit.
type UnitState struct {
	ID       entity.ID
	Type     entity.UnitType
	Owner    string
	Center   geometry.Vector2D
	Velocity geometry.Vector2D
	Rotation float64
	Airborne bool
	Dodging  bool
	Path     []tilemap.TilePos
}

type WreckState struct {
	ID      entity.ID
	Center  geometry.Vector2D
	TowedBy entity.ID
}

// FieldArrow is one cell of a cached flow field.
type FieldArrow struct {
	Tile     tilemap.TilePos
	Dir      geometry.Vector2D
	Distance float64
}

type FieldState struct {
	Center, Destination tilemap.TilePos
	Arrows              []FieldArrow
}

// QuadNode is one quadtree node's bounds for the debug overlay.
type QuadNode struct {
	Bounds geometry.AABB
	Depth  int
	Air    bool
}

// Snapshot is a self-contained copy of the world after a tick. The grid is
// shared, not copied: the engine never mutates terrain during a tick.
type Snapshot struct {
	Now       time.Duration
	Grid      *tilemap.Grid
	Units     []UnitState
	Wrecks    []WreckState
	Buildings []entity.Building
	Fields    []FieldState
	Quadtree  []QuadNode
	Stats     Stats
}

// Snapshot copies the current world state.
func (e *Engine) Snapshot() *Snapshot {
	w := e.world
	snap := &Snapshot{
		Now:       w.Now,
		Grid:      w.Grid,
		Units:     make([]UnitState, 0, len(w.Units)),
		Wrecks:    make([]WreckState, 0, len(w.Wrecks)),
		Buildings: make([]entity.Building, 0, len(w.Buildings)),
		Stats:     e.Stats(),
	}
	for _, u := range w.Units {
		if !u.Alive() {
			continue
		}
		us := UnitState{
			ID:       u.ID,
			Type:     u.Type,
			Owner:    u.Owner,
			Center:   u.Center(),
			Velocity: u.Velocity(),
			Airborne: u.IsAirborne(),
			Dodging:  u.Dodging,
			Path:     append([]tilemap.TilePos(nil), u.Path...),
		}
		if u.Movement != nil {
			us.Rotation = u.Movement.Rotation
		}
		snap.Units = append(snap.Units, us)
	}
	for _, wr := range w.Wrecks {
		if wr.Alive() {
			snap.Wrecks = append(snap.Wrecks, WreckState{ID: wr.ID, Center: wr.Center(), TowedBy: wr.TowedBy})
		}
	}
	for _, b := range w.Buildings {
		snap.Buildings = append(snap.Buildings, *b)
	}
	for _, f := range e.flow.Fields() {
		fs := FieldState{Center: f.Center, Destination: f.Destination}
		f.Each(func(t tilemap.TilePos, d flowfield.Direction) {
			fs.Arrows = append(fs.Arrows, FieldArrow{Tile: t, Dir: d.Dir, Distance: d.Distance})
		})
		snap.Fields = append(snap.Fields, fs)
	}
	for _, air := range []bool{false, true} {
		domain := entity.DomainGround
		if air {
			domain = entity.DomainAir
		}
		e.index.Tree(domain).Walk(func(bounds geometry.AABB, depth int, _ bool) {
			snap.Quadtree = append(snap.Quadtree, QuadNode{Bounds: bounds, Depth: depth, Air: air})
		})
	}
	return snap
}
