package entity

import (
	"slices"
	"time"

	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/tilemap"
)

// World is the arena of everything the engine touches in a tick. It is owned
// by the game state; the engine receives it by pointer on every call.
type World struct {
	Grid      *tilemap.Grid
	Occupancy *tilemap.Occupancy

	Units     []*Unit
	Wrecks    []*Wreck
	Buildings []*Building

	// Now is the simulation clock, advanced by the engine every tick.
	Now time.Duration

	nextID    ID
	units     map[ID]*Unit
	wrecks    map[ID]*Wreck
	buildings map[ID]*Building
}

// NewWorld creates an empty arena over a grid.
func NewWorld(grid *tilemap.Grid) *World {
	w := &World{
		Grid:      grid,
		units:     make(map[ID]*Unit),
		wrecks:    make(map[ID]*Wreck),
		buildings: make(map[ID]*Building),
	}
	if grid != nil {
		w.Occupancy = tilemap.NewOccupancy(grid.Width, grid.Height)
	}
	return w
}

func (w *World) allocID(id ID) ID {
	if id == 0 {
		w.nextID++
		return w.nextID
	}
	if id > w.nextID {
		w.nextID = id
	}
	return id
}

// AddUnit registers u, assigning an ID when it has none, and returns the ID.
func (w *World) AddUnit(u *Unit) ID {
	u.ID = w.allocID(u.ID)
	if u.Movement == nil {
		u.Movement = &Movement{}
	}
	u.UpdateCenter()
	w.Units = append(w.Units, u)
	w.units[u.ID] = u
	return u.ID
}

// RemoveUnit drops a unit and releases any wreck it was towing.
func (w *World) RemoveUnit(id ID) {
	u, ok := w.units[id]
	if !ok {
		return
	}
	if wr, ok := w.wrecks[u.TowingWreck]; ok && wr.TowedBy == id {
		wr.TowedBy = 0
	}
	delete(w.units, id)
	w.Units = slices.DeleteFunc(w.Units, func(x *Unit) bool { return x.ID == id })
}

// Unit looks a unit up by ID.
func (w *World) Unit(id ID) (*Unit, bool) {
	if w == nil {
		return nil, false
	}
	u, ok := w.units[id]
	return u, ok
}

// AddWreck registers a wreck and returns its ID.
func (w *World) AddWreck(wr *Wreck) ID {
	wr.ID = w.allocID(wr.ID)
	w.Wrecks = append(w.Wrecks, wr)
	w.wrecks[wr.ID] = wr
	return wr.ID
}

// RemoveWreck drops a wreck.
func (w *World) RemoveWreck(id ID) {
	if _, ok := w.wrecks[id]; !ok {
		return
	}
	delete(w.wrecks, id)
	w.Wrecks = slices.DeleteFunc(w.Wrecks, func(x *Wreck) bool { return x.ID == id })
}

// Wreck looks a wreck up by ID.
func (w *World) Wreck(id ID) (*Wreck, bool) {
	if w == nil {
		return nil, false
	}
	wr, ok := w.wrecks[id]
	return wr, ok
}

// AddBuilding registers a building and stamps its footprint on the grid.
func (w *World) AddBuilding(b *Building) ID {
	b.ID = w.allocID(b.ID)
	w.Buildings = append(w.Buildings, b)
	w.buildings[b.ID] = b
	w.Grid.PlaceBuilding(uint32(b.ID), b.TileX, b.TileY, b.Width, b.Height)
	return b.ID
}

// RemoveBuilding drops a building and reopens its tiles.
func (w *World) RemoveBuilding(id ID) {
	if _, ok := w.buildings[id]; !ok {
		return
	}
	delete(w.buildings, id)
	w.Buildings = slices.DeleteFunc(w.Buildings, func(x *Building) bool { return x.ID == id })
	w.Grid.ClearBuilding(uint32(id))
}

// Building looks a building up by ID.
func (w *World) Building(id ID) (*Building, bool) {
	if w == nil {
		return nil, false
	}
	b, ok := w.buildings[id]
	return b, ok
}

// AttachTow links a towing unit and a wreck in both directions.
func (w *World) AttachTow(unitID, wreckID ID) bool {
	u, okU := w.Unit(unitID)
	wr, okW := w.Wreck(wreckID)
	if !okU || !okW || wr.Towed() {
		return false
	}
	u.TowingWreck = wreckID
	wr.TowedBy = unitID
	return true
}

// ReleaseTow breaks the tow link of a unit, if any.
func (w *World) ReleaseTow(unitID ID) {
	u, ok := w.Unit(unitID)
	if !ok {
		return
	}
	if wr, ok := w.Wreck(u.TowingWreck); ok && wr.TowedBy == unitID {
		wr.TowedBy = 0
	}
	u.TowingWreck = 0
}

// RebuildOccupancy recounts live ground units per tile.
func (w *World) RebuildOccupancy() {
	if w.Occupancy == nil {
		return
	}
	w.Occupancy.Reset()
	for _, u := range w.Units {
		if !u.Alive() || u.IsAirborne() {
			continue
		}
		t := tilemap.TileAt(u.CX, u.CY)
		w.Occupancy.Inc(t.X, t.Y)
	}
}

// UnitOnTile reports whether a live ground unit other than except stands on t.
func (w *World) UnitOnTile(t tilemap.TilePos, except ID) bool {
	for _, u := range w.Units {
		if u.ID == except || !u.Alive() || u.IsAirborne() {
			continue
		}
		if u.Tile() == t {
			return true
		}
	}
	return false
}

// PassableFor reports whether u may stand on tile (x, y). Out-of-range tiles
// are blocked; a building tile is passable only for a unit type allowed to
// land on that building.
func (w *World) PassableFor(u *Unit, x, y int) bool {
	t, ok := w.Grid.At(x, y)
	if !ok {
		return false
	}
	if t.Passable() {
		return true
	}
	if t.Kind != tilemap.KindBuilding || u == nil {
		return false
	}
	b, ok := w.Building(ID(t.Building))
	return ok && u.Type.CanLandOn(b.Type)
}
