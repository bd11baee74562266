// Package scenario loads the demo maps driven by the headless runner and the
// viewer: a tile grid plus the units, buildings and wrecks placed on it.
package scenario

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/entity"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/tilemap"
)

const (
	defaultOwner          = "player"
	defaultUnitHealth     = 100
	defaultBuildingHealth = 1000
	defaultWreckHealth    = 100
)

// Default top speeds in px per frame.
var defaultSpeeds = map[entity.UnitType]float64{
	entity.TypeTank:            2,
	entity.TypeRocketTank:      2,
	entity.TypeHarvester:       1.5,
	entity.TypeRecoveryTank:    1.8,
	entity.TypeDemolitionTruck: 2.5,
	entity.TypeHelicopter:      3,
}

var ErrInvalidScenario = errors.New("invalid scenario")

//go:embed map.schema.json
var mapSchema string

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("map.schema.json", mapSchema)
})

type file struct {
	Name      string          `json:"name"`
	Grid      json.RawMessage `json:"grid"`
	Buildings []buildingSpec  `json:"buildings"`
	Wrecks    []wreckSpec     `json:"wrecks"`
	Units     []unitSpec      `json:"units"`
	Orders    []orderSpec     `json:"orders"`
}

type buildingSpec struct {
	Type   entity.BuildingType `json:"type"`
	Owner  string              `json:"owner"`
	TileX  int                 `json:"tileX"`
	TileY  int                 `json:"tileY"`
	Width  int                 `json:"width"`
	Height int                 `json:"height"`
	Health float64             `json:"health"`
}

type wreckSpec struct {
	TileX  int     `json:"tileX"`
	TileY  int     `json:"tileY"`
	Health float64 `json:"health"`
}

type unitSpec struct {
	Type             entity.UnitType `json:"type"`
	Owner            string          `json:"owner"`
	TileX            int             `json:"tileX"`
	TileY            int             `json:"tileY"`
	Health           float64         `json:"health"`
	MaxSpeed         float64         `json:"maxSpeed"`
	Airborne         bool            `json:"airborne"`
	RemoteControlled bool            `json:"remoteControlled"`
	Tow              *int            `json:"tow"`
	Ram              *int            `json:"ram"`
}

type orderSpec struct {
	Units []int `json:"units"`
	X     int   `json:"x"`
	Y     int   `json:"y"`
}

// Order is a move order issued when the scenario starts.
type Order struct {
	Units []entity.ID
	Tile  tilemap.TilePos
}

// Scenario is a populated world ready to hand to an engine.
type Scenario struct {
	Name   string
	World  *entity.World
	Orders []Order
}

// Load reads and builds a scenario file.
func Load(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	s, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return s, nil
}

// Parse validates data against the map schema and builds the world. Entities
// get IDs in file order: buildings first, then wrecks, then units.
func Parse(data []byte) (*Scenario, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode scenario json: %w", err)
	}
	sch, err := compileSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	if err := sch.Validate(raw); err != nil {
		return nil, fmt.Errorf("scenario validation failed: %w", err)
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scenario: %w", err)
	}
	grid, err := tilemap.DecodeGrid(f.Grid)
	if err != nil {
		return nil, err
	}

	w := entity.NewWorld(grid)
	for i, bs := range f.Buildings {
		if !grid.InBounds(bs.TileX, bs.TileY) || !grid.InBounds(bs.TileX+bs.Width-1, bs.TileY+bs.Height-1) {
			return nil, fmt.Errorf("%w: building %d is off the map", ErrInvalidScenario, i)
		}
		w.AddBuilding(&entity.Building{
			Type:   bs.Type,
			Owner:  orDefault(bs.Owner, defaultOwner),
			TileX:  bs.TileX,
			TileY:  bs.TileY,
			Width:  bs.Width,
			Height: bs.Height,
			Health: orDefault(bs.Health, defaultBuildingHealth),
		})
	}

	wrecks := make([]entity.ID, len(f.Wrecks))
	for i, ws := range f.Wrecks {
		if !grid.InBounds(ws.TileX, ws.TileY) {
			return nil, fmt.Errorf("%w: wreck %d is off the map", ErrInvalidScenario, i)
		}
		ox, oy := tilemap.TilePos{X: ws.TileX, Y: ws.TileY}.Origin()
		wrecks[i] = w.AddWreck(&entity.Wreck{X: ox, Y: oy, Health: orDefault(ws.Health, defaultWreckHealth)})
	}

	units := make([]entity.ID, len(f.Units))
	for i, us := range f.Units {
		u, err := buildUnit(w, us, i)
		if err != nil {
			return nil, err
		}
		units[i] = w.AddUnit(u)
		if us.Tow != nil {
			if *us.Tow >= len(wrecks) || !w.AttachTow(units[i], wrecks[*us.Tow]) {
				return nil, fmt.Errorf("%w: unit %d cannot tow wreck %d", ErrInvalidScenario, i, *us.Tow)
			}
		}
	}

	orders := make([]Order, 0, len(f.Orders))
	for i, spec := range f.Orders {
		o := Order{Tile: tilemap.TilePos{X: spec.X, Y: spec.Y}}
		for _, idx := range spec.Units {
			if idx >= len(units) {
				return nil, fmt.Errorf("%w: order %d names unit %d of %d", ErrInvalidScenario, i, idx, len(units))
			}
			o.Units = append(o.Units, units[idx])
		}
		orders = append(orders, o)
	}

	return &Scenario{Name: f.Name, World: w, Orders: orders}, nil
}

func buildUnit(w *entity.World, us unitSpec, i int) (*entity.Unit, error) {
	ox, oy := tilemap.TilePos{X: us.TileX, Y: us.TileY}.Origin()
	u := &entity.Unit{
		Type:             us.Type,
		Owner:            orDefault(us.Owner, defaultOwner),
		X:                ox,
		Y:                oy,
		Health:           orDefault(us.Health, defaultUnitHealth),
		MaxSpeed:         orDefault(us.MaxSpeed, defaultSpeeds[us.Type]),
		RemoteControlled: us.RemoteControlled,
	}
	if us.Airborne {
		if !us.Type.IsAir() {
			return nil, fmt.Errorf("%w: unit %d (%s) cannot fly", ErrInvalidScenario, i, us.Type)
		}
		u.Flight = entity.Airborne
	}
	if !w.Grid.InBounds(us.TileX, us.TileY) {
		return nil, fmt.Errorf("%w: unit %d is off the map", ErrInvalidScenario, i)
	}
	if !u.IsAirborne() && !w.PassableFor(u, us.TileX, us.TileY) {
		return nil, fmt.Errorf("%w: unit %d stands on a blocked tile (%d,%d)", ErrInvalidScenario, i, us.TileX, us.TileY)
	}
	if us.Ram != nil {
		if *us.Ram >= len(w.Buildings) {
			return nil, fmt.Errorf("%w: unit %d rams missing building %d", ErrInvalidScenario, i, *us.Ram)
		}
		u.RamMode = true
		u.RamTarget = w.Buildings[*us.Ram].ID
	}
	return u, nil
}

func orDefault[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
