package entity

import (
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/tilemap"
)

// BuildingType names a building kind.
type BuildingType string

const (
	BuildingConstructionYard BuildingType = "constructionYard"
	BuildingPowerPlant       BuildingType = "powerPlant"
	BuildingRefinery         BuildingType = "refinery"
	BuildingVehicleFactory   BuildingType = "vehicleFactory"
	BuildingHelipad          BuildingType = "helipad"
	BuildingTurret           BuildingType = "turret"
)

// Building is a static footprint of tiles.
type Building struct {
	ID     ID
	Type   BuildingType
	Owner  string
	TileX  int
	TileY  int
	Width  int
	Height int
	Health float64
}

// Rect returns the building footprint in pixels.
func (b *Building) Rect() geometry.AABB {
	return geometry.NewAABB(
		float64(b.TileX)*tilemap.TileSize,
		float64(b.TileY)*tilemap.TileSize,
		float64(b.Width)*tilemap.TileSize,
		float64(b.Height)*tilemap.TileSize,
	)
}

// Footprint satisfies Target.
func (b *Building) Footprint() geometry.AABB {
	return b.Rect()
}

// Target is anything a unit can approach for an attack: buildings expose
// their footprint, units a zero-size rectangle at their center.
type Target interface {
	Footprint() geometry.AABB
}
