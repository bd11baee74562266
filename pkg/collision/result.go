package collision

import (
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/entity"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/tilemap"
)

// Result is the outcome of Check. It is one of None, TerrainHit, BuildingHit,
// BoundsHit, UnitHit or WreckHit.
type Result interface {
	isResult()
}

// None means the unit may stay where it is.
type None struct{}

// TerrainHit is a unit standing on water, rock, a seed crystal or a wall.
type TerrainHit struct {
	Tile tilemap.TilePos
}

// BuildingHit is a unit standing on a building it may not land on.
type BuildingHit struct {
	Tile     tilemap.TilePos
	Building entity.ID
}

// BoundsHit is a unit whose center left the map.
type BoundsHit struct{}

// UnitHit is the nearest same-domain unit closer than the minimum distance.
// Normal points from the other unit toward the checked one.
type UnitHit struct {
	Other      entity.ID
	Normal     geometry.Vector2D
	Overlap    float64
	Speed      float64
	OtherSpeed float64
	Air        bool
}

// WreckHit is the nearest wreck closer than the wreck distance. Normal points
// from the wreck toward the unit; Impulse is already clamped and boosted.
type WreckHit struct {
	Wreck      entity.ID
	Normal     geometry.Vector2D
	Overlap    float64
	Speed      float64
	WreckSpeed float64
	Impulse    float64
}

func (None) isResult()        {}
func (TerrainHit) isResult()  {}
func (BuildingHit) isResult() {}
func (BoundsHit) isResult()   {}
func (UnitHit) isResult()     {}
func (WreckHit) isResult()    {}

// Collided reports whether r is anything but None.
func Collided(r Result) bool {
	if r == nil {
		return false
	}
	_, none := r.(None)
	return !none
}

// Static reports terrain, building and bounds hits.
func Static(r Result) bool {
	switch r.(type) {
	case TerrainHit, BuildingHit, BoundsHit:
		return true
	}
	return false
}
