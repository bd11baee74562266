package collision

import (
	"math"

	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/entity"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/tilemap"
)

// Check classifies the unit's current position: map bounds first, then its
// tile (ground units only), then the nearest closing same-domain unit, then
// (ground units only) the nearest closing wreck.
func (s *System) Check(u *entity.Unit, w *entity.World) Result {
	if s == nil || u == nil || !u.Alive() || w == nil || w.Grid == nil {
		return None{}
	}
	center := u.Center()
	if !center.IsFinite() || !inMap(center, w.Grid) {
		return BoundsHit{}
	}

	if !u.IsAirborne() {
		tile := u.Tile()
		t, _ := w.Grid.At(tile.X, tile.Y)
		switch {
		case t.TerrainBlocked():
			return TerrainHit{Tile: tile}
		case t.Kind == tilemap.KindBuilding && !w.PassableFor(u, tile.X, tile.Y):
			return BuildingHit{Tile: tile, Building: entity.ID(t.Building)}
		}
	}

	if hit, ok := s.nearestUnit(u); ok {
		return hit
	}
	if !u.IsAirborne() {
		if hit, ok := s.nearestWreck(u, w); ok {
			return hit
		}
	}
	return None{}
}

func inMap(p geometry.Vector2D, g *tilemap.Grid) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.PixelWidth() && p.Y < g.PixelHeight()
}

// closing is the approach gate: the separation vector (from the other body
// to the unit) and the unit's own velocity must not point the same way.
func closing(sep, vel geometry.Vector2D) bool {
	return sep.Dot(vel) <= 0
}

// splitNormal separates two bodies sharing a center: the lower id goes right.
func splitNormal(a, b entity.ID) geometry.Vector2D {
	if a < b {
		return geometry.Vector2D{X: 1}
	}
	return geometry.Vector2D{X: -1}
}

func (s *System) nearestUnit(u *entity.Unit) (UnitHit, bool) {
	if s.index == nil {
		return UnitHit{}, false
	}
	air := u.IsAirborne()
	minDist := s.settings.MinUnitDistance
	if air {
		minDist = s.settings.AirMinDistance
	}
	me := u.Center()
	vel := u.Velocity()

	var best UnitHit
	bestDist := math.Inf(1)
	for _, other := range s.index.QueryNearby(me, s.settings.ForceFieldRadius, u.Domain(), u.ID) {
		sep := me.Sub(other.Center())
		d := sep.Len()
		if d >= minDist || d >= bestDist || !closing(sep, vel) {
			continue
		}
		normal := sep.Normalize()
		if normal.IsZero() {
			normal = splitNormal(u.ID, other.ID)
		}
		bestDist = d
		best = UnitHit{
			Other:      other.ID,
			Normal:     normal,
			Overlap:    minDist - d,
			Speed:      vel.Len(),
			OtherSpeed: other.Speed(),
			Air:        air,
		}
	}
	return best, !math.IsInf(bestDist, 1)
}

func (s *System) nearestWreck(u *entity.Unit, w *entity.World) (WreckHit, bool) {
	me := u.Center()
	vel := u.Velocity()
	speed := vel.Len()
	minDist := s.settings.MinWreckDistance

	var best WreckHit
	bestDist := math.Inf(1)
	for _, wr := range w.Wrecks {
		if !wr.Alive() || wr.TowedBy == u.ID {
			continue
		}
		sep := me.Sub(wr.Center())
		d := sep.Len()
		if d >= minDist || d >= bestDist || !closing(sep, vel) {
			continue
		}
		normal := sep.Normalize()
		if normal.IsZero() {
			normal = vel.Normalize().Neg()
		}
		if normal.IsZero() {
			normal = geometry.Vector2D{X: 1}
		}
		overlap := minDist - d
		bestDist = d
		best = WreckHit{
			Wreck:      wr.ID,
			Normal:     normal,
			Overlap:    overlap,
			Speed:      speed,
			WreckSpeed: wr.Velocity.Len(),
			Impulse:    s.wreckImpulse(u, speed, overlap),
		}
	}
	return best, !math.IsInf(bestDist, 1)
}

func (s *System) wreckImpulse(u *entity.Unit, speed, overlap float64) float64 {
	impulse := geometry.Clamp(
		speed*s.settings.WreckSpeedFactor+overlap*s.settings.WreckOverlapFactor,
		s.settings.MinWreckImpulse,
		s.settings.MaxWreckImpulse,
	)
	if u.RemoteControlled {
		impulse *= s.settings.RemoteControlBoost
	}
	return impulse
}
