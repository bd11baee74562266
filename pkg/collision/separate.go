package collision

import (
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/entity"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/tilemap"
)

// safeSeparationAttempts is the number of tries SafeSeparate makes, halving
// the displacement after each rejected one.
const safeSeparationAttempts = 5

// SafeSeparate moves u by delta when the destination is safe, retrying at
// half the magnitude on rejection. A destination is safe when the unit's
// center stays on its current tile or lands on a tile it may stand on.
// Airborne units are moved unconditionally. When every attempt is rejected
// the unit is left exactly where it was and false is returned.
func SafeSeparate(u *entity.Unit, delta geometry.Vector2D, w *entity.World) bool {
	if u == nil || !delta.IsFinite() || delta.IsZero() {
		return false
	}
	if u.IsAirborne() {
		u.SetPosition(u.Position().Add(delta))
		return true
	}
	if w == nil || w.Grid == nil {
		return false
	}
	origin := u.Position()
	current := u.Tile()
	for range safeSeparationAttempts {
		candidate := origin.Add(delta)
		if safeAt(u, candidate, current, w) {
			u.SetPosition(candidate)
			return true
		}
		delta = delta.Mul(0.5)
	}
	u.SetPosition(origin)
	return false
}

func safeAt(u *entity.Unit, topLeft geometry.Vector2D, current tilemap.TilePos, w *entity.World) bool {
	t := tilemap.TileAt(topLeft.X+tilemap.TileSize/2, topLeft.Y+tilemap.TileSize/2)
	return t == current || w.PassableFor(u, t.X, t.Y)
}

// SlideMove recovers from a blocked move from the top-left position from to
// the unit's current position. It keeps the X component of the move if that
// alone is free, else the Y component, zeroing the velocity on the dropped
// axis. If neither axis is free the unit is rolled back to from and stopped.
// It returns whether any motion was kept.
func SlideMove(u *entity.Unit, from geometry.Vector2D, w *entity.World) bool {
	if u == nil || w == nil || w.Grid == nil {
		return false
	}
	to := u.Position()
	free := func(p geometry.Vector2D) bool {
		c := geometry.Vector2D{X: p.X + tilemap.TileSize/2, Y: p.Y + tilemap.TileSize/2}
		if !inMap(c, w.Grid) {
			return false
		}
		if u.IsAirborne() {
			return true
		}
		t := tilemap.TileAt(c.X, c.Y)
		return w.PassableFor(u, t.X, t.Y)
	}

	if to.X != from.X {
		if p := (geometry.Vector2D{X: to.X, Y: from.Y}); free(p) {
			u.SetPosition(p)
			if u.Movement != nil {
				u.Movement.Velocity.Y = 0
			}
			return true
		}
	}
	if to.Y != from.Y {
		if p := (geometry.Vector2D{X: from.X, Y: to.Y}); free(p) {
			u.SetPosition(p)
			if u.Movement != nil {
				u.Movement.Velocity.X = 0
			}
			return true
		}
	}
	u.SetPosition(from)
	u.Stop()
	return false
}
