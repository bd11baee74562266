// Package movement holds the per-unit helpers the engine uses between
// steering and collision: stepping along a path, dodging out of the way of
// blocked traffic, and choosing where to aim when approaching a target.
package movement

import (
	"time"

	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/entity"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/tilemap"
)

// MoveUnitAlongPath advances u toward the center of next by speed pixels per
// reference frame, scaled by delta. It sets the unit's velocity and target
// rotation toward the tile and, once the tile is within one step, snaps the
// unit exactly onto it and reports true.
func MoveUnitAlongPath(u *entity.Unit, next tilemap.TilePos, delta time.Duration, speed float64) bool {
	if u == nil || u.Movement == nil || speed <= 0 || delta <= 0 {
		return false
	}
	tx, ty := next.Center()
	to := geometry.Vector2D{X: tx, Y: ty}.Sub(u.Center())
	dist := to.Len()
	step := speed * entity.Frames(delta)

	m := u.Movement
	if dist > geometry.Epsilon {
		m.TargetRotation = to.Angle()
	}
	if dist <= step {
		ox, oy := next.Origin()
		u.SetPosition(geometry.Vector2D{X: ox, Y: oy})
		return true
	}

	dir := to.Mul(1 / dist)
	m.Velocity = dir.Mul(speed)
	m.CurrentSpeed = speed
	u.SetPosition(u.Position().Add(dir.Mul(step)))
	return false
}

// TargetPoint returns where a unit at from should aim to reach target: the
// closest point on a building's perimeter, or the center of a point target
// such as a unit.
func TargetPoint(from geometry.Vector2D, target entity.Target) geometry.Vector2D {
	if target == nil {
		return from
	}
	return target.Footprint().ClosestPerimeterPoint(from)
}
