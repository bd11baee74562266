package collision

import (
	"math"
	"time"

	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/entity"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/tilemap"
)

// wreckRestSpeed is the speed under which a sliding wreck stops.
const wreckRestSpeed = 0.01

// UpdateWreckPhysics slides every free wreck along its velocity with
// friction, stopping it instead of entering a blocked tile or leaving the
// map. Towed wrecks are left alone: their tower positions them.
func (s *System) UpdateWreckPhysics(w *entity.World, dt time.Duration) {
	if s == nil || w == nil || w.Grid == nil {
		return
	}
	frames := entity.Frames(dt)
	friction := math.Pow(s.settings.WreckFriction, frames)
	for _, wr := range w.Wrecks {
		if !wr.Alive() || wr.Towed() || wr.Velocity.IsZero() {
			continue
		}
		next := wr.Center().Add(wr.Velocity.Mul(frames))
		t := tilemap.TileAt(next.X, next.Y)
		if !inMap(next, w.Grid) || !w.Grid.Passable(t.X, t.Y) {
			wr.Velocity = geometry.Zero
			continue
		}
		wr.SetCenter(next)
		wr.Velocity = wr.Velocity.Mul(friction)
		if wr.Velocity.Len() < wreckRestSpeed {
			wr.Velocity = geometry.Zero
		}
	}
}

// UpdateWreckPositionFromTank keeps a towed wreck TowDistance behind its
// tower, opposite the tower's heading. A wreck whose tower is gone or dead is
// released.
func (s *System) UpdateWreckPositionFromTank(wr *entity.Wreck, w *entity.World) {
	if s == nil || wr == nil || w == nil || !wr.Towed() {
		return
	}
	tower, ok := w.Unit(wr.TowedBy)
	if !ok || !tower.Alive() || tower.TowingWreck != wr.ID {
		wr.TowedBy = 0
		return
	}
	heading := tower.Velocity().Normalize()
	if heading.IsZero() && tower.Movement != nil {
		heading = geometry.NewVectorPolar(1, tower.Movement.Rotation)
	}
	if heading.IsZero() {
		heading = geometry.Vector2D{X: 1}
	}
	wr.SetCenter(tower.Center().Sub(heading.Mul(s.settings.TowDistance)))
	wr.Velocity = geometry.Zero
}
