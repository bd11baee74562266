package scenario

import (
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/entity"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/tilemap"
)

const (
	blastRadius = 1.5 * tilemap.TileSize
	blastDamage = 400.0
)

// Detonate blows a demolition truck up: the truck dies and every building
// and wreck within blastRadius of its center takes blastDamage. Buildings
// keep their footprint at zero health so terrain never changes mid-run.
func Detonate(u *entity.Unit, w *entity.World) bool {
	if !u.Alive() || w == nil {
		return false
	}
	c := u.Center()
	u.Health = 0
	u.Stop()
	w.ReleaseTow(u.ID)

	for _, b := range w.Buildings {
		if b.Rect().IntersectsCircle(c, blastRadius) {
			b.Health = max(0, b.Health-blastDamage)
		}
	}
	for _, wr := range w.Wrecks {
		if wr.Alive() && wr.Center().DistanceTo(c) <= blastRadius {
			wr.Health = max(0, wr.Health-blastDamage)
		}
	}
	return true
}
