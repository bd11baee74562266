package movement

import (
	"math/rand/v2"
	"time"

	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/entity"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/tilemap"
)

// DodgeWindow is how recently a unit must have moved to be allowed to dodge.
// Units parked longer than this are left alone.
const DodgeWindow = 2 * time.Second

var neighbours = [8]tilemap.TilePos{
	{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: -1, Y: 0}, {X: 1, Y: 0},
	{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
}

// CanDodge reports whether u is eligible to step aside at time now.
func CanDodge(u *entity.Unit, now time.Duration) bool {
	if u == nil || !u.Alive() || u.IsAirborne() || u.Dodging || len(u.Path) == 0 {
		return false
	}
	return now-u.LastMovedAt <= DodgeWindow
}

// FindDodgePosition picks a free neighbouring tile for u in a random order
// drawn from rng. A tile qualifies when it is in bounds, passable for the
// unit, and nobody else stands on or claims it.
func FindDodgePosition(u *entity.Unit, w *entity.World, now time.Duration, rng *rand.Rand) (tilemap.TilePos, bool) {
	if !CanDodge(u, now) || w == nil || w.Grid == nil {
		return tilemap.TilePos{}, false
	}
	order := neighbours
	if rng != nil {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}
	here := u.Tile()
	for _, d := range order {
		t := tilemap.TilePos{X: here.X + d.X, Y: here.Y + d.Y}
		if !w.Grid.InBounds(t.X, t.Y) || !w.PassableFor(u, t.X, t.Y) {
			continue
		}
		if w.Occupancy.Occupied(t.X, t.Y) || w.UnitOnTile(t, u.ID) {
			continue
		}
		return t, true
	}
	return tilemap.TilePos{}, false
}

// StartDodge routes u through tile before resuming its path. The engine
// clears Dodging once the tile is reached.
func StartDodge(u *entity.Unit, tile tilemap.TilePos) {
	if u == nil {
		return
	}
	u.Path = append([]tilemap.TilePos{tile}, u.Path...)
	u.Dodging = true
}

// FinishDodge clears the dodge flag once the unit stands on the dodge tile.
func FinishDodge(u *entity.Unit, reached tilemap.TilePos) {
	if u != nil && u.Dodging && u.Tile() == reached {
		u.Dodging = false
	}
}
