package movement

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/entity"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/tilemap"
)

func newWorld() *entity.World {
	return entity.NewWorld(tilemap.NewGrid(8, 8))
}

func unitOn(w *entity.World, tx, ty int) *entity.Unit {
	ox, oy := tilemap.TilePos{X: tx, Y: ty}.Origin()
	u := &entity.Unit{Type: entity.TypeTank, Owner: "p1", Health: 100, MaxSpeed: 2, X: ox, Y: oy}
	w.AddUnit(u)
	return u
}

func TestMoveUnitAlongPath(t *testing.T) {
	w := newWorld()
	u := unitOn(w, 1, 1)
	next := tilemap.TilePos{X: 2, Y: 1}

	reached := MoveUnitAlongPath(u, next, entity.FrameTime, 2)
	assert.False(t, reached)
	assert.InDelta(t, 34, u.X, 1e-9)
	assert.InDelta(t, 50, u.CX, 1e-9, "center follows the position")
	assert.InDelta(t, 0, u.Movement.TargetRotation, 1e-9)
	assert.Equal(t, geometry.Vector2D{X: 2}, u.Movement.Velocity)

	reached = MoveUnitAlongPath(u, next, 2*entity.FrameTime, 2)
	assert.False(t, reached)
	assert.InDelta(t, 38, u.X, 1e-9, "the step scales with the tick length")

	for range 20 {
		if reached = MoveUnitAlongPath(u, next, entity.FrameTime, 2); reached {
			break
		}
	}
	require.True(t, reached)
	assert.Equal(t, 64.0, u.X, "snapped exactly onto the tile")
	assert.Equal(t, 32.0, u.Y)
	assert.Equal(t, next, u.Tile())
}

func TestMoveUnitAlongPathRotation(t *testing.T) {
	w := newWorld()
	u := unitOn(w, 3, 3)
	MoveUnitAlongPath(u, tilemap.TilePos{X: 3, Y: 2}, entity.FrameTime, 1)
	assert.InDelta(t, -math.Pi/2, u.Movement.TargetRotation, 1e-9)
}

func TestMoveUnitAlongPathGuards(t *testing.T) {
	w := newWorld()
	u := unitOn(w, 1, 1)
	next := tilemap.TilePos{X: 2, Y: 1}

	assert.False(t, MoveUnitAlongPath(nil, next, entity.FrameTime, 2))
	assert.False(t, MoveUnitAlongPath(u, next, 0, 2))
	assert.False(t, MoveUnitAlongPath(u, next, entity.FrameTime, 0))
	assert.Equal(t, 32.0, u.X)

	u.Movement = nil
	assert.False(t, MoveUnitAlongPath(u, next, entity.FrameTime, 2))
}

func TestCanDodge(t *testing.T) {
	w := newWorld()
	u := unitOn(w, 3, 3)
	now := 10 * time.Second

	assert.False(t, CanDodge(u, now), "no path")

	u.Path = []tilemap.TilePos{{X: 5, Y: 3}}
	u.LastMovedAt = now - time.Second
	assert.True(t, CanDodge(u, now))

	u.LastMovedAt = now - 3*time.Second
	assert.False(t, CanDodge(u, now), "parked too long")

	u.LastMovedAt = now
	u.Dodging = true
	assert.False(t, CanDodge(u, now), "already dodging")
}

func TestFindDodgePosition(t *testing.T) {
	w := newWorld()
	u := unitOn(w, 3, 3)
	u.Path = []tilemap.TilePos{{X: 5, Y: 3}}
	now := time.Second
	u.LastMovedAt = now

	for x := 2; x <= 4; x++ {
		for y := 2; y <= 4; y++ {
			if x == 3 && y == 3 || x == 4 && y == 4 {
				continue
			}
			w.Grid.Set(x, y, tilemap.Tile{Kind: tilemap.KindRock})
		}
	}

	rng := rand.New(rand.NewPCG(1, 2))
	got, ok := FindDodgePosition(u, w, now, rng)
	require.True(t, ok)
	assert.Equal(t, tilemap.TilePos{X: 4, Y: 4}, got, "the only open neighbour")

	other := unitOn(w, 4, 4)
	_, ok = FindDodgePosition(u, w, now, rng)
	assert.False(t, ok, "taken by another unit")

	w.RemoveUnit(other.ID)
	w.Occupancy.Inc(4, 4)
	_, ok = FindDodgePosition(u, w, now, rng)
	assert.False(t, ok, "claimed in the occupancy grid")
}

func TestFindDodgePositionEnclosed(t *testing.T) {
	w := newWorld()
	u := unitOn(w, 0, 0)
	u.Path = []tilemap.TilePos{{X: 5, Y: 5}}
	w.Grid.Set(1, 0, tilemap.Tile{Kind: tilemap.KindWall})
	w.Grid.Set(0, 1, tilemap.Tile{Kind: tilemap.KindWater})
	w.Grid.Set(1, 1, tilemap.Tile{Kind: tilemap.KindRock})

	_, ok := FindDodgePosition(u, w, 0, rand.New(rand.NewPCG(7, 7)))
	assert.False(t, ok, "map edges and blocked tiles on every side")
}

func TestFindDodgePositionShuffles(t *testing.T) {
	w := newWorld()
	u := unitOn(w, 3, 3)
	u.Path = []tilemap.TilePos{{X: 6, Y: 3}}

	seen := map[tilemap.TilePos]bool{}
	rng := rand.New(rand.NewPCG(3, 4))
	for range 64 {
		got, ok := FindDodgePosition(u, w, 0, rng)
		require.True(t, ok)
		assert.Equal(t, 1, max(abs(got.X-3), abs(got.Y-3)))
		seen[got] = true
	}
	assert.Greater(t, len(seen), 1)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func TestStartAndFinishDodge(t *testing.T) {
	w := newWorld()
	u := unitOn(w, 3, 3)
	u.Path = []tilemap.TilePos{{X: 5, Y: 3}}

	dodge := tilemap.TilePos{X: 3, Y: 4}
	StartDodge(u, dodge)
	assert.True(t, u.Dodging)
	assert.Equal(t, []tilemap.TilePos{dodge, {X: 5, Y: 3}}, u.Path)

	FinishDodge(u, dodge)
	assert.True(t, u.Dodging, "not there yet")

	ox, oy := dodge.Origin()
	u.SetPosition(geometry.Vector2D{X: ox, Y: oy})
	FinishDodge(u, dodge)
	assert.False(t, u.Dodging)
}

func TestTargetPoint(t *testing.T) {
	w := newWorld()
	b := &entity.Building{Type: entity.BuildingRefinery, TileX: 4, TileY: 4, Width: 2, Height: 2, Health: 1}
	w.AddBuilding(b)

	got := TargetPoint(geometry.Vector2D{X: 16, Y: 144}, b)
	assert.Equal(t, geometry.Vector2D{X: 128, Y: 144}, got, "left edge of the building")

	u := unitOn(w, 1, 1)
	assert.Equal(t, u.Center(), TargetPoint(geometry.Vector2D{}, u))

	from := geometry.Vector2D{X: 3, Y: 4}
	assert.Equal(t, from, TargetPoint(from, nil))
}
