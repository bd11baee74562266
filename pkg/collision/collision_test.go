package collision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/entity"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/spatial"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/tilemap"
)

type fixture struct {
	world *entity.World
	index *spatial.Index
	sys   *System
}

func newFixture(opts ...Option) *fixture {
	world := entity.NewWorld(tilemap.NewGrid(10, 10))
	index := spatial.NewIndex(world.Grid.PixelWidth(), world.Grid.PixelHeight(), spatial.DefaultSettings())
	return &fixture{world: world, index: index, sys: NewSystem(DefaultSettings(), index, opts...)}
}

func (f *fixture) add(typ entity.UnitType, cx, cy float64, vel geometry.Vector2D) *entity.Unit {
	u := &entity.Unit{
		Type:     typ,
		Owner:    "p1",
		Health:   100,
		MaxSpeed: 2,
		X:        cx - tilemap.TileSize/2,
		Y:        cy - tilemap.TileSize/2,
		Movement: &entity.Movement{Velocity: vel},
	}
	if typ.IsAir() {
		u.Flight = entity.Airborne
	}
	f.world.AddUnit(u)
	return u
}

func (f *fixture) wall(x, y int) {
	f.world.Grid.Set(x, y, tilemap.Tile{Kind: tilemap.KindWall})
}

func (f *fixture) rebuild() {
	f.index.Rebuild(f.world.Units)
	f.world.RebuildOccupancy()
}

func TestCheckStatic(t *testing.T) {
	f := newFixture()
	f.wall(3, 3)
	f.world.Grid.Set(5, 5, tilemap.Tile{Kind: tilemap.KindWater})
	refinery := f.world.AddBuilding(&entity.Building{Type: entity.BuildingRefinery, TileX: 7, TileY: 1, Width: 1, Height: 1, Health: 1})
	f.world.AddBuilding(&entity.Building{Type: entity.BuildingHelipad, TileX: 7, TileY: 7, Width: 1, Height: 1, Health: 1})

	tests := []struct {
		name   string
		typ    entity.UnitType
		cx, cy float64
		want   Result
	}{
		{"open", entity.TypeTank, 48, 48, None{}},
		{"wall", entity.TypeTank, 112, 112, TerrainHit{Tile: tilemap.TilePos{X: 3, Y: 3}}},
		{"water", entity.TypeTank, 176, 176, TerrainHit{Tile: tilemap.TilePos{X: 5, Y: 5}}},
		{"building", entity.TypeTank, 240, 48, BuildingHit{Tile: tilemap.TilePos{X: 7, Y: 1}, Building: refinery}},
		{"left the map", entity.TypeTank, -4, 48, BoundsHit{}},
		{"past the bottom", entity.TypeTank, 48, 321, BoundsHit{}},
		{"tank on helipad", entity.TypeTank, 240, 240, BuildingHit{Tile: tilemap.TilePos{X: 7, Y: 7}, Building: 2}},
		{"airborne over wall", entity.TypeHelicopter, 112, 112, None{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := f.add(tt.typ, tt.cx, tt.cy, geometry.Zero)
			defer f.world.RemoveUnit(u.ID)
			assert.Equal(t, tt.want, f.sys.Check(u, f.world))
		})
	}

	heli := f.add(entity.TypeHelicopter, 240, 240, geometry.Zero)
	heli.Flight = entity.Grounded
	assert.Equal(t, None{}, f.sys.Check(heli, f.world), "helicopters land on helipads")
}

func TestCheckUnitHit(t *testing.T) {
	f := newFixture()
	a := f.add(entity.TypeTank, 100, 100, geometry.Vector2D{X: 1})
	b := f.add(entity.TypeTank, 120, 100, geometry.Zero)
	f.rebuild()

	got, ok := f.sys.Check(a, f.world).(UnitHit)
	require.True(t, ok)
	assert.Equal(t, b.ID, got.Other)
	assert.InDelta(t, 8, got.Overlap, 1e-9)
	assert.InDelta(t, -1, got.Normal.X, 1e-9)
	assert.InDelta(t, 1, got.Speed, 1e-9)
	assert.False(t, got.Air)

	a.Movement.Velocity = geometry.Vector2D{X: -1}
	assert.Equal(t, None{}, f.sys.Check(a, f.world), "moving away is not a collision")
}

func TestCheckPicksNearest(t *testing.T) {
	f := newFixture()
	a := f.add(entity.TypeTank, 100, 100, geometry.Zero)
	f.add(entity.TypeTank, 124, 100, geometry.Zero)
	near := f.add(entity.TypeTank, 100, 115, geometry.Zero)
	f.rebuild()

	got, ok := f.sys.Check(a, f.world).(UnitHit)
	require.True(t, ok)
	assert.Equal(t, near.ID, got.Other)
}

func TestCheckAirPair(t *testing.T) {
	f := newFixture()
	a := f.add(entity.TypeHelicopter, 100, 100, geometry.Zero)
	f.add(entity.TypeHelicopter, 135, 100, geometry.Zero)
	f.add(entity.TypeTank, 100, 110, geometry.Zero)
	f.rebuild()

	got, ok := f.sys.Check(a, f.world).(UnitHit)
	require.True(t, ok)
	assert.True(t, got.Air)
	assert.InDelta(t, 5, got.Overlap, 1e-9, "air pairs use the air minimum distance")
}

func TestCheckWreckHit(t *testing.T) {
	f := newFixture()
	u := f.add(entity.TypeTank, 100, 100, geometry.Vector2D{X: 2})
	wid := f.world.AddWreck(&entity.Wreck{X: 104, Y: 84, Health: 10})
	f.rebuild()

	got, ok := f.sys.Check(u, f.world).(WreckHit)
	require.True(t, ok)
	assert.Equal(t, wid, got.Wreck)
	assert.InDelta(t, 14, got.Overlap, 1e-9)
	assert.InDelta(t, 2*0.6+14*0.05, got.Impulse, 1e-9)

	u.RemoteControlled = true
	got = f.sys.Check(u, f.world).(WreckHit)
	assert.InDelta(t, (2*0.6+14*0.05)*1.5, got.Impulse, 1e-9)

	u.Movement.Velocity = geometry.Vector2D{X: 20}
	got = f.sys.Check(u, f.world).(WreckHit)
	assert.InDelta(t, 3*1.5, got.Impulse, 1e-9, "impulse is clamped before the boost")

	wr, _ := f.world.Wreck(wid)
	wr.TowedBy = u.ID
	assert.Equal(t, None{}, f.sys.Check(u, f.world), "a tower never hits its own wreck")
}

func TestCheckSafeOnMissingState(t *testing.T) {
	var s *System
	assert.Equal(t, None{}, s.Check(&entity.Unit{Health: 1}, nil))

	f := newFixture()
	dead := f.add(entity.TypeTank, 100, 100, geometry.Zero)
	dead.Health = 0
	assert.Equal(t, None{}, f.sys.Check(dead, f.world))
	assert.Equal(t, None{}, f.sys.Check(nil, f.world))
	assert.False(t, Collided(None{}))
	assert.True(t, Collided(BoundsHit{}))
	assert.True(t, Static(TerrainHit{}))
	assert.False(t, Static(UnitHit{}))
}

func TestResolveUnitCollisionPushesIdleUnit(t *testing.T) {
	f := newFixture()
	mover := f.add(entity.TypeTank, 100, 100, geometry.Vector2D{X: 1})
	mover.Path = []tilemap.TilePos{{X: 8, Y: 3}}
	idle := f.add(entity.TypeTank, 120, 100, geometry.Zero)
	f.rebuild()

	hit := f.sys.Check(mover, f.world).(UnitHit)
	before := mover.Center()
	f.sys.ResolveUnitCollision(mover, hit, f.world)

	assert.Greater(t, idle.CX, 120.0, "the idle unit yields")
	assert.Greater(t, idle.Center().DistanceTo(mover.Center()), 20.0)
	assert.LessOrEqual(t, mover.Center().DistanceTo(before), 2.0+1e-9, "the mover only takes the final nudge")
	assert.Less(t, mover.Movement.Velocity.X, 1.0, "inbound velocity is damped")
	assert.Greater(t, mover.Movement.Velocity.X, 0.0, "but not zeroed")
}

func TestResolveAirCollisionIsSymmetric(t *testing.T) {
	f := newFixture()
	a := f.add(entity.TypeHelicopter, 100, 100, geometry.Vector2D{X: 1})
	b := f.add(entity.TypeHelicopter, 130, 100, geometry.Vector2D{X: -1})
	f.rebuild()

	hit := f.sys.Check(a, f.world).(UnitHit)
	f.sys.ResolveUnitCollision(a, hit, f.world)

	assert.InDelta(t, 95, a.CX, 1e-9)
	assert.InDelta(t, 135, b.CX, 1e-9)
	assert.InDelta(t, 0, a.Movement.Velocity.X, 1e-9)
	assert.InDelta(t, 0, b.Movement.Velocity.X, 1e-9)
}

func TestSafeSeparate(t *testing.T) {
	t.Run("halves until safe", func(t *testing.T) {
		f := newFixture()
		f.wall(3, 2)
		u := f.add(entity.TypeTank, 80, 80, geometry.Zero)
		require.True(t, SafeSeparate(u, geometry.Vector2D{X: 40}, f.world))
		assert.InDelta(t, 90, u.CX, 1e-9)
	})
	t.Run("rolls back when every try is blocked", func(t *testing.T) {
		f := newFixture()
		for x := 3; x < 10; x++ {
			f.wall(x, 2)
		}
		u := f.add(entity.TypeTank, 80, 80, geometry.Zero)
		assert.False(t, SafeSeparate(u, geometry.Vector2D{X: 1024}, f.world))
		assert.Equal(t, 80.0, u.CX)
		assert.Equal(t, 64.0, u.X)
	})
	t.Run("airborne ignores terrain", func(t *testing.T) {
		f := newFixture()
		f.wall(3, 2)
		u := f.add(entity.TypeHelicopter, 80, 80, geometry.Zero)
		require.True(t, SafeSeparate(u, geometry.Vector2D{X: 40}, f.world))
		assert.InDelta(t, 120, u.CX, 1e-9)
	})
}

func TestSlideMove(t *testing.T) {
	tests := []struct {
		name    string
		walls   [][2]int
		want    geometry.Vector2D
		moved   bool
		wantVel geometry.Vector2D
	}{
		{"keeps x", [][2]int{{3, 3}}, geometry.Vector2D{X: 96, Y: 64}, true, geometry.Vector2D{X: 1}},
		{"keeps y", [][2]int{{3, 3}, {3, 2}}, geometry.Vector2D{X: 64, Y: 96}, true, geometry.Vector2D{Y: 1}},
		{"rolls back", [][2]int{{3, 3}, {3, 2}, {2, 3}}, geometry.Vector2D{X: 64, Y: 64}, false, geometry.Zero},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			for _, w := range tt.walls {
				f.wall(w[0], w[1])
			}
			u := f.add(entity.TypeTank, 80, 80, geometry.Vector2D{X: 1, Y: 1})
			from := u.Position()
			u.SetPosition(geometry.Vector2D{X: 96, Y: 96})

			assert.Equal(t, tt.moved, SlideMove(u, from, f.world))
			assert.Equal(t, tt.want, u.Position())
			assert.Equal(t, tt.wantVel, u.Movement.Velocity)
		})
	}
}

func TestStaticResponseReducesPenetration(t *testing.T) {
	f := newFixture()
	f.wall(3, 3)
	u := f.add(entity.TypeTank, 120, 112, geometry.Vector2D{X: -1})

	r := f.sys.Check(u, f.world)
	require.IsType(t, TerrainHit{}, r)
	before := u.CX - 112
	f.sys.ApplyStaticObstacleCollisionResponse(u, r, f.world)

	assert.Greater(t, u.CX-112, before, "moved out along the normal")
	assert.InDelta(t, 1, u.Movement.Velocity.X, 1e-9, "bounced")
}

func TestStaticResponseBoundsAndFallback(t *testing.T) {
	f := newFixture()
	u := f.add(entity.TypeTank, -6, 100, geometry.Vector2D{X: -0.1})
	r := f.sys.Check(u, f.world)
	require.Equal(t, BoundsHit{}, r)
	f.sys.ApplyStaticObstacleCollisionResponse(u, r, f.world)
	assert.Greater(t, u.CX, -6.0)
	assert.InDelta(t, 0.3, u.Movement.Velocity.X, 1e-9, "bounce clamps to the minimum")

	f.wall(5, 5)
	center := f.add(entity.TypeTank, 176, 176, geometry.Vector2D{X: 1})
	r = f.sys.Check(center, f.world)
	f.sys.ApplyStaticObstacleCollisionResponse(center, r, f.world)
	assert.Less(t, center.CX, 176.0, "falls back to the reverse of the velocity")
}

func TestStaticResponseIdleOnTileCenter(t *testing.T) {
	f := newFixture()
	f.wall(5, 5)
	f.wall(6, 5)
	idle := f.add(entity.TypeTank, 176, 176, geometry.Zero)
	r := f.sys.Check(idle, f.world)
	require.Equal(t, TerrainHit{Tile: tilemap.TilePos{X: 5, Y: 5}}, r)

	f.sys.ApplyStaticObstacleCollisionResponse(idle, r, f.world)
	assert.Less(t, idle.CX, 176.0, "east is walled, so it heads west")
	assert.Equal(t, 176.0, idle.CY)

	f.wall(4, 5)
	f.wall(5, 4)
	f.wall(5, 6)
	boxed := f.add(entity.TypeTank, 176, 176, geometry.Zero)
	f.sys.ApplyStaticObstacleCollisionResponse(boxed, f.sys.Check(boxed, f.world), f.world)
	assert.Greater(t, boxed.CX, 176.0, "enclosed units still move off the tile center")
}

func TestWreckResponses(t *testing.T) {
	f := newFixture()
	u := f.add(entity.TypeTank, 100, 100, geometry.Vector2D{X: 2})
	wid := f.world.AddWreck(&entity.Wreck{X: 104, Y: 84, Health: 10})
	f.rebuild()

	hit := f.sys.Check(u, f.world).(WreckHit)
	f.sys.ResolveWreckCollision(u, hit, f.world)
	wr, _ := f.world.Wreck(wid)
	assert.Greater(t, wr.Velocity.X, 0.0, "the wreck is shoved away")
	assert.Less(t, u.Movement.Velocity.X, 2.0)

	u.Movement.TargetVelocity = geometry.Vector2D{X: 1}
	vx := u.Movement.Velocity.X
	f.sys.ApplyWreckCollisionResponse(u, hit, f.world)
	assert.Less(t, u.CX, 100.0, "pushed back")
	assert.InDelta(t, vx*0.7, u.Movement.Velocity.X, 1e-9)
	assert.InDelta(t, 0.7, u.Movement.TargetVelocity.X, 1e-9)
}

func TestSlowUnitOnlyDecelerates(t *testing.T) {
	f := newFixture()
	u := f.add(entity.TypeTank, 100, 100, geometry.Vector2D{X: 0.5})
	wid := f.world.AddWreck(&entity.Wreck{X: 104, Y: 84, Health: 10, Velocity: geometry.Vector2D{X: -1}})
	f.rebuild()

	hit := f.sys.Check(u, f.world).(WreckHit)
	f.sys.ResolveWreckCollision(u, hit, f.world)
	wr, _ := f.world.Wreck(wid)
	assert.Equal(t, geometry.Vector2D{X: -1}, wr.Velocity)
	assert.InDelta(t, 0.25, u.Movement.Velocity.X, 1e-9)
}

func TestAirAvoidance(t *testing.T) {
	f := newFixture()
	a := f.add(entity.TypeHelicopter, 100, 100, geometry.Vector2D{X: 1})
	f.add(entity.TypeHelicopter, 170, 100, geometry.Vector2D{X: -1})
	f.rebuild()

	got := f.sys.AirAvoidance(a)
	assert.Less(t, got.X, 0.0, "steers away from the oncoming helicopter")

	a.Movement.Velocity = geometry.Vector2D{X: -3}
	f.world.Units[1].Movement.Velocity = geometry.Vector2D{X: 3}
	assert.True(t, f.sys.AirAvoidance(a).IsZero(), "diverging and outside the minimum distance")

	tank := f.add(entity.TypeTank, 100, 100, geometry.Vector2D{X: 1})
	assert.True(t, f.sys.AirAvoidance(tank).IsZero())
}

func TestAirAvoidanceNeighbourCap(t *testing.T) {
	f := newFixture()
	s := DefaultSettings()
	s.AirMaxNeighbors = 1
	f.sys.SetSettings(s)
	a := f.add(entity.TypeHelicopter, 150, 150, geometry.Zero)
	f.add(entity.TypeHelicopter, 170, 150, geometry.Zero)
	f.add(entity.TypeHelicopter, 130, 150, geometry.Zero)
	f.rebuild()

	got := f.sys.AirAvoidance(a)
	assert.False(t, got.IsZero(), "only one of two symmetric neighbours is counted")
}

func TestWreckPhysics(t *testing.T) {
	f := newFixture()
	free := &entity.Wreck{X: 64, Y: 64, Health: 10, Velocity: geometry.Vector2D{X: 2}}
	towed := &entity.Wreck{X: 160, Y: 160, Health: 10, Velocity: geometry.Vector2D{X: 2}, TowedBy: 99}
	f.world.AddWreck(free)
	f.world.AddWreck(towed)

	f.sys.UpdateWreckPhysics(f.world, entity.FrameTime)
	assert.InDelta(t, 66, free.X, 1e-9)
	assert.InDelta(t, 2*0.92, free.Velocity.X, 1e-9)
	assert.Equal(t, 160.0, towed.X, "towed wrecks are driven by their tower only")
	assert.Equal(t, 160.0, towed.Y)

	f.wall(3, 2)
	free.SetCenter(geometry.Vector2D{X: 95, Y: 80})
	free.Velocity = geometry.Vector2D{X: 3}
	f.sys.UpdateWreckPhysics(f.world, entity.FrameTime)
	assert.Equal(t, 95.0, free.Center().X, "stops at the wall")
	assert.True(t, free.Velocity.IsZero())
}

func TestUpdateWreckPositionFromTank(t *testing.T) {
	f := newFixture()
	tower := f.add(entity.TypeRecoveryTank, 160, 160, geometry.Vector2D{X: 1})
	wid := f.world.AddWreck(&entity.Wreck{X: 0, Y: 0, Health: 10})
	require.True(t, f.world.AttachTow(tower.ID, wid))
	wr, _ := f.world.Wreck(wid)

	f.sys.UpdateWreckPositionFromTank(wr, f.world)
	assert.InDelta(t, 160-26, wr.Center().X, 1e-9)
	assert.InDelta(t, 160, wr.Center().Y, 1e-9)

	tower.Health = 0
	f.sys.UpdateWreckPositionFromTank(wr, f.world)
	assert.False(t, wr.Towed(), "a dead tower releases its wreck")
}

func TestHandleBuildingCollision(t *testing.T) {
	var detonated []entity.ID
	det := DetonatorFunc(func(u *entity.Unit, _ *entity.World) bool {
		detonated = append(detonated, u.ID)
		return true
	})

	f := newFixture(WithDetonator(det))
	enemy := f.world.AddBuilding(&entity.Building{Type: entity.BuildingPowerPlant, Owner: "p2", TileX: 5, TileY: 5, Width: 1, Height: 1, Health: 1})
	own := f.world.AddBuilding(&entity.Building{Type: entity.BuildingPowerPlant, Owner: "p1", TileX: 7, TileY: 7, Width: 1, Height: 1, Health: 1})

	truck := f.add(entity.TypeDemolitionTruck, 176, 176, geometry.Vector2D{X: 1})
	tank := f.add(entity.TypeTank, 176, 176, geometry.Vector2D{X: 2})
	tank.RemoteControlled = true

	assert.False(t, f.sys.HandleBuildingCollision(truck, BuildingHit{Building: enemy}, f.world), "neither armed nor fast")

	truck.RamMode, truck.RamTarget = true, enemy
	assert.True(t, f.sys.HandleBuildingCollision(truck, BuildingHit{Building: enemy}, f.world))
	assert.False(t, f.sys.HandleBuildingCollision(truck, BuildingHit{Building: own}, f.world), "ram mode targets one building")

	truck.RamMode = false
	truck.RemoteControlled = true
	truck.Movement.Velocity = geometry.Vector2D{X: 1.95}
	assert.True(t, f.sys.HandleBuildingCollision(truck, BuildingHit{Building: enemy}, f.world))
	assert.False(t, f.sys.HandleBuildingCollision(truck, BuildingHit{Building: own}, f.world))

	f.sys.SetPolicy(DetonationPolicy{FriendlyBuildings: true})
	assert.True(t, f.sys.HandleBuildingCollision(truck, BuildingHit{Building: own}, f.world))

	truck.Movement.Velocity = geometry.Vector2D{X: 1.5}
	assert.False(t, f.sys.HandleBuildingCollision(truck, BuildingHit{Building: enemy}, f.world), "too slow")

	assert.False(t, f.sys.HandleBuildingCollision(tank, BuildingHit{Building: enemy}, f.world), "only demolition trucks ram")
	assert.Len(t, detonated, 3)
}

func TestHandleWreckRamFollowsPolicy(t *testing.T) {
	calls := 0
	f := newFixture(WithDetonator(DetonatorFunc(func(*entity.Unit, *entity.World) bool {
		calls++
		return true
	})))
	truck := f.add(entity.TypeDemolitionTruck, 100, 100, geometry.Vector2D{X: 2})
	truck.RemoteControlled = true
	wid := f.world.AddWreck(&entity.Wreck{X: 104, Y: 84, Health: 10})

	assert.False(t, f.sys.HandleWreckRam(truck, WreckHit{Wreck: wid}, f.world))
	f.sys.SetPolicy(DetonationPolicy{Wrecks: true})
	assert.True(t, f.sys.HandleWreckRam(truck, WreckHit{Wreck: wid}, f.world))
	assert.Equal(t, 1, calls)
}
