// Package simulation wires the movement core into a running world: the Engine
// advances one tick in the fixed order index, steer, move, collide, wrecks,
// cache; the WorldActor serializes ticks, orders and tuning through a goakt
// mailbox and feeds snapshots to a UI.
package simulation

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/collision"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/entity"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/flowfield"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/movement"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/spatial"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/steering"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/tilemap"
)

var (
	ErrNoWorld     = errors.New("world has no grid")
	ErrUnknownUnit = errors.New("unknown unit")
	ErrNoPath      = errors.New("no path to destination")
)

// unitRestSpeed is the speed under which a freely moving unit stops.
const unitRestSpeed = 0.01

// Pathfinder is the long-range path search the engine consumes. It returns
// the tiles to walk from start to goal, or nothing when goal is unreachable.
type Pathfinder interface {
	FindPath(start, goal tilemap.TilePos, grid *tilemap.Grid, occ *tilemap.Occupancy) []tilemap.TilePos
}

// PathfinderFunc adapts a function to Pathfinder.
type PathfinderFunc func(start, goal tilemap.TilePos, grid *tilemap.Grid, occ *tilemap.Occupancy) []tilemap.TilePos

func (f PathfinderFunc) FindPath(start, goal tilemap.TilePos, grid *tilemap.Grid, occ *tilemap.Occupancy) []tilemap.TilePos {
	return f(start, goal, grid, occ)
}

// Stats are running totals since the engine was created, plus the current
// population.
type Stats struct {
	Ticks       uint64
	Units       int
	Airborne    int
	Wrecks      int
	FlowFields  int
	UnitHits    int
	StaticHits  int
	WreckHits   int
	Detonations int
	Dodges      int
	Evictions   int
}

// Engine owns the per-world subsystems. It is not safe for concurrent use.
type Engine struct {
	world *entity.World
	cfg   Config

	index *spatial.Index
	flow  *flowfield.Manager
	steer *steering.Behaviors
	coll  *collision.System

	pathfinder Pathfinder
	detonator  collision.Detonator
	logger     log.Logger
	rng        *rand.Rand

	stats Stats
	moved []step
}

type step struct {
	unit *entity.Unit
	from geometry.Vector2D
}

// Option configures an Engine.
type Option func(*Engine)

func WithLogger(l log.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithDetonator plugs in the ram detonation of demolition trucks.
func WithDetonator(d collision.Detonator) Option {
	return func(e *Engine) {
		e.detonator = d
	}
}

func WithPathfinder(p Pathfinder) Option {
	return func(e *Engine) {
		e.pathfinder = p
	}
}

// NewEngine builds the subsystems for world from cfg. The flow-field cache
// runs on the simulation clock, so a replay with the same ticks yields the
// same cache behavior.
func NewEngine(world *entity.World, cfg *Config, opts ...Option) (*Engine, error) {
	if world == nil || world.Grid == nil {
		return nil, ErrNoWorld
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	e := &Engine{
		world:  world,
		cfg:    *cfg,
		logger: log.DiscardLogger,
	}
	for _, opt := range opts {
		opt(e)
	}

	epoch := time.Unix(0, 0)
	e.rng = rand.New(rand.NewPCG(cfg.DodgeSeed, cfg.DodgeSeed^0x9e3779b97f4a7c15))
	e.index = spatial.NewIndex(world.Grid.PixelWidth(), world.Grid.PixelHeight(), cfg.Spatial)
	e.flow = flowfield.NewManager(cfg.FlowField, flowfield.WithClock(func() time.Time {
		return epoch.Add(world.Now)
	}))
	e.steer = steering.New(cfg.Steering, e.index, e.flow)

	collOpts := []collision.Option{collision.WithPolicy(cfg.Detonation)}
	if e.detonator != nil {
		collOpts = append(collOpts, collision.WithDetonator(collision.DetonatorFunc(e.detonate)))
	}
	e.coll = collision.NewSystem(cfg.Collision, e.index, collOpts...)
	return e, nil
}

func (e *Engine) World() *entity.World { return e.world }

func (e *Engine) Index() *spatial.Index { return e.index }

func (e *Engine) FlowFields() *flowfield.Manager { return e.flow }

func (e *Engine) Config() Config { return e.cfg }

// Configure applies new tuning to the running subsystems. Spatial settings
// only take effect on a new engine.
func (e *Engine) Configure(cfg *Config) {
	if cfg == nil {
		return
	}
	spatialSettings := e.cfg.Spatial
	e.cfg = *cfg
	e.cfg.Spatial = spatialSettings

	e.steer.SetSettings(cfg.Steering)
	e.coll.SetSettings(cfg.Collision)
	e.coll.SetPolicy(cfg.Detonation)
	if cfg.FlowField != e.flow.Settings() {
		e.flow.SetSettings(cfg.FlowField)
	}
}

func (e *Engine) detonate(u *entity.Unit, w *entity.World) bool {
	if !e.detonator.Detonate(u, w) {
		return false
	}
	e.stats.Detonations++
	e.logger.Debugf("unit %d detonated at tile %v", u.ID, u.Tile())
	return true
}

// Tick advances the world by dt.
func (e *Engine) Tick(dt time.Duration) {
	if dt <= 0 {
		return
	}
	w := e.world
	w.Now += dt
	e.stats.Ticks++

	e.index.Rebuild(w.Units)
	w.RebuildOccupancy()

	for _, u := range w.Units {
		if !u.Alive() || u.Movement == nil {
			continue
		}
		u.Movement.TargetVelocity = geometry.Zero
		var force geometry.Vector2D
		if u.IsAirborne() {
			force = e.coll.AirAvoidance(u)
		} else {
			force = e.steer.CalculateSteeringForces(u, w)
		}
		steering.ApplySteeringForces(u, force, dt)
	}

	e.moved = e.moved[:0]
	for _, u := range w.Units {
		if !u.Alive() || u.Movement == nil {
			continue
		}
		from := u.Position()
		e.advance(u, dt)
		e.moved = append(e.moved, step{unit: u, from: from})
	}

	e.index.Rebuild(w.Units)
	for _, s := range e.moved {
		if s.unit.Alive() {
			e.collide(s.unit, s.from)
		}
	}
	for _, s := range e.moved {
		if s.unit.Position().DistanceSquaredTo(s.from) > geometry.Epsilon {
			s.unit.LastMovedAt = w.Now
		}
	}

	e.coll.UpdateWreckPhysics(w, dt)
	for _, wr := range w.Wrecks {
		if wr.Towed() {
			e.coll.UpdateWreckPositionFromTank(wr, w)
		}
	}

	if n := e.flow.Cleanup(); n > 0 {
		e.stats.Evictions += n
		e.logger.Debugf("evicted %d expired flow fields", n)
	}
}

// advance moves one unit: path followers step toward their next tile and
// drift by the steering output; everyone else integrates velocity with
// friction.
func (e *Engine) advance(u *entity.Unit, dt time.Duration) {
	m := u.Movement
	frames := entity.Frames(dt)

	if len(u.Path) > 0 {
		next := u.Path[0]
		if movement.MoveUnitAlongPath(u, next, dt, u.MaxSpeed) {
			u.Path = u.Path[1:]
			movement.FinishDodge(u, next)
			if len(u.Path) == 0 {
				u.MoveTarget = nil
				u.Dodging = false
				steering.ClearFormation(u)
				u.Stop()
			}
		}
		if !m.TargetVelocity.IsZero() {
			u.SetPosition(u.Position().Add(m.TargetVelocity.Mul(frames)))
		}
		m.Rotation = m.TargetRotation
		return
	}

	v := m.Velocity.Add(m.TargetVelocity).Mul(math.Pow(e.cfg.Friction, frames))
	if u.MaxSpeed > 0 {
		v = v.Limit(u.MaxSpeed)
	}
	if v.Len() < unitRestSpeed {
		v = geometry.Zero
	}
	m.Velocity = v
	m.CurrentSpeed = v.Len()
	if v.IsZero() {
		return
	}
	m.TargetRotation = v.Angle()
	m.Rotation = m.TargetRotation
	u.SetPosition(u.Position().Add(v.Mul(frames)))
}

func (e *Engine) collide(u *entity.Unit, from geometry.Vector2D) {
	w := e.world
	switch hit := e.coll.Check(u, w).(type) {
	case collision.BuildingHit:
		if e.coll.HandleBuildingCollision(u, hit, w) {
			return
		}
		e.static(u, from)
	case collision.TerrainHit, collision.BoundsHit:
		e.static(u, from)
	case collision.UnitHit:
		e.stats.UnitHits++
		e.coll.ResolveUnitCollision(u, hit, w)
		e.dodge(u, hit)
	case collision.WreckHit:
		e.stats.WreckHits++
		if e.coll.HandleWreckRam(u, hit, w) {
			return
		}
		e.coll.ResolveWreckCollision(u, hit, w)
		e.coll.ApplyWreckCollisionResponse(u, hit, w)
	}
}

// static slides along a blocked move and bounces off whatever still blocks
// the unit afterwards.
func (e *Engine) static(u *entity.Unit, from geometry.Vector2D) {
	e.stats.StaticHits++
	collision.SlideMove(u, from, e.world)
	if r := e.coll.Check(u, e.world); collision.Static(r) {
		e.coll.ApplyStaticObstacleCollisionResponse(u, r, e.world)
	}
}

// dodge steps a path follower aside when it runs into a unit that is not
// going anywhere.
func (e *Engine) dodge(u *entity.Unit, hit collision.UnitHit) {
	if hit.Air || hit.OtherSpeed >= e.cfg.Steering.MinMovingSpeed {
		return
	}
	tile, ok := movement.FindDodgePosition(u, e.world, e.world.Now, e.rng)
	if !ok {
		return
	}
	movement.StartDodge(u, tile)
	e.stats.Dodges++
}

// OrderMove sends units toward tile. A group gets a formation around the
// tile and each member paths to its own slot; airborne units fly straight.
// It fails with ErrUnknownUnit for a missing or dead unit, and with
// ErrNoPath when no unit can reach its destination.
func (e *Engine) OrderMove(ids []entity.ID, tile tilemap.TilePos) error {
	w := e.world
	if !w.Grid.InBounds(tile.X, tile.Y) {
		return fmt.Errorf("%w: tile %v is off the map", ErrNoPath, tile)
	}
	units := make([]*entity.Unit, 0, len(ids))
	for _, id := range ids {
		u, ok := w.Unit(id)
		if !ok || !u.Alive() {
			return fmt.Errorf("%w: %d", ErrUnknownUnit, id)
		}
		units = append(units, u)
	}
	if len(units) == 0 {
		return nil
	}
	if len(units) > 1 {
		e.steer.UpdateFormationCenter(units, tile)
	} else {
		steering.ClearFormation(units...)
	}

	unreachable := 0
	for _, u := range units {
		goal := e.slotTile(u, tile)
		path, ok := e.route(u, goal)
		if !ok {
			unreachable++
			e.logger.Debugf("unit %d cannot reach tile %v", u.ID, goal)
			continue
		}
		if len(path) == 0 {
			u.Path, u.MoveTarget = nil, nil
			continue
		}
		u.Path = path
		u.MoveTarget = &goal
		u.Dodging = false
		u.LastMovedAt = w.Now
	}
	if unreachable == len(units) {
		return fmt.Errorf("%w: tile %v", ErrNoPath, tile)
	}
	return nil
}

// slotTile is the tile under the unit's formation slot, or tile itself when
// the slot is off the map or blocked for the unit.
func (e *Engine) slotTile(u *entity.Unit, tile tilemap.TilePos) tilemap.TilePos {
	if u.Formation == nil {
		return tile
	}
	p := u.Formation.Center.Add(u.Formation.Offset)
	slot := tilemap.TileAt(p.X, p.Y)
	if !u.IsAirborne() && !e.world.PassableFor(u, slot.X, slot.Y) {
		return tile
	}
	if !e.world.Grid.InBounds(slot.X, slot.Y) {
		return tile
	}
	return slot
}

func (e *Engine) route(u *entity.Unit, goal tilemap.TilePos) ([]tilemap.TilePos, bool) {
	start := u.Tile()
	if start == goal {
		return nil, true
	}
	if u.IsAirborne() {
		return []tilemap.TilePos{goal}, true
	}
	if e.pathfinder == nil {
		return nil, false
	}
	path := e.pathfinder.FindPath(start, goal, e.world.Grid, e.world.Occupancy)
	if len(path) > 0 && path[0] == start {
		path = path[1:]
	}
	return path, len(path) > 0
}

// Stats returns the running totals with the current population.
func (e *Engine) Stats() Stats {
	s := e.stats
	for _, u := range e.world.Units {
		if !u.Alive() {
			continue
		}
		s.Units++
		if u.IsAirborne() {
			s.Airborne++
		}
	}
	for _, wr := range e.world.Wrecks {
		if wr.Alive() {
			s.Wrecks++
		}
	}
	s.FlowFields = e.flow.Len()
	return s
}
