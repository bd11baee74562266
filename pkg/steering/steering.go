// Package steering computes the per-unit flocking force: separation,
// alignment, cohesion, formation keeping, obstacle lookahead and chokepoint
// flow fields, summed and clamped.
package steering

import (
	"time"

	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/entity"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/flowfield"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/spatial"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/tilemap"
)

// Settings controls the weights and radii of every behavior. Passing it to
// New (or SetSettings) lets the rules change at runtime.
type Settings struct {
	SeparationRadius   float64 `json:"separationRadius"`
	SeparationWeight   float64 `json:"separationWeight"`
	MaxSeparationForce float64 `json:"maxSeparationForce"`

	AlignmentRadius float64 `json:"alignmentRadius"`
	AlignmentWeight float64 `json:"alignmentWeight"`

	CohesionRadius float64 `json:"cohesionRadius"`
	CohesionWeight float64 `json:"cohesionWeight"`

	// MinMovingSpeed excludes idle neighbours from alignment and cohesion.
	MinMovingSpeed float64 `json:"minMovingSpeed"`

	FormationWeight  float64 `json:"formationWeight"`
	FormationSpacing float64 `json:"formationSpacing"`

	ObstacleProbes int     `json:"obstacleProbes"`
	ObstacleWeight float64 `json:"obstacleWeight"`

	FlowFieldWeight float64 `json:"flowFieldWeight"`

	MaxSteeringForce float64 `json:"maxSteeringForce"`
}

func DefaultSettings() Settings {
	return Settings{
		SeparationRadius:   28,
		SeparationWeight:   1.5,
		MaxSeparationForce: 2,
		AlignmentRadius:    64,
		AlignmentWeight:    0.3,
		CohesionRadius:     96,
		CohesionWeight:     0.2,
		MinMovingSpeed:     0.1,
		FormationWeight:    0.8,
		FormationSpacing:   40,
		ObstacleProbes:     3,
		ObstacleWeight:     1.2,
		FlowFieldWeight:    1,
		MaxSteeringForce:   2.5,
	}
}

// Behaviors computes steering forces against a spatial index and an optional
// flow-field manager. Neighbour queries borrow the index buffer, so a
// Behaviors value must not be shared across goroutines.
type Behaviors struct {
	settings Settings
	index    *spatial.Index
	flow     *flowfield.Manager
}

func New(settings Settings, index *spatial.Index, flow *flowfield.Manager) *Behaviors {
	return &Behaviors{settings: settings, index: index, flow: flow}
}

func (b *Behaviors) Settings() Settings {
	return b.settings
}

func (b *Behaviors) SetSettings(s Settings) {
	b.settings = s
}

// CalculateSteeringForces sums every behavior and clamps the result to
// MaxSteeringForce. Airborne units, idle units without orders and a missing
// index all yield zero.
func (b *Behaviors) CalculateSteeringForces(u *entity.Unit, w *entity.World) geometry.Vector2D {
	if b == nil || b.index == nil || w == nil || u == nil || u.Movement == nil {
		return geometry.Zero
	}
	if !u.Alive() || u.IsAirborne() {
		return geometry.Zero
	}
	if u.Velocity().IsZero() && !u.HasOrders() {
		return geometry.Zero
	}

	force := b.Separation(u).
		Add(b.Alignment(u)).
		Add(b.Cohesion(u)).
		Add(b.FormationCohesion(u)).
		Add(b.ObstacleAvoidance(u, w)).
		Add(b.FlowFieldSteering(u, w))
	return force.Limit(b.settings.MaxSteeringForce)
}

// Separation pushes away from every live neighbour inside SeparationRadius,
// whatever its owner. Each neighbour contributes a unit vector weighted by
// (r-d)/r; the averaged direction is scaled by the mean weight.
func (b *Behaviors) Separation(u *entity.Unit) geometry.Vector2D {
	r := b.settings.SeparationRadius
	if r <= 0 {
		return geometry.Zero
	}
	me := u.Center()
	var sum geometry.Vector2D
	var falloff float64
	count := 0
	for _, other := range b.index.QueryNearby(me, r, u.Domain(), u.ID) {
		d := me.DistanceTo(other.Center())
		if d >= r {
			continue
		}
		away := me.Sub(other.Center())
		if away.IsZero() {
			// stacked units split along x, lower id to the right
			away = geometry.Vector2D{X: 1}
			if u.ID > other.ID {
				away.X = -1
			}
		}
		weight := (r - d) / r
		sum = sum.Add(away.Normalize().Mul(weight))
		falloff += weight
		count++
	}
	if count == 0 {
		return geometry.Zero
	}
	n := float64(count)
	return sum.Mul(1 / n).Normalize().
		Mul(falloff / n * b.settings.SeparationWeight).
		Limit(b.settings.MaxSeparationForce)
}

// Alignment steers toward the mean velocity of moving same-owner neighbours.
func (b *Behaviors) Alignment(u *entity.Unit) geometry.Vector2D {
	var avg geometry.Vector2D
	count := 0
	for _, other := range b.flockmates(u, b.settings.AlignmentRadius) {
		avg = avg.Add(other.Velocity())
		count++
	}
	if count == 0 {
		return geometry.Zero
	}
	steer := avg.Mul(1 / float64(count)).Sub(u.Velocity())
	return steer.Normalize().Mul(b.settings.AlignmentWeight)
}

// Cohesion steers toward the centroid of moving same-owner neighbours.
func (b *Behaviors) Cohesion(u *entity.Unit) geometry.Vector2D {
	var centroid geometry.Vector2D
	count := 0
	for _, other := range b.flockmates(u, b.settings.CohesionRadius) {
		centroid = centroid.Add(other.Center())
		count++
	}
	if count == 0 {
		return geometry.Zero
	}
	steer := centroid.Mul(1 / float64(count)).Sub(u.Center())
	return steer.Normalize().Mul(b.settings.CohesionWeight)
}

// flockmates filters the borrowed query result in place.
func (b *Behaviors) flockmates(u *entity.Unit, radius float64) []*entity.Unit {
	if radius <= 0 {
		return nil
	}
	me := u.Center()
	rSq := radius * radius
	found := b.index.QueryNearby(me, radius, u.Domain(), u.ID)
	out := found[:0]
	for _, other := range found {
		if other.Owner != u.Owner || other.Speed() <= b.settings.MinMovingSpeed {
			continue
		}
		if me.DistanceSquaredTo(other.Center()) > rSq {
			continue
		}
		out = append(out, other)
	}
	return out
}

// FormationCohesion steers toward the assigned slot and goes quiet within
// half a tile of it.
func (b *Behaviors) FormationCohesion(u *entity.Unit) geometry.Vector2D {
	if u.Formation == nil {
		return geometry.Zero
	}
	slot := u.Formation.Center.Add(u.Formation.Offset)
	diff := slot.Sub(u.Center())
	if diff.Len() <= tilemap.TileSize/2 {
		return geometry.Zero
	}
	return diff.Normalize().Mul(b.settings.FormationWeight)
}

// ObstacleAvoidance probes ahead along the heading and, on the first blocked
// probe, steers toward the free side. Closer probes weigh more.
func (b *Behaviors) ObstacleAvoidance(u *entity.Unit, w *entity.World) geometry.Vector2D {
	vel := u.Velocity()
	if vel.IsZero() || w == nil || w.Grid == nil {
		return geometry.Zero
	}
	n := b.settings.ObstacleProbes
	if n <= 0 {
		return geometry.Zero
	}
	heading := vel.Normalize()
	perp := heading.Perp()
	center := u.Center()
	own := u.Tile()

	for i := 1; i <= n; i++ {
		probe := center.Add(heading.Mul(float64(i) * tilemap.TileSize))
		if !blockedAt(u, w, probe, own) {
			continue
		}
		weight := float64(n-i+1) / float64(n)

		leftBlocked := blockedAt(u, w, probe.Add(perp.Mul(tilemap.TileSize)), own)
		rightBlocked := blockedAt(u, w, probe.Sub(perp.Mul(tilemap.TileSize)), own)

		var steer geometry.Vector2D
		switch {
		case leftBlocked && rightBlocked:
			steer = heading.Neg()
		case rightBlocked:
			steer = perp
		case leftBlocked:
			steer = perp.Neg()
		case preferLeft(u.ID):
			steer = perp
		default:
			steer = perp.Neg()
		}
		return steer.Mul(b.settings.ObstacleWeight * weight)
	}
	return geometry.Zero
}

func blockedAt(u *entity.Unit, w *entity.World, p geometry.Vector2D, own tilemap.TilePos) bool {
	t := tilemap.TileAt(p.X, p.Y)
	if !w.PassableFor(u, t.X, t.Y) {
		return true
	}
	return t != own && w.Occupancy.Occupied(t.X, t.Y)
}

// preferLeft is a stable per-unit coin flip (Knuth multiplicative hash).
func preferLeft(id entity.ID) bool {
	return (uint32(id)*2654435761)>>16&1 == 0
}

// FlowFieldSteering follows the chokepoint flow field toward the move target.
func (b *Behaviors) FlowFieldSteering(u *entity.Unit, w *entity.World) geometry.Vector2D {
	if b.flow == nil || u.MoveTarget == nil || w == nil {
		return geometry.Zero
	}
	d, ok := b.flow.FlowDirectionForUnit(u, *u.MoveTarget, w.Grid, w.Occupancy)
	if !ok {
		return geometry.Zero
	}
	return d.Dir.Mul(b.settings.FlowFieldWeight)
}

// ApplySteeringForces folds force into the unit's target velocity, scaled by
// the tick length in 60fps frames.
func ApplySteeringForces(u *entity.Unit, force geometry.Vector2D, dt time.Duration) {
	if u == nil || u.Movement == nil || !force.IsFinite() {
		return
	}
	u.Movement.TargetVelocity = u.Movement.TargetVelocity.Add(force.Mul(entity.Frames(dt)))
}
