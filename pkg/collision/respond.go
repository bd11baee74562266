package collision

import (
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/entity"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/tilemap"
)

// ResolveUnitCollision separates u from hit.Other. Ground pairs push the
// slower or idle party through SafeSeparate, then nudge both apart if they
// are still too close, then damp the velocity each has into the other. Air
// pairs split the overlap evenly and share the normal velocity bleed-off.
func (s *System) ResolveUnitCollision(u *entity.Unit, hit UnitHit, w *entity.World) {
	if s == nil || u == nil || w == nil {
		return
	}
	other, ok := w.Unit(hit.Other)
	if !ok || !other.Alive() || !u.Alive() {
		return
	}
	n := hit.Normal.Normalize()
	if n.IsZero() {
		return
	}
	if hit.Air {
		s.resolveAir(u, other, n, hit.Overlap)
		return
	}

	dist := geometry.Clamp(hit.Overlap*s.settings.SeparationScale, s.settings.MinSeparation, s.settings.MaxSeparation)
	if pushOther(u, other) {
		SafeSeparate(other, n.Mul(-dist), w)
	} else {
		SafeSeparate(u, n.Mul(dist), w)
	}

	minDist := s.settings.MinUnitDistance
	if gap := u.Center().DistanceTo(other.Center()); gap < minDist {
		nudge := min((minDist-gap)/2, s.settings.MaxSeparation/2)
		SafeSeparate(u, n.Mul(nudge), w)
		SafeSeparate(other, n.Mul(-nudge), w)
	}

	damping := min(s.settings.NormalDamping*(1+hit.Overlap/minDist), s.settings.MaxNormalDamping)
	dampInbound(u, n, damping)
	dampInbound(other, n.Neg(), damping)
}

// pushOther decides which party yields: a unit without orders yields to one
// with orders, otherwise the slower one yields.
func pushOther(u, other *entity.Unit) bool {
	uBusy, oBusy := u.HasOrders(), other.HasOrders()
	if uBusy != oBusy {
		return uBusy
	}
	return other.Speed() < u.Speed()
}

// dampInbound removes a fraction of the velocity component running against
// the outward normal n.
func dampInbound(u *entity.Unit, n geometry.Vector2D, fraction float64) {
	if u.Movement == nil {
		return
	}
	if vn := u.Movement.Velocity.Dot(n); vn < 0 {
		u.Movement.Velocity = u.Movement.Velocity.Sub(n.Mul(vn * fraction))
	}
}

func (s *System) resolveAir(u, other *entity.Unit, n geometry.Vector2D, overlap float64) {
	half := n.Mul(overlap / 2)
	u.SetPosition(u.Position().Add(half))
	other.SetPosition(other.Position().Sub(half))

	if u.Movement == nil || other.Movement == nil {
		return
	}
	rel := u.Movement.Velocity.Sub(other.Movement.Velocity).Dot(n)
	if rel >= 0 {
		return
	}
	share := n.Mul(rel / 2)
	u.Movement.Velocity = u.Movement.Velocity.Sub(share)
	other.Movement.Velocity = other.Movement.Velocity.Add(share)
}

// ResolveWreckCollision exchanges momentum with a wreck. A faster unit
// shoves a free wreck along the normal and recoils by a capped fraction;
// otherwise (slower unit, or towed wreck) only the unit slows down.
func (s *System) ResolveWreckCollision(u *entity.Unit, hit WreckHit, w *entity.World) {
	if s == nil || u == nil || u.Movement == nil || w == nil {
		return
	}
	wr, ok := w.Wreck(hit.Wreck)
	if !ok || !wr.Alive() {
		return
	}
	n := hit.Normal.Normalize()
	if hit.WreckSpeed < hit.Speed && !wr.Towed() {
		wr.Velocity = wr.Velocity.Add(n.Mul(-hit.Impulse))
		recoil := min(hit.Impulse*s.settings.WreckRecoilFactor, s.settings.MaxWreckRecoil)
		u.Movement.Velocity = u.Movement.Velocity.Mul(1 - recoil)
		return
	}
	u.Movement.Velocity = u.Movement.Velocity.Mul(1 - s.settings.MaxWreckRecoil)
}

// ApplyWreckCollisionResponse pushes the unit out of the wreck in proportion
// to relative speed and overlap and bleeds its current and target velocity.
func (s *System) ApplyWreckCollisionResponse(u *entity.Unit, hit WreckHit, w *entity.World) {
	if s == nil || u == nil || u.Movement == nil || w == nil {
		return
	}
	n := hit.Normal.Normalize()
	if n.IsZero() {
		return
	}
	rel := max(hit.Speed-hit.WreckSpeed, 0)
	push := min((rel+hit.Overlap)*s.settings.WreckPushback, s.settings.MaxSeparation)
	if push > 0 {
		SafeSeparate(u, n.Mul(push), w)
	}
	keep := 1 - s.settings.WreckVelocityBleed
	u.Movement.Velocity = u.Movement.Velocity.Mul(keep)
	u.Movement.TargetVelocity = u.Movement.TargetVelocity.Mul(keep)
}

// ApplyStaticObstacleCollisionResponse bounces the unit off terrain, a
// building or the map edge and moves it out along the contact normal. The
// normal runs from the offending tile center to the unit (inward from the
// crossed edge for bounds) and falls back to the reverse velocity.
func (s *System) ApplyStaticObstacleCollisionResponse(u *entity.Unit, r Result, w *entity.World) {
	if s == nil || u == nil || w == nil || w.Grid == nil {
		return
	}
	var n geometry.Vector2D
	switch hit := r.(type) {
	case TerrainHit:
		n = awayFromTile(u, hit.Tile)
	case BuildingHit:
		n = awayFromTile(u, hit.Tile)
	case BoundsHit:
		n = inwardNormal(u.Center(), w.Grid)
	default:
		return
	}
	if n.IsZero() {
		n = u.Velocity().Normalize().Neg()
	}
	if n.IsZero() {
		n = towardOpenNeighbour(u, w)
	}
	n = n.Normalize()

	if m := u.Movement; m != nil {
		if vn := m.Velocity.Dot(n); vn < 0 {
			bounce := geometry.Clamp(-vn, s.settings.MinBounce, s.settings.MaxBounce)
			m.Velocity = m.Velocity.Sub(n.Mul(vn)).Add(n.Mul(bounce))
		}
		if tn := m.TargetVelocity.Dot(n); tn < 0 {
			m.TargetVelocity = m.TargetVelocity.Sub(n.Mul(tn))
		}
	}
	SafeSeparate(u, n.Mul(s.settings.MaxSeparation), w)
}

func awayFromTile(u *entity.Unit, t tilemap.TilePos) geometry.Vector2D {
	cx, cy := t.Center()
	return u.Center().Sub(geometry.Vector2D{X: cx, Y: cy}).Normalize()
}

// towardOpenNeighbour points at the first 4-neighbour tile, in E W S N order,
// the unit may stand on. An enclosed unit gets +X.
func towardOpenNeighbour(u *entity.Unit, w *entity.World) geometry.Vector2D {
	t := u.Tile()
	for _, d := range [...]geometry.Vector2D{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}} {
		if w.PassableFor(u, t.X+int(d.X), t.Y+int(d.Y)) {
			return d
		}
	}
	return geometry.Vector2D{X: 1}
}

// inwardNormal points back into the map from the edge the point crossed.
func inwardNormal(p geometry.Vector2D, g *tilemap.Grid) geometry.Vector2D {
	var n geometry.Vector2D
	switch {
	case p.X < 0:
		n.X = 1
	case p.X >= g.PixelWidth():
		n.X = -1
	}
	switch {
	case p.Y < 0:
		n.Y = 1
	case p.Y >= g.PixelHeight():
		n.Y = -1
	}
	return n.Normalize()
}
