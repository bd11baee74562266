package collision

import (
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/entity"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/geometry"
)

// AirAvoidance returns a predictive repulsion for an airborne unit. Each
// airborne neighbour inside AirAvoidanceRadius that is closing in, or is
// already inside AirMinDistance, contributes along the line between them with
// a strength blended from distance, current intrusion and how soon the
// closest approach falls inside AirMinDistance. At most AirMaxNeighbors
// neighbours are considered.
func (s *System) AirAvoidance(u *entity.Unit) geometry.Vector2D {
	if s == nil || s.index == nil || u == nil || !u.Alive() || !u.IsAirborne() {
		return geometry.Zero
	}
	radius := s.settings.AirAvoidanceRadius
	minDist := s.settings.AirMinDistance
	horizon := s.settings.AirPredictionSeconds * 60 // frames
	if radius <= 0 || minDist <= 0 {
		return geometry.Zero
	}

	me := u.Center()
	vel := u.Velocity()
	var force geometry.Vector2D
	seen := 0
	for _, other := range s.index.QueryNearby(me, radius, entity.DomainAir, u.ID) {
		if s.settings.AirMaxNeighbors > 0 && seen >= s.settings.AirMaxNeighbors {
			break
		}
		seen++

		relPos := other.Center().Sub(me)
		relVel := other.Velocity().Sub(vel)
		d := relPos.Len()
		approaching := relPos.Dot(relVel) < 0
		if !approaching && d >= minDist {
			continue
		}

		tca := 0.0
		if v2 := relVel.LenSqr(); v2 > geometry.Epsilon {
			tca = geometry.Clamp(-relPos.Dot(relVel)/v2, 0, horizon)
		}
		closest := relPos.Add(relVel.Mul(tca)).Len()

		distanceFactor := max(1-d/radius, 0)
		safetyFactor := 0.0
		if d < minDist {
			safetyFactor = (minDist - d) / minDist
		}
		timeFactor := 0.0
		if closest < minDist && horizon > 0 {
			timeFactor = 1 - tca/horizon
		}
		strength := distanceFactor + 2*safetyFactor + timeFactor
		if strength <= 0 {
			continue
		}

		away := relPos.Neg().Normalize()
		if away.IsZero() {
			away = splitNormal(u.ID, other.ID)
		}
		force = force.Add(away.Mul(strength))
	}
	return force.Mul(s.settings.AirAvoidanceWeight)
}
