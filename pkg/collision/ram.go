package collision

import (
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/entity"
)

// HandleBuildingCollision lets a demolition truck detonate instead of
// bouncing. It fires when the truck is in ram mode against this building, or
// when it is remotely driven at RamSpeedRatio of its top speed into an enemy
// building (any building if the policy allows friendly ones). It returns
// whether the detonator reported a detonation.
func (s *System) HandleBuildingCollision(u *entity.Unit, hit BuildingHit, w *entity.World) bool {
	if s == nil || s.detonator == nil || u == nil || !u.Alive() || u.Type != entity.TypeDemolitionTruck {
		return false
	}
	b, ok := w.Building(hit.Building)
	if !ok {
		return false
	}
	armed := u.RamMode && u.RamTarget == b.ID
	if !armed && s.rammingAtSpeed(u) {
		armed = b.Owner != u.Owner || s.policy.FriendlyBuildings
	}
	if !armed {
		return false
	}
	return s.detonator.Detonate(u, w)
}

// HandleWreckRam applies the same rule to wrecks, which only count when the
// policy enables them.
func (s *System) HandleWreckRam(u *entity.Unit, hit WreckHit, w *entity.World) bool {
	if s == nil || s.detonator == nil || !s.policy.Wrecks || u == nil || !u.Alive() || u.Type != entity.TypeDemolitionTruck {
		return false
	}
	if _, ok := w.Wreck(hit.Wreck); !ok {
		return false
	}
	if !s.rammingAtSpeed(u) && !u.RamMode {
		return false
	}
	return s.detonator.Detonate(u, w)
}

func (s *System) rammingAtSpeed(u *entity.Unit) bool {
	return u.RemoteControlled && u.MaxSpeed > 0 && u.Speed() >= s.settings.RamSpeedRatio*u.MaxSpeed
}
