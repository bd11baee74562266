// Package collision detects and resolves unit interpenetration with terrain,
// buildings, map bounds, other units and wrecks. Every entry point is a no-op
// on missing state; out-of-range tiles count as blocked.
package collision

import (
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/entity"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/spatial"
)

// Settings holds every physical tuning constant. Distances are pixels,
// speeds pixels per 60fps frame.
type Settings struct {
	ForceFieldRadius float64 `json:"forceFieldRadius"`
	MinUnitDistance  float64 `json:"minUnitDistance"`
	MinWreckDistance float64 `json:"minWreckDistance"`

	SeparationScale float64 `json:"separationScale"`
	MinSeparation   float64 `json:"minSeparation"`
	MaxSeparation   float64 `json:"maxSeparation"`

	NormalDamping    float64 `json:"normalDamping"`
	MaxNormalDamping float64 `json:"maxNormalDamping"`

	WreckSpeedFactor   float64 `json:"wreckSpeedFactor"`
	WreckOverlapFactor float64 `json:"wreckOverlapFactor"`
	MinWreckImpulse    float64 `json:"minWreckImpulse"`
	MaxWreckImpulse    float64 `json:"maxWreckImpulse"`
	RemoteControlBoost float64 `json:"remoteControlBoost"`
	WreckRecoilFactor  float64 `json:"wreckRecoilFactor"`
	MaxWreckRecoil     float64 `json:"maxWreckRecoil"`
	WreckPushback      float64 `json:"wreckPushback"`
	WreckVelocityBleed float64 `json:"wreckVelocityBleed"`
	WreckFriction      float64 `json:"wreckFriction"`
	TowDistance        float64 `json:"towDistance"`

	MinBounce float64 `json:"minBounce"`
	MaxBounce float64 `json:"maxBounce"`

	AirAvoidanceRadius   float64 `json:"airAvoidanceRadius"`
	AirMinDistance       float64 `json:"airMinDistance"`
	AirMaxNeighbors      int     `json:"airMaxNeighbors"`
	AirPredictionSeconds float64 `json:"airPredictionSeconds"`
	AirAvoidanceWeight   float64 `json:"airAvoidanceWeight"`

	// RamSpeedRatio is the fraction of top speed a remotely driven
	// demolition truck must reach to detonate on contact.
	RamSpeedRatio float64 `json:"ramSpeedRatio"`
}

func DefaultSettings() Settings {
	return Settings{
		ForceFieldRadius:     48,
		MinUnitDistance:      28,
		MinWreckDistance:     34,
		SeparationScale:      0.5,
		MinSeparation:        0.5,
		MaxSeparation:        4,
		NormalDamping:        0.5,
		MaxNormalDamping:     0.8,
		WreckSpeedFactor:     0.6,
		WreckOverlapFactor:   0.05,
		MinWreckImpulse:      0.3,
		MaxWreckImpulse:      3,
		RemoteControlBoost:   1.5,
		WreckRecoilFactor:    0.3,
		MaxWreckRecoil:       0.5,
		WreckPushback:        0.5,
		WreckVelocityBleed:   0.3,
		WreckFriction:        0.92,
		TowDistance:          26,
		MinBounce:            0.3,
		MaxBounce:            2.5,
		AirAvoidanceRadius:   80,
		AirMinDistance:       40,
		AirMaxNeighbors:      8,
		AirPredictionSeconds: 1.5,
		AirAvoidanceWeight:   0.6,
		RamSpeedRatio:        0.95,
	}
}

// DetonationPolicy widens the ram rule. With both fields false a truck only
// detonates on its ram target or, when remotely driven, on enemy buildings.
type DetonationPolicy struct {
	FriendlyBuildings bool `json:"friendlyBuildings"`
	Wrecks            bool `json:"wrecks"`
}

// Detonator performs the detonation of a ramming unit. It reports whether the
// unit actually blew up.
type Detonator interface {
	Detonate(u *entity.Unit, w *entity.World) bool
}

// DetonatorFunc adapts a function to Detonator.
type DetonatorFunc func(u *entity.Unit, w *entity.World) bool

func (f DetonatorFunc) Detonate(u *entity.Unit, w *entity.World) bool {
	return f(u, w)
}

// System bundles the settings with the spatial index it queries.
type System struct {
	settings  Settings
	index     *spatial.Index
	detonator Detonator
	policy    DetonationPolicy
}

// Option configures a System.
type Option func(*System)

func WithDetonator(d Detonator) Option {
	return func(s *System) {
		s.detonator = d
	}
}

func WithPolicy(p DetonationPolicy) Option {
	return func(s *System) {
		s.policy = p
	}
}

func NewSystem(settings Settings, index *spatial.Index, opts ...Option) *System {
	s := &System{settings: settings, index: index}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *System) Settings() Settings {
	return s.settings
}

func (s *System) SetSettings(settings Settings) {
	s.settings = settings
}

func (s *System) Policy() DetonationPolicy {
	return s.policy
}

func (s *System) SetPolicy(p DetonationPolicy) {
	s.policy = p
}
