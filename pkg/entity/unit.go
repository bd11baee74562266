// Package entity defines the per-tick simulation records the movement engine
// mutates (units, wrecks, buildings) and the World arena that owns them.
// Relations between records are expressed as IDs, never as pointers.
package entity

import (
	"time"

	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/tilemap"
)

// FrameTime is the reference frame per-frame velocities are expressed in.
const FrameTime = time.Second / 60

// Frames converts a tick duration into reference frames (1.0 at 60fps).
func Frames(dt time.Duration) float64 {
	return float64(dt) / float64(FrameTime)
}

// ID identifies a unit, wreck or building inside its World. Zero means "none".
type ID uint32

// UnitType selects per-type movement and collision rules.
type UnitType string

const (
	TypeTank            UnitType = "tank"
	TypeRocketTank      UnitType = "rocketTank"
	TypeHarvester       UnitType = "harvester"
	TypeRecoveryTank    UnitType = "recoveryTank"
	TypeDemolitionTruck UnitType = "demolitionTruck"
	TypeHelicopter      UnitType = "helicopter"
)

// IsAir reports unit types that can leave the ground.
func (t UnitType) IsAir() bool {
	return t == TypeHelicopter
}

// CanLandOn reports whether this unit type may stand on tiles of the given
// building type (helicopters on helipads).
func (t UnitType) CanLandOn(buildingType BuildingType) bool {
	return t == TypeHelicopter && buildingType == BuildingHelipad
}

// FlightState is only meaningful for air unit types.
type FlightState uint8

const (
	Grounded FlightState = iota
	Airborne
)

// Domain separates the ground and air collision worlds.
type Domain uint8

const (
	DomainGround Domain = iota
	DomainAir
)

// Movement is the kinematic block of a unit. Velocities are in pixels per
// 60fps frame.
type Movement struct {
	Velocity       geometry.Vector2D
	TargetVelocity geometry.Vector2D
	CurrentSpeed   float64
	Rotation       float64
	TargetRotation float64
}

// Formation is a unit's assigned slot: it steers toward Center+Offset.
type Formation struct {
	Center geometry.Vector2D
	Offset geometry.Vector2D
}

// Unit is a mobile entity. X,Y is the top-left corner in pixels; the unit
// occupies one tile, so its center is offset by half a tile.
type Unit struct {
	ID       ID
	Type     UnitType
	Owner    string
	X, Y     float64
	CX, CY   float64
	Health   float64
	MaxSpeed float64

	Movement *Movement
	Flight   FlightState

	Formation  *Formation
	MoveTarget *tilemap.TilePos
	Path       []tilemap.TilePos

	Dodging     bool
	LastMovedAt time.Duration

	// RemoteControlled marks direct player driving (no path, raw input).
	RemoteControlled bool
	// RamMode arms a demolition truck against RamTarget.
	RamMode   bool
	RamTarget ID

	TowingWreck ID
}

// Alive reports Health > 0.
func (u *Unit) Alive() bool {
	return u != nil && u.Health > 0
}

// IsAirborne is true for air unit types that are not grounded.
func (u *Unit) IsAirborne() bool {
	return u != nil && u.Type.IsAir() && u.Flight != Grounded
}

// Domain returns the collision domain the unit currently belongs to.
func (u *Unit) Domain() Domain {
	if u.IsAirborne() {
		return DomainAir
	}
	return DomainGround
}

// UpdateCenter recomputes the cached center from the top-left position.
func (u *Unit) UpdateCenter() {
	u.CX = u.X + tilemap.TileSize/2
	u.CY = u.Y + tilemap.TileSize/2
}

// Center returns the cached center.
func (u *Unit) Center() geometry.Vector2D {
	return geometry.Vector2D{X: u.CX, Y: u.CY}
}

// Position returns the top-left position.
func (u *Unit) Position() geometry.Vector2D {
	return geometry.Vector2D{X: u.X, Y: u.Y}
}

// SetPosition moves the unit and refreshes its center.
func (u *Unit) SetPosition(p geometry.Vector2D) {
	u.X, u.Y = p.X, p.Y
	u.UpdateCenter()
}

// Tile returns the tile under the unit's center.
func (u *Unit) Tile() tilemap.TilePos {
	return tilemap.TileAt(u.CX, u.CY)
}

// Velocity returns the current velocity, zero without a movement block.
func (u *Unit) Velocity() geometry.Vector2D {
	if u == nil || u.Movement == nil {
		return geometry.Zero
	}
	return u.Movement.Velocity
}

// Speed is the magnitude of the current velocity.
func (u *Unit) Speed() float64 {
	return u.Velocity().Len()
}

// HasOrders reports a path or a move target.
func (u *Unit) HasOrders() bool {
	return len(u.Path) > 0 || u.MoveTarget != nil
}

// Stop zeroes velocity and target velocity.
func (u *Unit) Stop() {
	if u.Movement == nil {
		return
	}
	u.Movement.Velocity = geometry.Zero
	u.Movement.TargetVelocity = geometry.Zero
	u.Movement.CurrentSpeed = 0
}

// Footprint is a zero-size rectangle at the unit center: units are point targets.
func (u *Unit) Footprint() geometry.AABB {
	return geometry.NewAABB(u.CX, u.CY, 0, 0)
}
