package entity

import (
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/tilemap"
)

// Wreck is the remnant of a destroyed unit. It stays put until struck or
// towed; while TowedBy is set the tower drives its position.
type Wreck struct {
	ID             ID
	X, Y           float64
	Health         float64
	Velocity       geometry.Vector2D
	TowedBy        ID
	AssignedTankID ID
}

// Alive reports Health > 0.
func (w *Wreck) Alive() bool {
	return w != nil && w.Health > 0
}

// Center returns the pixel center of the wreck.
func (w *Wreck) Center() geometry.Vector2D {
	return geometry.Vector2D{X: w.X + tilemap.TileSize/2, Y: w.Y + tilemap.TileSize/2}
}

// SetCenter moves the wreck so that its center lands on c.
func (w *Wreck) SetCenter(c geometry.Vector2D) {
	w.X = c.X - tilemap.TileSize/2
	w.Y = c.Y - tilemap.TileSize/2
}

// Towed reports whether a unit is towing the wreck.
func (w *Wreck) Towed() bool {
	return w.TowedBy != 0
}
