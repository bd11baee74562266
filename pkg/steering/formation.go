package steering

import (
	"math"
	"slices"

	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/entity"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/tilemap"
)

// UpdateFormationCenter assigns every unit a slot in a square grid centered
// on the target tile, FormationSpacing pixels apart, in slice order. Nil
// entries are skipped and take no slot.
func (b *Behaviors) UpdateFormationCenter(units []*entity.Unit, target tilemap.TilePos) {
	if b == nil {
		return
	}
	units = slices.DeleteFunc(slices.Clone(units), func(u *entity.Unit) bool { return u == nil })
	n := len(units)
	if n == 0 {
		return
	}
	cx, cy := target.Center()
	center := geometry.Vector2D{X: cx, Y: cy}
	spacing := b.settings.FormationSpacing

	perRow := int(math.Ceil(math.Sqrt(float64(n))))
	rows := (n + perRow - 1) / perRow
	midCol := float64(perRow-1) / 2
	midRow := float64(rows-1) / 2

	for i, u := range units {
		row, col := i/perRow, i%perRow
		u.Formation = &entity.Formation{
			Center: center,
			Offset: geometry.Vector2D{
				X: (float64(col) - midCol) * spacing,
				Y: (float64(row) - midRow) * spacing,
			},
		}
	}
}

// ClearFormation drops the formation slot of every unit.
func ClearFormation(units ...*entity.Unit) {
	for _, u := range units {
		if u != nil {
			u.Formation = nil
		}
	}
}
