package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/entity"
)

func TestDetonate(t *testing.T) {
	s, err := Parse([]byte(`{
		"grid": [[0, 0, 0, 0, 0, 0, 0, 0]],
		"buildings": [
			{"type": "refinery", "owner": "enemy", "tileX": 2, "tileY": 0, "width": 1, "height": 1},
			{"type": "turret", "owner": "enemy", "tileX": 7, "tileY": 0, "width": 1, "height": 1}
		],
		"wrecks": [{"tileX": 0, "tileY": 0}],
		"units": [{"type": "demolitionTruck", "owner": "player", "tileX": 1, "tileY": 0, "ram": 0}]
	}`))
	require.NoError(t, err)
	w := s.World
	truck := w.Units[0]

	assert.True(t, Detonate(truck, w))
	assert.False(t, truck.Alive())
	assert.Equal(t, defaultBuildingHealth-blastDamage, w.Buildings[0].Health)
	assert.EqualValues(t, defaultBuildingHealth, w.Buildings[1].Health, "out of range")
	assert.Zero(t, w.Wrecks[0].Health, "clamped at zero")

	tile, _ := w.Grid.At(2, 0)
	assert.Equal(t, uint32(w.Buildings[0].ID), tile.Building, "footprint stays")

	assert.False(t, Detonate(truck, w), "already dead")
	assert.False(t, Detonate(&entity.Unit{Health: 1}, nil))
}
