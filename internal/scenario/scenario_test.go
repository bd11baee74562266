package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/entity"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/tilemap"
)

func TestLoadDemoMap(t *testing.T) {
	s, err := Load("../../configs/map.json")
	require.NoError(t, err)
	w := s.World

	assert.Equal(t, "chokepoint", s.Name)
	assert.Equal(t, 24, w.Grid.Width)
	assert.Equal(t, 16, w.Grid.Height)
	assert.Len(t, w.Buildings, 3)
	assert.Len(t, w.Wrecks, 2)
	assert.Len(t, w.Units, 11)
	assert.Len(t, s.Orders, 5)

	tile, _ := w.Grid.At(12, 7)
	assert.Equal(t, tilemap.KindOpen, tile.Kind, "gap in the wall")
	tile, _ = w.Grid.At(12, 6)
	assert.Equal(t, tilemap.KindWall, tile.Kind)
	tile, _ = w.Grid.At(9, 2)
	assert.Equal(t, tilemap.KindSeedCrystal, tile.Kind)
	tile, _ = w.Grid.At(18, 2)
	assert.Equal(t, tilemap.KindBuilding, tile.Kind)

	recovery := w.Units[5]
	assert.Equal(t, entity.TypeRecoveryTank, recovery.Type)
	assert.Equal(t, w.Wrecks[0].ID, recovery.TowingWreck)
	assert.Equal(t, recovery.ID, w.Wrecks[0].TowedBy)

	truck := w.Units[6]
	assert.True(t, truck.RamMode)
	assert.Equal(t, w.Buildings[1].ID, truck.RamTarget)
	assert.Equal(t, 2.5, truck.MaxSpeed)

	assert.False(t, w.Units[7].IsAirborne(), "parked on the helipad")
	assert.True(t, w.Units[8].IsAirborne())
	assert.Equal(t, "enemy", w.Units[9].Owner)

	assert.Equal(t, []entity.ID{w.Units[0].ID, w.Units[1].ID, w.Units[2].ID, w.Units[3].ID}, s.Orders[0].Units)
	assert.Equal(t, tilemap.TilePos{X: 19, Y: 7}, s.Orders[0].Tile)
}

func TestParseDefaults(t *testing.T) {
	s, err := Parse([]byte(`{
		"grid": [[0, 0], [0, 0]],
		"buildings": [{"type": "turret", "tileX": 1, "tileY": 1, "width": 1, "height": 1}],
		"wrecks": [{"tileX": 0, "tileY": 1}],
		"units": [{"type": "harvester", "tileX": 0, "tileY": 0}]
	}`))
	require.NoError(t, err)
	w := s.World

	b := w.Buildings[0]
	assert.Equal(t, entity.ID(1), b.ID)
	assert.Equal(t, defaultOwner, b.Owner)
	assert.EqualValues(t, defaultBuildingHealth, b.Health)

	wr := w.Wrecks[0]
	assert.Equal(t, entity.ID(2), wr.ID)
	assert.Equal(t, 0.0, wr.X)
	assert.Equal(t, 32.0, wr.Y)

	u := w.Units[0]
	assert.Equal(t, entity.ID(3), u.ID)
	assert.Equal(t, 1.5, u.MaxSpeed)
	assert.EqualValues(t, defaultUnitHealth, u.Health)
	assert.Equal(t, 16.0, u.CX)
	assert.Empty(t, s.Orders)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{"grid": [`},
		{"missing grid", `{"units": []}`},
		{"unknown unit type", `{"grid": [[0]], "units": [{"type": "mech", "tileX": 0, "tileY": 0}]}`},
		{"unknown field", `{"grid": [[0]], "weather": "rain"}`},
		{"ragged grid", `{"grid": [[0, 0], [0]]}`},
		{"building off map", `{"grid": [[0, 0]], "buildings": [{"type": "turret", "tileX": 1, "tileY": 0, "width": 2, "height": 1}]}`},
		{"wreck off map", `{"grid": [[0]], "wrecks": [{"tileX": 3, "tileY": 0}]}`},
		{"unit off map", `{"grid": [[0]], "units": [{"type": "tank", "tileX": 0, "tileY": 4}]}`},
		{"unit on wall", `{"grid": [[1]], "units": [{"type": "tank", "tileX": 0, "tileY": 0}]}`},
		{"flying tank", `{"grid": [[0]], "units": [{"type": "tank", "tileX": 0, "tileY": 0, "airborne": true}]}`},
		{"tow missing wreck", `{"grid": [[0]], "units": [{"type": "recoveryTank", "tileX": 0, "tileY": 0, "tow": 0}]}`},
		{"ram missing building", `{"grid": [[0]], "units": [{"type": "demolitionTruck", "tileX": 0, "tileY": 0, "ram": 2}]}`},
		{"order names missing unit", `{"grid": [[0]], "orders": [{"units": [0], "x": 0, "y": 0}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.body))
			assert.Error(t, err)
		})
	}
}

func TestParseWreckCannotBeTowedTwice(t *testing.T) {
	_, err := Parse([]byte(`{
		"grid": [[0, 0, 0]],
		"wrecks": [{"tileX": 1, "tileY": 0}],
		"units": [
			{"type": "recoveryTank", "tileX": 0, "tileY": 0, "tow": 0},
			{"type": "recoveryTank", "tileX": 2, "tileY": 0, "tow": 0}
		]
	}`))
	assert.ErrorIs(t, err, ErrInvalidScenario)
}
