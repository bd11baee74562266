package tilemap

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// cellObject is the rich cell form found in map files.
type cellObject struct {
	Type        string `json:"type"`
	Building    uint32 `json:"building,omitempty"`
	SeedCrystal bool   `json:"seedCrystal,omitempty"`
}

// DecodeGrid parses a JSON array of rows into a Grid. A cell is either a
// legacy number (0 passable, 1 wall) or an object such as
// {"type":"water"} / {"type":"land","seedCrystal":true} / {"type":"land","building":7}.
// Unknown surface types ("land", "street", "sand", ...) are open ground.
func DecodeGrid(data []byte) (*Grid, error) {
	var rows [][]json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode grid rows: %w", err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: empty grid", ErrInvalidGrid)
	}

	width := len(rows[0])
	g := NewGrid(width, len(rows))
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidGrid, y, len(row), width)
		}
		for x, raw := range row {
			t, err := decodeCell(raw)
			if err != nil {
				return nil, fmt.Errorf("cell (%d,%d): %w", x, y, err)
			}
			g.Set(x, y, t)
		}
	}
	return g, nil
}

func decodeCell(raw json.RawMessage) (Tile, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		var c cellObject
		if err := json.Unmarshal(raw, &c); err != nil {
			return Tile{}, fmt.Errorf("%w: %v", ErrInvalidGrid, err)
		}
		return normalizeObject(c), nil
	}

	var code int
	if err := json.Unmarshal(raw, &code); err != nil {
		return Tile{}, fmt.Errorf("%w: unsupported cell %s", ErrInvalidGrid, string(raw))
	}
	if code == 0 {
		return Tile{Kind: KindOpen}, nil
	}
	return Tile{Kind: KindWall}, nil
}

func normalizeObject(c cellObject) Tile {
	switch {
	case c.Building != 0:
		return Tile{Kind: KindBuilding, Building: c.Building}
	case c.SeedCrystal:
		return Tile{Kind: KindSeedCrystal}
	}
	switch c.Type {
	case "water":
		return Tile{Kind: KindWater}
	case "rock", "mountain":
		return Tile{Kind: KindRock}
	case "wall":
		return Tile{Kind: KindWall}
	default:
		return Tile{Kind: KindOpen}
	}
}
