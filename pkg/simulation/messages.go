package simulation

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/entity"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/tilemap"
)

// Message kinds carried in the "kind" field of a structpb.Struct sent to the
// WorldActor.
const (
	KindMove   = "move"
	KindTuning = "tuning"
)

var ErrBadMessage = errors.New("malformed message")

// NewMoveOrder encodes an order sending units to tile.
func NewMoveOrder(ids []entity.ID, tile tilemap.TilePos) *structpb.Struct {
	units := make([]*structpb.Value, len(ids))
	for i, id := range ids {
		units[i] = structpb.NewNumberValue(float64(id))
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"kind":  structpb.NewStringValue(KindMove),
		"units": structpb.NewListValue(&structpb.ListValue{Values: units}),
		"x":     structpb.NewNumberValue(float64(tile.X)),
		"y":     structpb.NewNumberValue(float64(tile.Y)),
	}}
}

// ParseMoveOrder decodes a message built by NewMoveOrder.
func ParseMoveOrder(s *structpb.Struct) ([]entity.ID, tilemap.TilePos, error) {
	f := s.GetFields()
	if f["kind"].GetStringValue() != KindMove {
		return nil, tilemap.TilePos{}, fmt.Errorf("%w: not a move order", ErrBadMessage)
	}
	x, okX := wholeNumber(f["x"])
	y, okY := wholeNumber(f["y"])
	if !okX || !okY {
		return nil, tilemap.TilePos{}, fmt.Errorf("%w: move order needs integer x and y", ErrBadMessage)
	}
	list := f["units"].GetListValue().GetValues()
	ids := make([]entity.ID, 0, len(list))
	for _, v := range list {
		n, ok := wholeNumber(v)
		if !ok || n <= 0 || int64(n) > math.MaxUint32 {
			return nil, tilemap.TilePos{}, fmt.Errorf("%w: bad unit id %v", ErrBadMessage, v)
		}
		ids = append(ids, entity.ID(n))
	}
	return ids, tilemap.TilePos{X: x, Y: y}, nil
}

func wholeNumber(v *structpb.Value) (int, bool) {
	if _, ok := v.GetKind().(*structpb.Value_NumberValue); !ok {
		return 0, false
	}
	n := v.GetNumberValue()
	if n != math.Trunc(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return int(n), true
}

// NewTuning encodes a full configuration as a live tuning update.
func NewTuning(cfg *Config) (*structpb.Struct, error) {
	b, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tuning: %w", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("failed to decode tuning: %w", err)
	}
	m["kind"] = KindTuning
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("failed to build tuning message: %w", err)
	}
	return s, nil
}

// ParseTuning validates a tuning message against the config schema and
// applies it over base. Missing fields keep base's value.
func ParseTuning(s *structpb.Struct, base *Config) (*Config, error) {
	m := s.AsMap()
	if m["kind"] != KindTuning {
		return nil, fmt.Errorf("%w: not a tuning update", ErrBadMessage)
	}
	delete(m, "kind")
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tuning: %w", err)
	}
	return ParseConfig(b, base)
}

// StatsStruct encodes stats as the reply to a stats request.
func StatsStruct(s Stats) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"ticks":       structpb.NewNumberValue(float64(s.Ticks)),
		"units":       structpb.NewNumberValue(float64(s.Units)),
		"airborne":    structpb.NewNumberValue(float64(s.Airborne)),
		"wrecks":      structpb.NewNumberValue(float64(s.Wrecks)),
		"flowFields":  structpb.NewNumberValue(float64(s.FlowFields)),
		"unitHits":    structpb.NewNumberValue(float64(s.UnitHits)),
		"staticHits":  structpb.NewNumberValue(float64(s.StaticHits)),
		"wreckHits":   structpb.NewNumberValue(float64(s.WreckHits)),
		"detonations": structpb.NewNumberValue(float64(s.Detonations)),
		"dodges":      structpb.NewNumberValue(float64(s.Dodges)),
		"evictions":   structpb.NewNumberValue(float64(s.Evictions)),
	}}
}

// StatsFromStruct decodes a reply built by StatsStruct.
func StatsFromStruct(s *structpb.Struct) Stats {
	f := s.GetFields()
	n := func(k string) int { return int(f[k].GetNumberValue()) }
	return Stats{
		Ticks:       uint64(f["ticks"].GetNumberValue()),
		Units:       n("units"),
		Airborne:    n("airborne"),
		Wrecks:      n("wrecks"),
		FlowFields:  n("flowFields"),
		UnitHits:    n("unitHits"),
		StaticHits:  n("staticHits"),
		WreckHits:   n("wreckHits"),
		Detonations: n("detonations"),
		Dodges:      n("dodges"),
		Evictions:   n("evictions"),
	}
}
