package simulation

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/collision"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/flowfield"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/spatial"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/steering"
)

//go:embed config.schema.json
var configSchema string

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("config.schema.json", configSchema)
})

type Config struct {
	// Driver
	TickRate       int `json:"tickRate"`       // ticks per second for the headless run
	SnapshotBuffer int `json:"snapshotBuffer"` // snapshots queued for the UI before frames drop

	// Free movement
	Friction  float64 `json:"friction"`  // velocity kept per frame by units without a path
	DodgeSeed uint64  `json:"dodgeSeed"` // seeds the dodge direction shuffle

	Spatial    spatial.Settings           `json:"spatial"` // restart required
	FlowField  flowfield.Settings         `json:"flowField"`
	Steering   steering.Settings          `json:"steering"`
	Collision  collision.Settings         `json:"collision"`
	Detonation collision.DetonationPolicy `json:"detonation"`
}

func DefaultConfig() *Config {
	return &Config{
		TickRate:       60,
		SnapshotBuffer: 10,
		Friction:       0.9,
		DodgeSeed:      1,
		Spatial:        spatial.DefaultSettings(),
		FlowField:      flowfield.DefaultSettings(),
		Steering:       steering.DefaultSettings(),
		Collision:      collision.DefaultSettings(),
	}
}

// LoadConfig reads a JSON config file, validates it against the embedded
// schema and applies it over DefaultConfig. Fields absent from the file keep
// their default value.
func LoadConfig(configFile string) (*Config, error) {
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := ParseConfig(b, DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", configFile, err)
	}
	return cfg, nil
}

// ParseConfig validates raw JSON and unmarshals it over a copy of base.
func ParseConfig(data []byte, base *Config) (*Config, error) {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := validateConfig(v); err != nil {
		return nil, err
	}

	cfg := *base
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func validateConfig(v interface{}) error {
	sch, err := compileSchema()
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
