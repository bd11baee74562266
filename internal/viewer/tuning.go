package viewer

import (
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/ui"
)

// tuningWidgets are the panel controls mapped onto live-tunable Config fields.
type tuningWidgets struct {
	friction *ui.Slider

	separationWeight *ui.Slider
	alignmentWeight  *ui.Slider
	cohesionWeight   *ui.Slider
	formationWeight  *ui.Slider
	obstacleWeight   *ui.Slider
	flowFieldWeight  *ui.Slider
	maxSteeringForce *ui.Slider

	minUnitDistance  *ui.Slider
	minWreckDistance *ui.Slider
	airMinDistance   *ui.Slider
	wreckFriction    *ui.Slider

	chokepointWidth *ui.Slider
	ttlSeconds      *ui.Slider

	friendlyBuildings *ui.Checkbox
	wrecks            *ui.Checkbox
}

func newTuningWidgets(p *ui.Panel, cfg simulation.Config) *tuningWidgets {
	t := &tuningWidgets{}

	p.AddSection("Movement")
	t.friction = p.AddSlider("Friction", 0.5, 1, cfg.Friction)
	p.EndSection()

	p.AddSection("Steering")
	t.separationWeight = p.AddSlider("Separation Weight", 0, 5, cfg.Steering.SeparationWeight)
	t.alignmentWeight = p.AddSlider("Alignment Weight", 0, 2, cfg.Steering.AlignmentWeight)
	t.cohesionWeight = p.AddSlider("Cohesion Weight", 0, 2, cfg.Steering.CohesionWeight)
	t.formationWeight = p.AddSlider("Formation Weight", 0, 3, cfg.Steering.FormationWeight)
	t.obstacleWeight = p.AddSlider("Obstacle Weight", 0, 5, cfg.Steering.ObstacleWeight)
	t.flowFieldWeight = p.AddSlider("Flow Field Weight", 0, 5, cfg.Steering.FlowFieldWeight)
	t.maxSteeringForce = p.AddSlider("Max Steering Force", 0.1, 10, cfg.Steering.MaxSteeringForce)
	p.EndSection()

	p.AddSection("Collision")
	t.minUnitDistance = p.AddSlider("Min Unit Distance", 8, 64, cfg.Collision.MinUnitDistance)
	t.minWreckDistance = p.AddSlider("Min Wreck Distance", 8, 64, cfg.Collision.MinWreckDistance)
	t.airMinDistance = p.AddSlider("Air Min Distance", 8, 96, cfg.Collision.AirMinDistance)
	t.wreckFriction = p.AddSlider("Wreck Friction", 0.5, 1, cfg.Collision.WreckFriction)
	t.friendlyBuildings = p.AddCheckbox("Ram Friendly Buildings", cfg.Detonation.FriendlyBuildings)
	t.wrecks = p.AddCheckbox("Ram Wrecks", cfg.Detonation.Wrecks)
	p.EndSection()

	p.AddSection("Flow Fields")
	t.chokepointWidth = p.AddSlider("Chokepoint Width", 1, 8, float64(cfg.FlowField.ChokepointWidth))
	t.ttlSeconds = p.AddSlider("Field TTL (s)", 0.5, 30, cfg.FlowField.TTLSeconds)
	p.EndSection()

	return t
}

// changed drains the change flag of every widget.
func (t *tuningWidgets) changed() bool {
	dirty := false
	for _, s := range t.sliders() {
		if s.Changed() {
			dirty = true
		}
	}
	for _, c := range []*ui.Checkbox{t.friendlyBuildings, t.wrecks} {
		if c.Changed() {
			dirty = true
		}
	}
	return dirty
}

func (t *tuningWidgets) sliders() []*ui.Slider {
	return []*ui.Slider{
		t.friction,
		t.separationWeight, t.alignmentWeight, t.cohesionWeight, t.formationWeight,
		t.obstacleWeight, t.flowFieldWeight, t.maxSteeringForce,
		t.minUnitDistance, t.minWreckDistance, t.airMinDistance, t.wreckFriction,
		t.chokepointWidth, t.ttlSeconds,
	}
}

// apply returns base with the widget values written over it.
func (t *tuningWidgets) apply(base simulation.Config) simulation.Config {
	cfg := base
	cfg.Friction = t.friction.Value

	cfg.Steering.SeparationWeight = t.separationWeight.Value
	cfg.Steering.AlignmentWeight = t.alignmentWeight.Value
	cfg.Steering.CohesionWeight = t.cohesionWeight.Value
	cfg.Steering.FormationWeight = t.formationWeight.Value
	cfg.Steering.ObstacleWeight = t.obstacleWeight.Value
	cfg.Steering.FlowFieldWeight = t.flowFieldWeight.Value
	cfg.Steering.MaxSteeringForce = t.maxSteeringForce.Value

	cfg.Collision.MinUnitDistance = t.minUnitDistance.Value
	cfg.Collision.MinWreckDistance = t.minWreckDistance.Value
	cfg.Collision.AirMinDistance = t.airMinDistance.Value
	cfg.Collision.WreckFriction = t.wreckFriction.Value
	cfg.Detonation.FriendlyBuildings = t.friendlyBuildings.Value
	cfg.Detonation.Wrecks = t.wrecks.Value

	cfg.FlowField.ChokepointWidth = int(t.chokepointWidth.Value + 0.5)
	cfg.FlowField.TTLSeconds = t.ttlSeconds.Value
	return cfg
}

// reset moves every widget back to cfg.
func (t *tuningWidgets) reset(cfg simulation.Config) {
	t.friction.Set(cfg.Friction)
	t.separationWeight.Set(cfg.Steering.SeparationWeight)
	t.alignmentWeight.Set(cfg.Steering.AlignmentWeight)
	t.cohesionWeight.Set(cfg.Steering.CohesionWeight)
	t.formationWeight.Set(cfg.Steering.FormationWeight)
	t.obstacleWeight.Set(cfg.Steering.ObstacleWeight)
	t.flowFieldWeight.Set(cfg.Steering.FlowFieldWeight)
	t.maxSteeringForce.Set(cfg.Steering.MaxSteeringForce)
	t.minUnitDistance.Set(cfg.Collision.MinUnitDistance)
	t.minWreckDistance.Set(cfg.Collision.MinWreckDistance)
	t.airMinDistance.Set(cfg.Collision.AirMinDistance)
	t.wreckFriction.Set(cfg.Collision.WreckFriction)
	t.chokepointWidth.Set(float64(cfg.FlowField.ChokepointWidth))
	t.ttlSeconds.Set(cfg.FlowField.TTLSeconds)
	if t.friendlyBuildings.Value != cfg.Detonation.FriendlyBuildings {
		t.friendlyBuildings.Toggle()
	}
	if t.wrecks.Value != cfg.Detonation.Wrecks {
		t.wrecks.Toggle()
	}
}
