// Package viewer is the ebiten debug window over a running world: it ticks
// the WorldActor from the game loop, draws the latest snapshot with optional
// quadtree, flow-field and path overlays, and turns mouse input into move
// orders and the tuning panel into live config updates.
package viewer

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/entity"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/tilemap"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/ui"
)

const (
	panelWidth = 280
	minHeight  = 480
)

type overlayWidgets struct {
	paths     *ui.Checkbox
	fields    *ui.Checkbox
	quadtree  *ui.Checkbox
	radii     *ui.Checkbox
	paused    *ui.Checkbox
	step      *ui.Button
	stepQueue int
}

type Game struct {
	ctx        context.Context
	worldPID   *actor.PID
	snapshotCh chan *simulation.Snapshot
	lastState  *simulation.Snapshot
	logger     log.Logger

	// Player faction the mouse commands.
	owner    string
	selected map[entity.ID]bool
	dragging bool
	dragFrom geometry.Vector2D

	cfg       simulation.Config
	defaults  simulation.Config
	tickDelta time.Duration

	// UI Controls
	panel    *ui.Panel
	tuning   *tuningWidgets
	overlays overlayWidgets

	mapW, mapH int

	// Timing instrumentation
	updateAvg float64 // Rolling average in ms
	drawAvg   float64 // Rolling average in ms
}

// NewGame spawns a WorldActor for engine in system and builds the window
// state around it.
func NewGame(ctx context.Context, system actor.ActorSystem, engine *simulation.Engine, owner string) (*Game, error) {
	cfg := engine.Config()
	snapshotCh := make(chan *simulation.Snapshot, cfg.SnapshotBuffer)
	first := engine.Snapshot()

	worldPID, err := system.Spawn(ctx, "world", simulation.NewWorldActor(engine, snapshotCh))
	if err != nil {
		return nil, fmt.Errorf("failed to spawn world: %w", err)
	}

	grid := first.Grid
	mapW, mapH := int(grid.PixelWidth()), int(grid.PixelHeight())
	panel := ui.NewPanel(float64(mapW), 0, panelWidth, float64(max(mapH, minHeight)), "Tuning")

	g := &Game{
		ctx:        ctx,
		worldPID:   worldPID,
		snapshotCh: snapshotCh,
		lastState:  first,
		logger:     system.Logger(),
		owner:      owner,
		selected:   make(map[entity.ID]bool),
		cfg:        cfg,
		defaults:   cfg,
		tickDelta:  time.Second / time.Duration(cfg.TickRate),
		panel:      panel,
		mapW:       mapW,
		mapH:       mapH,
	}
	g.tuning = newTuningWidgets(panel, cfg)

	panel.AddSection("Display")
	g.overlays.paths = panel.AddCheckbox("Paths", true)
	g.overlays.fields = panel.AddCheckbox("Flow Fields", true)
	g.overlays.quadtree = panel.AddCheckbox("Quadtree", false)
	g.overlays.radii = panel.AddCheckbox("Collision Radii", false)
	panel.EndSection()

	panel.AddSection("Simulation")
	g.overlays.paused = panel.AddCheckbox("Paused (Space)", false)
	g.overlays.step = panel.AddButton("Step", func() { g.overlays.stepQueue++ })
	g.overlays.step.Disabled = true
	panel.AddButton("Reset Tuning", func() { g.tuning.reset(g.defaults) })
	panel.EndSection()

	return g, nil
}

// World is the WorldActor the window drives.
func (g *Game) World() *actor.PID { return g.worldPID }

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	g.overlays.step.Disabled = !g.overlays.paused.Value
	g.panel.Update()

Loop:
	for {
		select {
		case snap := <-g.snapshotCh:
			g.lastState = snap
		default:
			break Loop
		}
	}

	if g.tuning.changed() {
		g.sendTuning()
	}
	g.handleInput()

	ticks := g.overlays.stepQueue
	g.overlays.stepQueue = 0
	if !g.overlays.paused.Value {
		ticks++
	}
	for range ticks {
		if err := actor.Tell(g.ctx, g.worldPID, durationpb.New(g.tickDelta)); err != nil {
			return fmt.Errorf("world stopped: %w", err)
		}
	}
	return nil
}

func (g *Game) sendTuning() {
	cfg := g.tuning.apply(g.cfg)
	msg, err := simulation.NewTuning(&cfg)
	if err != nil {
		g.logger.Warnf("tuning not sent: %v", err)
		return
	}
	if err := actor.Tell(g.ctx, g.worldPID, msg); err != nil {
		g.logger.Warnf("tuning not sent: %v", err)
		return
	}
	g.cfg = cfg
}

func (g *Game) handleInput() {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.overlays.paused.Toggle()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		clear(g.selected)
	}

	x, y := ebiten.CursorPosition()
	cursor := geometry.Vector2D{X: float64(x), Y: float64(y)}
	onMap := !g.panel.Contains(cursor.X, cursor.Y) && cursor.X < float64(g.mapW) && cursor.Y < float64(g.mapH)

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && onMap {
		g.dragging = true
		g.dragFrom = cursor
	}
	if g.dragging && inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.dragging = false
		additive := ebiten.IsKeyPressed(ebiten.KeyShift)
		if !additive {
			clear(g.selected)
		}
		for _, id := range selectUnits(g.lastState.Units, g.dragFrom, cursor, g.owner) {
			g.selected[id] = true
		}
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) && onMap && len(g.selected) > 0 {
		tile := tilemap.TileAt(cursor.X, cursor.Y)
		ids := make([]entity.ID, 0, len(g.selected))
		for _, u := range g.lastState.Units {
			if g.selected[u.ID] {
				ids = append(ids, u.ID)
			}
		}
		if err := actor.Tell(g.ctx, g.worldPID, simulation.NewMoveOrder(ids, tile)); err != nil {
			g.logger.Warnf("move order not sent: %v", err)
		}
	}
}

// selectUnits returns the owner's units inside the drag rectangle from a to
// b. A click without drag picks the unit under the cursor.
func selectUnits(units []simulation.UnitState, a, b geometry.Vector2D, owner string) []entity.ID {
	const clickSlop = 4
	var ids []entity.ID
	if a.DistanceTo(b) <= clickSlop {
		best, bestDist := entity.ID(0), tilemap.TileSize/2
		for _, u := range units {
			if d := u.Center.DistanceTo(b); u.Owner == owner && d <= bestDist {
				best, bestDist = u.ID, d
			}
		}
		if best != 0 {
			ids = append(ids, best)
		}
		return ids
	}

	rect := geometry.NewAABB(min(a.X, b.X), min(a.Y, b.Y), math.Abs(a.X-b.X), math.Abs(a.Y-b.Y))
	for _, u := range units {
		if u.Owner == owner && rect.Contains(u.Center) {
			ids = append(ids, u.ID)
		}
	}
	return ids
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	snap := g.lastState
	drawTiles(screen, snap.Grid)
	drawBuildings(screen, snap.Buildings)
	if g.overlays.quadtree.Value {
		drawQuadtree(screen, snap.Quadtree)
	}
	if g.overlays.fields.Value {
		drawFlowFields(screen, snap.Fields)
	}
	drawWrecks(screen, snap.Wrecks)
	if g.overlays.paths.Value {
		drawPaths(screen, snap.Units, g.selected)
	}
	radii := 0.0
	if g.overlays.radii.Value {
		radii = g.cfg.Collision.MinUnitDistance / 2
	}
	drawUnits(screen, snap.Units, g.selected, radii)

	if g.dragging {
		x, y := ebiten.CursorPosition()
		drawSelection(screen, g.dragFrom, geometry.Vector2D{X: float64(x), Y: float64(y)})
	}

	g.panel.Draw(screen)
	g.drawStats(screen, snap)
}

func (g *Game) drawStats(screen *ebiten.Image, snap *simulation.Snapshot) {
	s := snap.Stats
	msg := fmt.Sprintf("T+%s  ticks %d\nunits %d (air %d)  wrecks %d  fields %d\nhits unit %d static %d wreck %d\ndodges %d  detonations %d  evictions %d\nselected %d",
		snap.Now.Truncate(time.Millisecond), s.Ticks,
		s.Units, s.Airborne, s.Wrecks, s.FlowFields,
		s.UnitHits, s.StaticHits, s.WreckHits,
		s.Dodges, s.Detonations, s.Evictions,
		len(g.selected))
	ebitenutil.DebugPrintAt(screen, msg, 4, 4)

	perf := fmt.Sprintf("FPS: %.1f TPS: %.1f\nUpdate: %.2fms\nDraw:   %.2fms",
		ebiten.ActualFPS(), ebiten.ActualTPS(), g.updateAvg, g.drawAvg)
	ebitenutil.DebugPrintAt(screen, perf, g.mapW-140, 4)
}

func (g *Game) Layout(int, int) (int, int) {
	return g.mapW + panelWidth, max(g.mapH, minHeight)
}
