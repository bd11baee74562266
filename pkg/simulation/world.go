package simulation

import (
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// WorldActor owns an Engine. Its mailbox is the only way in: a
// durationpb.Duration ticks the world, a structpb.Struct carries a move order
// or a tuning update, and an emptypb.Empty asks for the stats.
type WorldActor struct {
	engine *Engine

	// Communication with UI
	snapshotCh chan<- *Snapshot

	// --- Benchmark Stats ---
	ticks       int
	tickTime    time.Duration
	lastLogTime time.Time
}

// Enforce interface compliance
var _ actor.Actor = (*WorldActor)(nil)

// NewWorldActor wraps engine. snapshotCh may be nil for a windowless run.
func NewWorldActor(engine *Engine, snapshotCh chan<- *Snapshot) *WorldActor {
	return &WorldActor{
		engine:      engine,
		snapshotCh:  snapshotCh,
		lastLogTime: time.Now(),
	}
}

func (w *WorldActor) PreStart(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("World is loading %d units on a %dx%d map...",
		len(w.engine.World().Units), w.engine.World().Grid.Width, w.engine.World().Grid.Height)
	return nil
}

func (w *WorldActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		ctx.Logger().Info("World Started.")

	// The Main Simulation Step (Driven by Game Loop)
	case *durationpb.Duration:
		start := time.Now()
		w.engine.Tick(msg.AsDuration())
		w.ticks++
		w.tickTime += time.Since(start)
		w.logBenchmarks(ctx)
		w.pushSnapshot()

	case *structpb.Struct:
		w.handleCommand(ctx, msg)

	case *emptypb.Empty:
		ctx.Response(StatsStruct(w.engine.Stats()))

	default:
		ctx.Unhandled()
	}
}

func (w *WorldActor) handleCommand(ctx *actor.ReceiveContext, msg *structpb.Struct) {
	switch kind := msg.GetFields()["kind"].GetStringValue(); kind {
	case KindMove:
		ids, tile, err := ParseMoveOrder(msg)
		if err != nil {
			ctx.Logger().Warnf("dropping move order: %v", err)
			return
		}
		if err := w.engine.OrderMove(ids, tile); err != nil {
			ctx.Logger().Warnf("move order to %v: %v", tile, err)
		}
	case KindTuning:
		base := w.engine.Config()
		cfg, err := ParseTuning(msg, &base)
		if err != nil {
			ctx.Logger().Warnf("dropping tuning update: %v", err)
			return
		}
		w.engine.Configure(cfg)
	default:
		ctx.Logger().Warnf("unknown command kind %q", kind)
		ctx.Unhandled()
	}
}

func (w *WorldActor) logBenchmarks(ctx *actor.ReceiveContext) {
	if time.Since(w.lastLogTime) < time.Second {
		return
	}
	s := w.engine.Stats()
	avg := time.Duration(0)
	if w.ticks > 0 {
		avg = w.tickTime / time.Duration(w.ticks)
	}
	ctx.Logger().Infof("📊 TICKS: %d/sec (avg %s) | Units: %d (air %d) | Wrecks: %d | Fields: %d",
		w.ticks, avg, s.Units, s.Airborne, s.Wrecks, s.FlowFields)
	w.ticks = 0
	w.tickTime = 0
	w.lastLogTime = time.Now()
}

func (w *WorldActor) pushSnapshot() {
	if w.snapshotCh == nil || len(w.snapshotCh) == cap(w.snapshotCh) {
		return
	}
	select {
	case w.snapshotCh <- w.engine.Snapshot():
	default:
		// UI busy, skip frame
	}
}

func (w *WorldActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Info("World is shutdown...")
	return nil
}
