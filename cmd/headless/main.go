package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lao-tseu-is-alive/go-rts-movement/internal/scenario"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/simulation"
)

func main() {
	configPath := flag.String("config", "configs/engine.json", "engine config file")
	mapPath := flag.String("map", "configs/map.json", "scenario map file")
	duration := flag.Duration("duration", 30*time.Second, "simulated time to run")
	realtime := flag.Bool("realtime", false, "pace ticks with the wall clock")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := simulation.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}
	s, err := scenario.Load(*mapPath)
	if err != nil {
		log.Fatalf("error loading map: %v", err)
	}

	logger := golog.New(golog.InfoLevel, os.Stdout)
	engine, err := s.Engine(cfg, logger)
	if err != nil {
		log.Fatalf("error creating engine: %v", err)
	}

	system, err := actor.NewActorSystem("RTSHeadless", actor.WithLogger(logger))
	if err != nil {
		log.Fatalf("error creating actor system: %v", err)
	}
	if err := system.Start(ctx); err != nil {
		log.Fatalf("error starting actor system: %v", err)
	}
	defer system.Stop(context.Background())

	world, err := system.Spawn(ctx, "world", simulation.NewWorldActor(engine, nil))
	if err != nil {
		log.Fatalf("error spawning world: %v", err)
	}
	if err := s.Issue(ctx, world); err != nil {
		log.Fatalf("error issuing orders: %v", err)
	}

	tick := time.Second / time.Duration(cfg.TickRate)
	total := int(*duration / tick)
	var pace <-chan time.Time
	if *realtime {
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		pace = ticker.C
	}

	for i := 1; i <= total; i++ {
		if pace != nil {
			select {
			case <-pace:
			case <-ctx.Done():
				return
			}
		} else if ctx.Err() != nil {
			return
		}
		if err := actor.Tell(ctx, world, durationpb.New(tick)); err != nil {
			log.Fatalf("error ticking world: %v", err)
		}
		if i%cfg.TickRate == 0 || i == total {
			report(ctx, logger, world)
		}
	}
}

// report asks the world for its stats; the reply waits behind every tick
// already queued.
func report(ctx context.Context, logger golog.Logger, world *actor.PID) {
	reply, err := actor.Ask(ctx, world, &emptypb.Empty{}, 10*time.Second)
	if err != nil {
		logger.Warnf("stats request failed: %v", err)
		return
	}
	st := simulation.StatsFromStruct(reply.(*structpb.Struct))
	logger.Infof("tick %d: units %d (air %d) wrecks %d fields %d | hits unit %d static %d wreck %d | dodges %d detonations %d evictions %d",
		st.Ticks, st.Units, st.Airborne, st.Wrecks, st.FlowFields,
		st.UnitHits, st.StaticHits, st.WreckHits,
		st.Dodges, st.Detonations, st.Evictions)
}
