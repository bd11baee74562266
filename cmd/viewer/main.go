package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-rts-movement/internal/scenario"
	"github.com/lao-tseu-is-alive/go-rts-movement/internal/viewer"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/simulation"
)

func main() {
	configPath := flag.String("config", "configs/engine.json", "engine config file")
	mapPath := flag.String("map", "configs/map.json", "scenario map file")
	owner := flag.String("owner", "player", "faction commanded with the mouse")
	flag.Parse()

	ctx := context.Background()

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

	system, err := actor.NewActorSystem("RTSMovement", actor.WithLogger(logger))
	if err != nil {
		log.Fatalf("error creating actor system: %v", err)
	}
	if err := system.Start(ctx); err != nil {
		log.Fatalf("error starting actor system: %v", err)
	}
	defer system.Stop(ctx)

	game, err := viewer.NewGame(ctx, system, engine, *owner)
	if err != nil {
		log.Fatalf("error creating viewer: %v", err)
	}
	if err := s.Issue(ctx, game.World()); err != nil {
		log.Fatalf("error issuing orders: %v", err)
	}

	w, h := game.Layout(0, 0)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("RTS Movement: " + s.Name)
	ebiten.SetTPS(cfg.TickRate)
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
