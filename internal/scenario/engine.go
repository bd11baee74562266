package scenario

import (
	"context"
	"fmt"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/collision"
	"github.com/lao-tseu-is-alive/go-rts-movement/pkg/simulation"
)

// Engine builds a movement engine over the scenario world with the demo
// pathfinder and detonator plugged in.
func (s *Scenario) Engine(cfg *simulation.Config, logger log.Logger) (*simulation.Engine, error) {
	return simulation.NewEngine(s.World, cfg,
		simulation.WithLogger(logger),
		simulation.WithPathfinder(simulation.PathfinderFunc(FindPath)),
		simulation.WithDetonator(collision.DetonatorFunc(Detonate)),
	)
}

// Issue sends the scenario's opening move orders to a running WorldActor.
func (s *Scenario) Issue(ctx context.Context, world *actor.PID) error {
	for i, o := range s.Orders {
		if err := actor.Tell(ctx, world, simulation.NewMoveOrder(o.Units, o.Tile)); err != nil {
			return fmt.Errorf("failed to send order %d: %w", i, err)
		}
	}
	return nil
}
