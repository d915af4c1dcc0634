package injector

import (
	"context"
	"fmt"

	"github.com/google/wire"

	"github.com/zeusync/collision/internal/config"
	"github.com/zeusync/collision/internal/core/events/bus"
	"github.com/zeusync/collision/internal/core/observability/log"
	"github.com/zeusync/collision/internal/core/observability/metrics"
	"github.com/zeusync/collision/internal/core/system"
	"github.com/zeusync/collision/internal/core/systems/collision"
	"github.com/zeusync/collision/internal/core/world"
)

// SimulationSet provides everything a Simulation depends on.
var SimulationSet = wire.NewSet(
	ProvideMetrics,
	ProvideEventBus,
	ProvideCollisionManager,
	ProvideTileMap,
	ProvideWorld,
	ProvideSystemManager,
	NewSimulation,
)

func ProvideMetrics() *metrics.Registry {
	return metrics.NewRegistry()
}

// ProvideEventBus returns a bus whose traffic is recorded in reg.
func ProvideEventBus(reg *metrics.Registry) bus.EventBus {
	b := bus.New()
	b.AddObserver(metrics.NewBusObserver(reg))
	return b
}

func ProvideCollisionManager(scenario *config.Scenario, logger log.Log, events bus.EventBus) *collision.Manager {
	return collision.NewManager(scenario.Collision,
		collision.WithLogger(logger),
		collision.WithEventBus(events),
	)
}

func ProvideTileMap(scenario *config.Scenario) (*world.TileMap, error) {
	return scenario.TileMap()
}

// ProvideWorld builds the world and spawns the scenario's bodies.
func ProvideWorld(scenario *config.Scenario, logger log.Log, collisions *collision.Manager, tiles *world.TileMap) (*world.World, error) {
	opts := []world.Option{world.WithLogger(logger)}
	if tiles != nil {
		opts = append(opts, world.WithTileMap(tiles))
	}
	w, err := world.New(scenario.World, collisions, opts...)
	if err != nil {
		return nil, err
	}
	for _, def := range scenario.Bodies {
		if _, err = w.Spawn(def); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func ProvideSystemManager(logger log.Log, w *world.World) (*system.Manager, error) {
	m := system.NewManager(logger)
	if err := m.RegisterSystem(w); err != nil {
		return nil, err
	}
	return m, nil
}

// Simulation is one wired scenario.
type Simulation struct {
	Scenario *config.Scenario
	Log      log.Log
	Events   bus.EventBus
	World    *world.World
	Systems  *system.Manager
	Metrics  *metrics.Registry
}

// Result summarizes a finished run.
type Result struct {
	Name           string
	Frames         int
	Bodies         int
	StaticContacts uint64
	EntityContacts uint64
	Checksum       uint64
	Stats          world.Stats
}

func NewSimulation(scenario *config.Scenario, logger log.Log, reg *metrics.Registry, events bus.EventBus, w *world.World, systems *system.Manager) (*Simulation, error) {
	for _, eventType := range []string{collision.EventTypeStatic, collision.EventTypeEntity} {
		if _, err := events.Subscribe(eventType, func(ev bus.Event) error {
			if e, ok := ev.Data().(collision.Event); ok {
				logger.Debug("contact",
					log.String("type", eventType),
					log.Uint64("entity", uint64(e.Self.ID())),
					log.Uint64("frame", e.Frame),
					log.Float64("time", e.Result.CollisionTime),
				)
			}
			return nil
		}); err != nil {
			return nil, fmt.Errorf("subscribe %s: %w", eventType, err)
		}
	}
	return &Simulation{
		Scenario: scenario,
		Log:      logger,
		Events:   events,
		World:    w,
		Systems:  systems,
		Metrics:  reg,
	}, nil
}

// Run steps the scenario for its configured number of frames.
func (s *Simulation) Run(ctx context.Context) (Result, error) {
	sim := s.Scenario.Simulation
	err := s.Systems.Run(ctx, sim.Frames, sim.FrameTime)

	st := s.World.Stats()
	return Result{
		Name:           s.Scenario.Name,
		Frames:         int(st.Steps),
		Bodies:         st.Bodies,
		StaticContacts: s.Metrics.Counter("bus.published." + collision.EventTypeStatic).Value(),
		EntityContacts: s.Metrics.Counter("bus.published." + collision.EventTypeEntity).Value(),
		Checksum:       s.World.Checksum(),
		Stats:          st,
	}, err
}
