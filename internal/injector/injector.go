//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/collision/internal/config"
	"github.com/zeusync/collision/internal/core/observability/log"
)

// InitializeSimulation wires a ready-to-run simulation for one scenario.
func InitializeSimulation(scenario *config.Scenario, logger log.Log) (*Simulation, error) {
	wire.Build(SimulationSet)
	return nil, nil
}
