package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/collision/internal/config"
	"github.com/zeusync/collision/internal/core/observability/log"
	"github.com/zeusync/collision/internal/injector"
	"github.com/zeusync/collision/pkg/concurrent"
)

var (
	parallel = flag.Int("parallel", 0, "Scenarios run at once (0 = all)")
	frames   = flag.Int("frames", -1, "Override the frame count of every scenario")
	level    = flag.String("log-level", "info", "Log level: debug|info|warn|error")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] scenario.yaml...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	logger := log.New(log.ParseLevel(*level))
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, flag.Args()); err != nil {
		logger.Error("simulation failed", log.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger log.Log, paths []string) error {
	runID := uuid.NewString()
	logger = logger.With(log.String("run", runID))

	scenarios := make([]*config.Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := config.LoadScenarioFile(path)
		if err != nil {
			return err
		}
		if *frames >= 0 {
			s.Simulation.Frames = *frames
		}
		scenarios = append(scenarios, s)
	}

	start := time.Now()
	results, err := concurrent.Map(ctx, scenarios, *parallel, func(ctx context.Context, s *config.Scenario) (injector.Result, error) {
		scenarioLog := logger.With(log.String("scenario", s.Name))
		sim, err := injector.InitializeSimulation(s, scenarioLog)
		if err != nil {
			return injector.Result{}, fmt.Errorf("%s: %w", s.Name, err)
		}
		res, err := sim.Run(ctx)
		if err != nil {
			return res, fmt.Errorf("%s: %w", s.Name, err)
		}
		return res, nil
	})
	if err != nil {
		return err
	}

	for _, res := range results {
		logger.Info("scenario finished",
			log.String("scenario", res.Name),
			log.Int("frames", res.Frames),
			log.Int("bodies", res.Bodies),
			log.Uint64("static_contacts", res.StaticContacts),
			log.Uint64("entity_contacts", res.EntityContacts),
			log.Uint64("pairs", res.Stats.Pairs),
			log.Uint64("despawned", res.Stats.Despawned),
			log.String("checksum", fmt.Sprintf("%016x", res.Checksum)),
		)
	}
	logger.Info("run finished", log.Int("scenarios", len(results)), log.Duration("took", time.Since(start)))
	return nil
}
