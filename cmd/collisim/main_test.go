package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zeusync/collision/internal/config"
	"github.com/zeusync/collision/internal/core/observability/log"
)

func TestRun(t *testing.T) {
	paths, err := filepath.Glob("../../examples/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	core, logs := observer.New(zapcore.InfoLevel)
	require.NoError(t, run(context.Background(), log.NewFromZap(zap.New(core)), paths))

	finished := logs.FilterMessage("scenario finished").All()
	require.Len(t, finished, len(paths))
	for _, entry := range finished {
		fields := entry.ContextMap()
		require.NotEmpty(t, fields["run"])
		require.Len(t, fields["checksum"], 16)
	}
	require.Equal(t, 1, logs.FilterMessage("run finished").Len())
}

func TestRunErrors(t *testing.T) {
	t.Run("Missing File", func(t *testing.T) {
		err := run(context.Background(), log.NewNop(), []string{filepath.Join(t.TempDir(), "nope.yaml")})
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("Invalid Scenario", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("simulation:\n  frame_time: -1\n"), 0o600))
		err := run(context.Background(), log.NewNop(), []string{path})
		require.ErrorIs(t, err, config.ErrInvalidConfig)
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := run(ctx, log.NewNop(), []string{"../../examples/scenarios/head_on.yaml"})
		require.ErrorIs(t, err, context.Canceled)
	})
}
