package log

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromZap(zap.New(core))

	t.Run("Fields", func(t *testing.T) {
		l.Warn("entity missing", Uint64("entity", 7), Int("cell", 3), Error(errors.New("boom")))
		entries := logs.FilterMessage("entity missing").All()
		require.Len(t, entries, 1)
		ctx := entries[0].ContextMap()
		require.Equal(t, uint64(7), ctx["entity"])
		require.Equal(t, int64(3), ctx["cell"])
		require.Equal(t, "boom", ctx["error"])
	})

	t.Run("Level Filter", func(t *testing.T) {
		l.SetLevel(LevelWarn)
		defer l.SetLevel(LevelDebug)
		l.Debug("hidden")
		require.Zero(t, logs.FilterMessage("hidden").Len())
		require.Equal(t, LevelWarn, l.GetLevel())
	})

	t.Run("With", func(t *testing.T) {
		l.With(String("component", "grid")).Info("tagged")
		entries := logs.FilterMessage("tagged").All()
		require.Len(t, entries, 1)
		require.Equal(t, "grid", entries[0].ContextMap()["component"])
	})
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, LevelDebug, ParseLevel("debug"))
	require.Equal(t, LevelWarn, ParseLevel("warning"))
	require.Equal(t, LevelSilent, ParseLevel("off"))
	require.Equal(t, LevelInfo, ParseLevel("nonsense"))
}
