package system

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/collision/internal/core/systems"
)

type fakeSystem struct {
	name     string
	priority systems.Priority
	calls    *[]string
	err      error
	dt       float64
}

func (f *fakeSystem) Name() string               { return f.name }
func (f *fakeSystem) Priority() systems.Priority { return f.priority }
func (f *fakeSystem) Update(deltaTime float64) error {
	f.dt = deltaTime
	*f.calls = append(*f.calls, f.name)
	return f.err
}

func TestManager(t *testing.T) {
	t.Run("Priority Order", func(t *testing.T) {
		var calls []string
		m := NewManager(nil)
		require.NoError(t, m.RegisterSystem(&fakeSystem{name: "render", priority: systems.PriorityLow, calls: &calls}))
		require.NoError(t, m.RegisterSystem(&fakeSystem{name: "physics", priority: systems.PriorityHigh, calls: &calls}))
		require.NoError(t, m.RegisterSystem(&fakeSystem{name: "ai", priority: systems.PriorityNormal, calls: &calls}))
		require.NoError(t, m.RegisterSystem(&fakeSystem{name: "audio", priority: systems.PriorityLow, calls: &calls}))

		require.Equal(t, []string{"physics", "ai", "render", "audio"}, m.GetExecutionOrder())
		require.NoError(t, m.Update(0.5))
		require.Equal(t, []string{"physics", "ai", "render", "audio"}, calls)

		s, ok := m.GetSystem("ai")
		require.True(t, ok)
		require.Equal(t, 0.5, s.(*fakeSystem).dt)
	})

	t.Run("Register And Unregister", func(t *testing.T) {
		var calls []string
		m := NewManager(nil)
		require.NoError(t, m.RegisterSystem(&fakeSystem{name: "a", calls: &calls}))
		require.ErrorIs(t, m.RegisterSystem(&fakeSystem{name: "a", calls: &calls}), ErrSystemExists)
		require.True(t, m.HasSystem("a"))

		require.NoError(t, m.UnregisterSystem("a"))
		require.False(t, m.HasSystem("a"))
		require.ErrorIs(t, m.UnregisterSystem("a"), ErrSystemNotFound)
		require.Zero(t, m.GetMetrics().RegisteredSystems)
	})

	t.Run("Errors Do Not Stop Other Systems", func(t *testing.T) {
		var (
			calls  []string
			failed []string
		)
		boom := errors.New("boom")
		m := NewManager(nil)
		m.OnSystemError(func(name string, _ error) { failed = append(failed, name) })
		require.NoError(t, m.RegisterSystem(&fakeSystem{name: "bad", priority: systems.PriorityHighest, calls: &calls, err: boom}))
		require.NoError(t, m.RegisterSystem(&fakeSystem{name: "good", calls: &calls}))

		err := m.Update(1)
		require.ErrorIs(t, err, boom)
		require.Equal(t, []string{"bad", "good"}, calls)
		require.Equal(t, []string{"bad"}, failed)

		metrics, ok := m.GetSystemMetrics("bad")
		require.True(t, ok)
		require.Equal(t, uint64(1), metrics.ExecutionCount)
		require.Equal(t, uint64(1), metrics.ErrorCount)
		require.ErrorIs(t, metrics.LastError, boom)
		require.Equal(t, uint32(1), m.GetMetrics().SystemErrorCount["bad"])

		_, ok = m.GetSystemMetrics("missing")
		require.False(t, ok)
	})

	t.Run("Run", func(t *testing.T) {
		var calls []string
		m := NewManager(nil)
		require.NoError(t, m.RegisterSystem(&fakeSystem{name: "tick", calls: &calls}))

		require.NoError(t, m.Run(context.Background(), 3, 0.25))
		require.Len(t, calls, 3)
		require.Equal(t, uint64(3), m.GetMetrics().Frames)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.ErrorIs(t, m.Run(ctx, 3, 0.25), context.Canceled)
		require.Len(t, calls, 3)
	})

	t.Run("Run Stops On Failure", func(t *testing.T) {
		var calls []string
		boom := errors.New("boom")
		m := NewManager(nil)
		require.NoError(t, m.RegisterSystem(&fakeSystem{name: "bad", calls: &calls, err: boom}))
		require.ErrorIs(t, m.Run(context.Background(), 5, 1), boom)
		require.Len(t, calls, 1)
	})
}
