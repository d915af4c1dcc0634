package metrics

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/collision/internal/core/events/bus"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	t.Run("Counter", func(t *testing.T) {
		c := r.Counter("hits")
		require.Same(t, c, r.Counter("hits"))

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range 100 {
					r.Counter("hits").Inc()
				}
			}()
		}
		wg.Wait()
		c.Add(5)
		require.Equal(t, uint64(805), c.Value())
	})

	t.Run("Histogram", func(t *testing.T) {
		h := r.Histogram("latency")
		require.Zero(t, h.Mean())
		for _, v := range []float64{3, 1, 2} {
			h.Observe(v)
		}
		require.Equal(t, uint64(3), h.Count())
		require.Equal(t, 6.0, h.Sum())
		require.Equal(t, 2.0, h.Mean())
		require.Equal(t, 1.0, h.Min())
		require.Equal(t, 3.0, h.Max())
	})

	t.Run("Export", func(t *testing.T) {
		out := r.Export()
		require.Len(t, out, 2)
		require.Equal(t, "hits", out[0].Name)
		require.Equal(t, KindCounter, out[0].Kind)
		require.Equal(t, uint64(805), out[0].Count)
		require.Equal(t, "latency", out[1].Name)
		require.Equal(t, KindHistogram, out[1].Kind)
		require.Equal(t, 3.0, out[1].Max)
	})
}

func TestBusObserver(t *testing.T) {
	r := NewRegistry()
	b := bus.New()
	b.AddObserver(NewBusObserver(r))

	boom := errors.New("boom")
	_, err := b.Subscribe("hit", func(bus.Event) error { return boom })
	require.NoError(t, err)

	require.ErrorIs(t, b.Publish(bus.NewEvent("hit", "test", nil, nil)), boom)
	require.NoError(t, b.Publish(bus.NewEvent("miss", "test", nil, nil)))

	require.Equal(t, uint64(1), r.Counter("bus.published.hit").Value())
	require.Equal(t, uint64(1), r.Counter("bus.errors.hit").Value())
	require.Equal(t, uint64(1), r.Counter("bus.published.miss").Value())
	require.Zero(t, r.Counter("bus.errors.miss").Value())
	require.Equal(t, uint64(1), r.Histogram("bus.delivery_seconds.hit").Count())
	require.GreaterOrEqual(t, r.Histogram("bus.delivery_seconds.hit").Max(), 0.0)
}
