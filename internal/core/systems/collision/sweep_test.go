package collision

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/collision/internal/core/systems/physics"
)

func boxAt(x, y, w, h float64) *physics.BoundingPolygon {
	p := physics.NewBoundingBox(w, h)
	p.MoveTo(x, y)
	return p
}

func TestSweep(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("No Axes", func(t *testing.T) {
		_, ok := Sweep(boxAt(0, 0, 2, 2), boxAt(1, 0, 2, 2), physics.Vec2{}, nil, cfg)
		require.False(t, ok)
	})

	t.Run("Tiny Velocity Is Treated As Still", func(t *testing.T) {
		a, b := boxAt(0, 0, 2, 2), boxAt(3, 0, 2, 2)
		axes := AppendAxes(nil, a, b)
		_, ok := Sweep(a, b, physics.V(1e-13, 0), axes, cfg)
		require.False(t, ok)
	})

	t.Run("Moving Apart", func(t *testing.T) {
		a, b := boxAt(0, 0, 2, 2), boxAt(3, 0, 2, 2)
		axes := AppendAxes(nil, a, b)
		_, ok := Sweep(a, b, physics.V(-5, 0), axes, cfg)
		require.False(t, ok)
	})

	t.Run("Time Margin", func(t *testing.T) {
		a, b := boxAt(0, 0, 2, 2), boxAt(3, 0, 2, 2)
		axes := AppendAxes(nil, a, b)

		r, ok := Sweep(a, b, physics.V(2, 0), axes, Config{VelocityEpsilon: 1e-12})
		require.True(t, ok)
		require.Equal(t, 0.5, r.CollisionTime)

		r, ok = Sweep(a, b, physics.V(2, 0), axes, Config{VelocityEpsilon: 1e-12, TimeMargin: 0.1})
		require.True(t, ok)
		require.InDelta(t, 0.4, r.CollisionTime, 1e-12)

		r, ok = Sweep(boxAt(0, 0, 2, 2), boxAt(2, 0, 2, 2), physics.V(2, 0), axes, cfg)
		require.True(t, ok)
		require.Zero(t, r.CollisionTime, "margin never makes time negative")
	})

	t.Run("Triangle Against Box", func(t *testing.T) {
		// Right triangle whose hypotenuse faces up-right.
		tri := physics.NewBoundingPolygon(physics.V(0, -2), physics.V(2, 2), physics.V(-2, 2))
		tri.MoveTo(0, 0)
		box := boxAt(5, 0, 2, 2)
		axes := AppendAxes(nil, box, tri)

		r, ok := Sweep(box, tri, physics.V(-10, 0), axes, cfg)
		require.True(t, ok)
		require.True(t, r.WillIntersect)
		require.Equal(t, OwnerOther, r.NormalOwner)
		// The hypotenuse normal, pointing from the triangle toward the box.
		require.Greater(t, r.HitNormal[0], 0.0)
		require.Less(t, r.HitNormal[1], 0.0)
		require.InDelta(t, 1.0, r.HitNormal.Len(), 1e-9)
	})
}

func TestResult(t *testing.T) {
	t.Run("Mirror", func(t *testing.T) {
		r := Result{
			WillIntersect:            true,
			CollisionTime:            0.25,
			HitNormal:                physics.V(1, 0),
			NormalOwner:              OwnerSelf,
			MinimumTranslationVector: physics.V(0, 2),
			distance:                 3,
		}
		m := r.Mirror()
		require.Equal(t, physics.V(-1, 0), m.HitNormal)
		require.Equal(t, physics.V(0, -2), m.MinimumTranslationVector)
		require.Equal(t, OwnerOther, m.NormalOwner)
		require.Equal(t, r.CollisionTime, m.CollisionTime)
		require.Equal(t, r, m.Mirror())
	})

	t.Run("Precedence", func(t *testing.T) {
		overlap := Result{IsIntersecting: true, distance: -2}
		shallow := Result{IsIntersecting: true, distance: -0.5}
		early := Result{WillIntersect: true, CollisionTime: 0.1}
		late := Result{WillIntersect: true, CollisionTime: 0.9}

		require.True(t, overlap.beats(early))
		require.False(t, early.beats(overlap))
		require.True(t, shallow.beats(overlap))
		require.False(t, overlap.beats(shallow))
		require.True(t, early.beats(late))
		require.False(t, late.beats(early))
	})

	t.Run("Target Kinds", func(t *testing.T) {
		require.Equal(t, "static", StaticTarget(nil).Kind.String())
		require.Equal(t, "entity", EntityTarget(nil).Kind.String())
		require.Equal(t, "unknown", TargetKind(0).String())
	})
}

func BenchmarkSweep(b *testing.B) {
	a, c := boxAt(0, 0, 2, 2), boxAt(5, 0.5, 2, 2)
	axes := AppendAxes(nil, a, c)
	cfg := DefaultConfig()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Sweep(a, c, physics.V(4, 0), axes, cfg)
	}
}
