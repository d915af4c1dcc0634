package physics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func requireVec(t *testing.T, want, got Vec2) {
	t.Helper()
	require.InDelta(t, want[0], got[0], 1e-9, "x of %v", got)
	require.InDelta(t, want[1], got[1], 1e-9, "y of %v", got)
}

func TestBoundingPolygon(t *testing.T) {
	t.Run("Box Normals Point Outward", func(t *testing.T) {
		box := NewBoundingBox(4, 2)
		normals := box.Normals()
		require.Len(t, normals, 4)
		requireVec(t, V(0, -1), normals[0])
		requireVec(t, V(1, 0), normals[1])
		requireVec(t, V(0, 1), normals[2])
		requireVec(t, V(-1, 0), normals[3])
	})

	t.Run("Translation Invariant", func(t *testing.T) {
		box := NewBoundingBox(4, 2)
		box.MoveTo(10, 20)
		box.Translate(1, -2)
		requireVec(t, V(11, 18), box.Center())
		for i, v := range box.Vertices() {
			requireVec(t, box.LocalVertices()[i].Add(box.Center()), v)
		}
		require.Equal(t, 9.0, box.Left())
		require.Equal(t, 13.0, box.Right())
		require.Equal(t, 17.0, box.Top())
		require.Equal(t, 19.0, box.Bottom())
	})

	t.Run("AddVertices Copies Input", func(t *testing.T) {
		pts := []Vec2{{-1, -1}, {1, -1}, {0, 1}}
		p := NewBoundingPolygon()
		p.MoveTo(5, 5)
		p.AddVertices(pts...)
		pts[0] = V(100, 100)
		requireVec(t, V(4, 4), p.Vertices()[0])
		require.Len(t, p.Normals(), 3)
	})

	t.Run("Scale Leaves Local Frame", func(t *testing.T) {
		unit := NewBoundingBox(1, 1)
		unit.MoveTo(8, 8)
		unit.Scale(16, 16)
		require.Equal(t, 0.0, unit.Left())
		require.Equal(t, 16.0, unit.Right())
		requireVec(t, V(-0.5, -0.5), unit.LocalVertices()[0])
		requireVec(t, V(0, -1), unit.Normals()[0])

		unit.Translate(2, 0)
		require.Equal(t, 2.0, unit.Left())
		unit.MoveTo(0, 0)
		require.Equal(t, -8.0, unit.Left())
	})

	t.Run("Clone Is Deep", func(t *testing.T) {
		box := NewBoundingBox(2, 2)
		box.MoveTo(3, 3)
		c := box.Clone()
		c.Translate(10, 0)
		requireVec(t, V(3, 3), box.Center())
		requireVec(t, V(13, 3), c.Center())
		require.Equal(t, box.Normals(), c.Normals())
	})

	t.Run("Clone Into Reuses Storage", func(t *testing.T) {
		dst := NewBoundingBox(8, 8)
		line := NewLine(V(0, 10), V(16, 10))

		got := line.CloneInto(dst)
		require.Same(t, dst, got)
		require.True(t, got.IsLine())
		require.Equal(t, line.Vertices(), got.Vertices())
		require.Equal(t, line.Normals(), got.Normals())
		require.Equal(t, line.Bounds(), got.Bounds())
	})

	t.Run("Line Has One Normal", func(t *testing.T) {
		floor := NewLine(V(0, 10), V(16, 10))
		require.True(t, floor.IsLine())
		require.Len(t, floor.Normals(), 1)
		requireVec(t, V(0, -1), floor.Normals()[0])
		requireVec(t, V(8, 10), floor.Center())
		requireVec(t, V(0, 10), floor.Vertices()[0])
	})

	t.Run("Project", func(t *testing.T) {
		box := NewBoundingBox(4, 4)
		box.MoveTo(10, 0)
		lo, hi := box.Project(V(1, 0))
		require.Equal(t, 8.0, lo)
		require.Equal(t, 12.0, hi)
		lo, hi = box.Project(V(-1, 0))
		require.Equal(t, -12.0, lo)
		require.Equal(t, -8.0, hi)
	})

	t.Run("Bounds", func(t *testing.T) {
		box := NewBoundingBox(4, 6)
		box.MoveTo(1, 2)
		require.Equal(t, Extent{X: 1, Y: 2, Width: 4, Height: 6}, box.Bounds())
	})
}

func TestExtentUnion(t *testing.T) {
	a := Extent{X: 0, Y: 0, Width: 2, Height: 2}
	b := Extent{X: 10, Y: 0, Width: 2, Height: 2}
	u := a.Union(b)
	require.Equal(t, Extent{X: 5, Y: 0, Width: 12, Height: 2}, u)
}

func TestVectorHelpers(t *testing.T) {
	require.Equal(t, Vec2{}, SafeNormalize(Vec2{}))
	requireVec(t, V(0.6, 0.8), SafeNormalize(V(3, 4)))
	require.Equal(t, V(6, -8), Hadamard(V(2, 4), V(3, -2)))
	require.Equal(t, 5.0, DistanceV(V(0, 0), V(3, 4)))
}
