package physics

import "math"

// BoundingPolygon is a convex collision shape described by clockwise local
// vertices around an implicit center. World-space vertices are recomputed
// eagerly on every mutation so that
//
//	translated[i] = local[i] ⊙ scale + center
//
// always holds. A polygon with exactly two vertices is a one-sided line
// segment whose single normal marks the blocking side.
type BoundingPolygon struct {
	local      []Vec2
	translated []Vec2
	normals    []Vec2
	center     Vec2
	scale      Vec2

	left, right, top, bottom int
}

// NewBoundingPolygon creates a polygon from clockwise local vertices.
func NewBoundingPolygon(points ...Vec2) *BoundingPolygon {
	p := &BoundingPolygon{scale: Vec2{1, 1}}
	if len(points) > 0 {
		p.AddVertices(points...)
	}
	return p
}

// NewBoundingBox creates an axis-aligned box of the given size centered on the origin.
func NewBoundingBox(width, height float64) *BoundingPolygon {
	hw, hh := width/2, height/2
	return NewBoundingPolygon(
		Vec2{-hw, -hh},
		Vec2{hw, -hh},
		Vec2{hw, hh},
		Vec2{-hw, hh},
	)
}

// NewLine creates a one-sided segment from a to b in world space. The
// blocking side is the one Perp(b-a) points to.
func NewLine(a, b Vec2) *BoundingPolygon {
	mid := a.Add(b).Mul(0.5)
	p := NewBoundingPolygon(a.Sub(mid), b.Sub(mid))
	p.MoveTo(mid[0], mid[1])
	return p
}

// AddVertices appends local vertices, rebuilds edge normals and extrema and
// reapplies the current center and scale.
func (p *BoundingPolygon) AddVertices(points ...Vec2) {
	// Vec2 is an array type, so appending copies the caller's values.
	p.local = append(p.local, points...)
	if len(p.translated) < len(p.local) {
		p.translated = make([]Vec2, len(p.local))
	}
	p.rebuild()
	p.apply()
}

func (p *BoundingPolygon) rebuild() {
	n := len(p.local)
	p.normals = p.normals[:0]
	switch {
	case n == 2:
		if nn := SafeNormalize(Perp(p.local[1].Sub(p.local[0]))); nn != (Vec2{}) {
			p.normals = append(p.normals, nn)
		}
	case n > 2:
		for i := 0; i < n; i++ {
			edge := p.local[(i+1)%n].Sub(p.local[i])
			if nn := SafeNormalize(Perp(edge)); nn != (Vec2{}) {
				p.normals = append(p.normals, nn)
			}
		}
	}

	p.left, p.right, p.top, p.bottom = 0, 0, 0, 0
	for i, v := range p.local {
		if v[0] < p.local[p.left][0] {
			p.left = i
		}
		if v[0] > p.local[p.right][0] {
			p.right = i
		}
		if v[1] < p.local[p.top][1] {
			p.top = i
		}
		if v[1] > p.local[p.bottom][1] {
			p.bottom = i
		}
	}
}

func (p *BoundingPolygon) apply() {
	for i, v := range p.local {
		p.translated[i] = Vec2{v[0]*p.scale[0] + p.center[0], v[1]*p.scale[1] + p.center[1]}
	}
}

// MoveTo places the polygon center at (x, y).
func (p *BoundingPolygon) MoveTo(x, y float64) {
	p.center = Vec2{x, y}
	p.apply()
}

// Translate moves the polygon center by (dx, dy).
func (p *BoundingPolygon) Translate(dx, dy float64) {
	p.center = Vec2{p.center[0] + dx, p.center[1] + dy}
	for i := range p.local {
		p.translated[i] = Vec2{p.translated[i][0] + dx, p.translated[i][1] + dy}
	}
}

// Scale multiplies the world-space extent of the polygon around its center.
// Local vertices and edge normals are left untouched, so only positive
// factors (and uniform ones for non axis-aligned edges) keep the normals exact.
func (p *BoundingPolygon) Scale(sx, sy float64) {
	p.scale = Vec2{p.scale[0] * sx, p.scale[1] * sy}
	p.apply()
}

// Clone deep-copies the polygon.
func (p *BoundingPolygon) Clone() *BoundingPolygon {
	return p.CloneInto(&BoundingPolygon{})
}

// CloneInto deep-copies the polygon into dst, reusing dst's storage, and
// returns dst.
func (p *BoundingPolygon) CloneInto(dst *BoundingPolygon) *BoundingPolygon {
	dst.local = append(dst.local[:0], p.local...)
	if cap(dst.translated) < len(p.local) {
		dst.translated = make([]Vec2, len(p.local))
	}
	dst.translated = dst.translated[:len(p.local)]
	dst.normals = append(dst.normals[:0], p.normals...)
	dst.center, dst.scale = p.center, p.scale
	dst.left, dst.right, dst.top, dst.bottom = p.left, p.right, p.top, p.bottom
	dst.apply()
	return dst
}

// Center returns the world-space center.
func (p *BoundingPolygon) Center() Vec2 { return p.center }

// ScaleFactor returns the accumulated per-axis scale.
func (p *BoundingPolygon) ScaleFactor() Vec2 { return p.scale }

// Vertices returns the world-space vertices. The slice is owned by the polygon.
func (p *BoundingPolygon) Vertices() []Vec2 { return p.translated[:len(p.local)] }

// LocalVertices returns the vertices relative to the center. The slice is owned by the polygon.
func (p *BoundingPolygon) LocalVertices() []Vec2 { return p.local }

// Normals returns the unit outward edge normals. The slice is owned by the polygon.
func (p *BoundingPolygon) Normals() []Vec2 { return p.normals }

// IsLine reports whether the polygon is a one-sided segment.
func (p *BoundingPolygon) IsLine() bool { return len(p.local) == 2 }

// Left returns the smallest world-space x of the vertices.
func (p *BoundingPolygon) Left() float64 { return p.translated[p.left][0] }

// Right returns the largest world-space x of the vertices.
func (p *BoundingPolygon) Right() float64 { return p.translated[p.right][0] }

// Top returns the smallest world-space y of the vertices (y grows downward).
func (p *BoundingPolygon) Top() float64 { return p.translated[p.top][1] }

// Bottom returns the largest world-space y of the vertices.
func (p *BoundingPolygon) Bottom() float64 { return p.translated[p.bottom][1] }

// Bounds returns the axis-aligned extent of the world-space vertices.
func (p *BoundingPolygon) Bounds() Extent {
	if len(p.local) == 0 {
		return Extent{X: p.center[0], Y: p.center[1]}
	}
	l, r, t, b := p.Left(), p.Right(), p.Top(), p.Bottom()
	return Extent{X: (l + r) / 2, Y: (t + b) / 2, Width: r - l, Height: b - t}
}

// Project returns the interval covered by the world-space vertices on axis.
func (p *BoundingPolygon) Project(axis Vec2) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range p.Vertices() {
		d := v.Dot(axis)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return lo, hi
}
