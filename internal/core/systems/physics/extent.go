package physics

// Extent describes an axis-aligned rectangle by its center and size.
type Extent struct {
	X, Y          float64
	Width, Height float64
}

// Min returns the top-left corner in a y-down frame.
func (e Extent) Min() Vec2 { return Vec2{e.X - e.Width/2, e.Y - e.Height/2} }

// Max returns the bottom-right corner in a y-down frame.
func (e Extent) Max() Vec2 { return Vec2{e.X + e.Width/2, e.Y + e.Height/2} }

// Union returns the smallest extent covering both e and o.
func (e Extent) Union(o Extent) Extent {
	emin, emax := e.Min(), e.Max()
	omin, omax := o.Min(), o.Max()
	minX, minY := min(emin[0], omin[0]), min(emin[1], omin[1])
	maxX, maxY := max(emax[0], omax[0]), max(emax[1], omax[1])
	return Extent{X: (minX + maxX) / 2, Y: (minY + maxY) / 2, Width: maxX - minX, Height: maxY - minY}
}
