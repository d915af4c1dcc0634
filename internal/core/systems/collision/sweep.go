package collision

import (
	"math"

	"github.com/zeusync/collision/internal/core/systems/physics"
)

// Axis is a candidate separating axis: a unit edge normal and the shape it came from.
type Axis struct {
	Normal physics.Vec2
	Owner  Owner
}

// AppendAxes appends the edge normals of self and other to buf.
func AppendAxes(buf []Axis, self, other *physics.BoundingPolygon) []Axis {
	for _, n := range self.Normals() {
		buf = append(buf, Axis{Normal: n, Owner: OwnerSelf})
	}
	for _, n := range other.Normals() {
		buf = append(buf, Axis{Normal: n, Owner: OwnerOther})
	}
	return buf
}

// Sweep runs the separating axis test between a and b while a moves by
// displacement relative to b over one frame. Both shapes must be at their
// start-of-frame positions.
//
// Each axis yields the interval of frame time during which the projections
// overlap. The shapes touch when all intervals overlap; the latest entry time
// is the time of impact and its axis the hit normal. An axis that shows a gap
// without closing speed, or a gap that cannot close within the frame, proves
// there is no contact and ends the test early. When every axis already
// overlaps the shapes intersect and the least-penetration axis gives the
// minimum translation vector.
func Sweep(a, b *physics.BoundingPolygon, displacement physics.Vec2, axes []Axis, cfg Config) (Result, bool) {
	if len(axes) == 0 {
		return Result{}, false
	}

	enter, exit := math.Inf(-1), math.Inf(1)
	var (
		hitNormal physics.Vec2
		hitOwner  Owner
		gap       float64

		penetration = math.Inf(1)
		mtvNormal   physics.Vec2
		mtvOwner    Owner
	)

	for _, ax := range axes {
		n := ax.Normal
		aLo, aHi := a.Project(n)
		bLo, bHi := b.Project(n)

		// dir orients n from b toward a.
		dir, dist := 1.0, aLo-bHi
		if aLo < bLo {
			dir, dist = -1.0, bLo-aHi
		}
		speed := displacement.Dot(n)
		moving := math.Abs(speed) >= cfg.VelocityEpsilon

		if dist < 0 {
			if -dist < penetration {
				penetration = -dist
				mtvNormal = n.Mul(dir)
				mtvOwner = ax.Owner
			}
			if moving {
				var t float64
				if speed > 0 {
					t = (bHi - aLo) / speed
				} else {
					t = (bLo - aHi) / speed
				}
				exit = math.Min(exit, t)
			}
		} else {
			if !moving || speed*dir >= 0 {
				return Result{}, false
			}
			rate := math.Abs(speed)
			t := dist / rate
			if t >= 1 {
				return Result{}, false
			}
			if t > enter {
				enter = t
				hitNormal = n.Mul(dir)
				hitOwner = ax.Owner
				gap = dist
			}
			exit = math.Min(exit, (dist+(aHi-aLo)+(bHi-bLo))/rate)
		}

		if enter >= exit {
			return Result{}, false
		}
	}

	if math.IsInf(enter, -1) {
		return Result{
			IsIntersecting:           true,
			HitNormal:                mtvNormal,
			NormalOwner:              mtvOwner,
			MinimumTranslationVector: mtvNormal.Mul(penetration),
			distance:                 -penetration,
		}, true
	}

	return Result{
		WillIntersect: true,
		CollisionTime: math.Max(0, enter-cfg.TimeMargin),
		HitNormal:     hitNormal,
		NormalOwner:   hitOwner,
		distance:      gap,
	}, true
}

// parallelTolerance bounds how far a hit normal may deviate from a line's
// own normal and still count as crossing the line.
const parallelTolerance = 1e-9

// sweepOneSided applies the blocking rules of a one-sided line on top of a
// Sweep result: the line only stops shapes crossing its front face, and only
// pushes out shapes whose center is still in front of it. Touching a line
// end from the side does not count, which keeps shapes from snagging on the
// seam between two collinear lines.
func sweepOneSided(a, line *physics.BoundingPolygon, displacement physics.Vec2, r Result, cfg Config) (Result, bool) {
	n := line.Normals()[0]
	p := line.Vertices()[0].Dot(n)

	if r.WillIntersect {
		if displacement.Dot(n) > -cfg.VelocityEpsilon || r.HitNormal.Dot(n) < 1-parallelTolerance {
			return Result{}, false
		}
		return r, true
	}

	if a.Center().Dot(n) < p {
		return Result{}, false
	}
	aLo, _ := a.Project(n)
	depth := p - aLo
	r.HitNormal = n
	r.NormalOwner = OwnerOther
	r.MinimumTranslationVector = n.Mul(depth)
	r.distance = -depth
	return r, true
}
