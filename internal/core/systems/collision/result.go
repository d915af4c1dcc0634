package collision

import "github.com/zeusync/collision/internal/core/systems/physics"

// Owner records which shape contributed the axis chosen as hit normal.
type Owner uint8

const (
	OwnerSelf Owner = iota
	OwnerOther
)

func (o Owner) flip() Owner {
	if o == OwnerSelf {
		return OwnerOther
	}
	return OwnerSelf
}

// Result describes one resolved test between a shape ("self") and another
// shape or polygon set ("other").
//
// A final Result is either intersecting (already overlapping at the start of
// the frame, resolved by MinimumTranslationVector) or will-intersect (first
// contact at CollisionTime, a fraction of the frame's motion), never both.
// HitNormal is a unit vector pointing from other toward self.
type Result struct {
	IsIntersecting bool
	WillIntersect  bool
	CollisionTime  float64

	HitNormal   physics.Vec2
	NormalOwner Owner

	MinimumTranslationVector physics.Vec2

	// signed gap (future hits) or negative penetration (overlaps)
	distance float64
}

// Distance returns the signed gap (positive) or penetration (negative) along the hit normal.
func (r Result) Distance() float64 { return r.distance }

// Mirror returns the same contact seen from the other shape.
func (r Result) Mirror() Result {
	m := r
	m.HitNormal = r.HitNormal.Mul(-1)
	m.MinimumTranslationVector = r.MinimumTranslationVector.Mul(-1)
	m.NormalOwner = r.NormalOwner.flip()
	return m
}

// beats reports whether r should replace best when several polygons are
// tested against the same shape: any overlap beats a future hit, the
// shallowest overlap wins among overlaps and the earliest hit among future hits.
func (r Result) beats(best Result) bool {
	switch {
	case r.IsIntersecting != best.IsIntersecting:
		return r.IsIntersecting
	case r.IsIntersecting:
		return r.distance > best.distance
	default:
		return r.CollisionTime < best.CollisionTime
	}
}
