package world

import (
	"fmt"
	"math"

	"github.com/zeusync/collision/internal/core/models"
	"github.com/zeusync/collision/internal/core/systems/collision"
	"github.com/zeusync/collision/internal/core/systems/physics"
)

// ExitPolicy decides what happens to a body whose extent leaves the world.
type ExitPolicy string

const (
	// ExitDespawn removes the body, e.g. a projectile leaving the playfield.
	ExitDespawn ExitPolicy = "despawn"
	// ExitClamp pushes the body back inside and stops its outward motion.
	ExitClamp ExitPolicy = "clamp"
	// ExitFail aborts the step with the out-of-range error.
	ExitFail ExitPolicy = "fail"
)

// CollideFunc observes every contact delivered to a body, after the default
// response has been recorded.
type CollideFunc func(b *Body, target collision.Target, normal physics.Vec2, result collision.Result)

// BodyDef describes a body to spawn.
type BodyDef struct {
	Tag      string         `yaml:"tag" json:"tag"`
	Position physics.Vec2   `yaml:"position" json:"position"`
	Velocity physics.Vec2   `yaml:"velocity" json:"velocity"`
	Width    float64        `yaml:"width" json:"width"`
	Height   float64        `yaml:"height" json:"height"`
	Shape    []physics.Vec2 `yaml:"shape,omitempty" json:"shape,omitempty"`
	// Mass of zero means 1.
	Mass        float64    `yaml:"mass,omitempty" json:"mass,omitempty"`
	Restitution float64    `yaml:"restitution,omitempty" json:"restitution,omitempty"`
	Exit        ExitPolicy `yaml:"exit,omitempty" json:"exit,omitempty"`
	// Kinematic bodies ignore gravity and collision responses; they still
	// report contacts.
	Kinematic bool `yaml:"kinematic,omitempty" json:"kinematic,omitempty"`

	OnCollide CollideFunc `yaml:"-" json:"-"`
}

func (d BodyDef) polygon() (*physics.BoundingPolygon, error) {
	var poly *physics.BoundingPolygon
	switch {
	case len(d.Shape) >= 3:
		poly = physics.NewBoundingPolygon(d.Shape...)
	case len(d.Shape) > 0:
		return nil, fmt.Errorf("%w: %q needs at least 3 vertices", ErrInvalidBody, d.Tag)
	case d.Width > 0 && d.Height > 0:
		poly = physics.NewBoundingBox(d.Width, d.Height)
	default:
		return nil, fmt.Errorf("%w: %q has size %vx%v", ErrInvalidBody, d.Tag, d.Width, d.Height)
	}
	if d.Mass < 0 || d.Restitution < 0 || d.Restitution > 1 {
		return nil, fmt.Errorf("%w: %q mass %v restitution %v", ErrInvalidBody, d.Tag, d.Mass, d.Restitution)
	}
	switch d.Exit {
	case "", ExitDespawn, ExitClamp, ExitFail:
	default:
		return nil, fmt.Errorf("%w: %q exit policy %q", ErrInvalidBody, d.Tag, d.Exit)
	}
	poly.MoveTo(d.Position[0], d.Position[1])
	return poly, nil
}

// Body is a movable collidable stored in the world's arena. Pointers to a
// Body stay valid until the next Spawn outside of a step.
type Body struct {
	id          models.EntityID
	tag         string
	poly        *physics.BoundingPolygon
	vel         physics.Vec2
	mass        float64
	restitution float64
	exit        ExitPolicy
	kinematic   bool
	onCollide   CollideFunc

	// grid holds the extent the body is registered under in the spatial grid.
	grid physics.Extent
	// start is the center at the beginning of the step in progress and
	// frameTime its length; together they give the motion the collision
	// tests sweep back along.
	start     physics.Vec2
	frameTime float64
	stepping  bool

	// entity responses accumulated during the event flush
	rewind  float64
	impulse physics.Vec2
	push    physics.Vec2
	dirty   bool

	contacts uint64
	alive    bool
}

var _ collision.Collidable = (*Body)(nil)

func (b *Body) ID() models.EntityID                       { return b.id }
func (b *Body) Tag() string                               { return b.tag }
func (b *Body) BoundingPolygon() *physics.BoundingPolygon { return b.poly }
func (b *Body) SetVelocity(v physics.Vec2)                { b.vel = v }
func (b *Body) Position() physics.Vec2                    { return b.poly.Center() }
func (b *Body) Mass() float64                             { return b.mass }
func (b *Body) Contacts() uint64                          { return b.contacts }
func (b *Body) Kinematic() bool                           { return b.kinematic }

// Velocity implements collision.Collidable. While a step runs it reports the
// motion the body actually made this frame, which differs from the stored
// velocity once a static contact has moved or bounced it.
func (b *Body) Velocity() physics.Vec2 {
	if b.stepping {
		return b.displacement().Mul(1 / b.frameTime)
	}
	return b.vel
}

// displacement is how far the body has moved since the step began.
func (b *Body) displacement() physics.Vec2 {
	return b.poly.Center().Sub(b.start)
}

func (b *Body) begin(dt float64) {
	b.start = b.poly.Center()
	b.frameTime = dt
	b.stepping = true
	b.resetPending()
}

// Collide implements collision.Collidable. Static contacts are resolved on
// the spot; entity contacts are accumulated and committed after the flush so
// the outcome does not depend on delivery order.
func (b *Body) Collide(target collision.Target, normal physics.Vec2, result collision.Result) {
	b.contacts++
	if !b.kinematic {
		switch target.Kind {
		case collision.TargetStatic:
			b.resolveStatic(normal, result)
		case collision.TargetEntity:
			b.accumulate(target.Entity, normal, result)
		}
	}
	if b.onCollide != nil {
		b.onCollide(b, target, normal, result)
	}
}

func (b *Body) resolveStatic(normal physics.Vec2, r collision.Result) {
	if r.IsIntersecting {
		mtv := r.MinimumTranslationVector
		b.poly.Translate(mtv[0], mtv[1])
	} else {
		// Back up to the contact, then spend the rest of the motion sliding.
		remaining := b.displacement().Mul(1 - r.CollisionTime)
		slide := remaining.Sub(normal.Mul(remaining.Dot(normal)))
		b.poly.Translate(slide[0]-remaining[0], slide[1]-remaining[1])
	}
	b.vel = reflect(b.vel, normal, b.restitution)
}

func (b *Body) accumulate(other collision.Collidable, normal physics.Vec2, r collision.Result) {
	share, restitution := 1.0, b.restitution
	if ob, ok := other.(*Body); ok {
		restitution = (b.restitution + ob.restitution) / 2
		if !ob.kinematic {
			share = ob.mass / (b.mass + ob.mass)
		}
	}

	b.dirty = true
	if r.IsIntersecting {
		b.push = b.push.Add(r.MinimumTranslationVector.Mul(share))
		return
	}

	b.rewind = math.Min(b.rewind, r.CollisionTime)
	closing := b.Velocity().Sub(other.Velocity()).Dot(normal)
	if closing < 0 {
		b.impulse = b.impulse.Add(normal.Mul(-closing * (1 + restitution) * share))
	}
}

// commit applies the accumulated entity responses. The rewind follows the
// motion the entity tests swept, not the velocity left by a static bounce.
func (b *Body) commit() bool {
	if !b.dirty {
		return false
	}
	if b.rewind < 1 {
		back := b.displacement().Mul(1 - b.rewind)
		b.poly.Translate(-back[0], -back[1])
	}
	b.poly.Translate(b.push[0], b.push[1])
	b.vel = b.vel.Add(b.impulse)
	b.resetPending()
	return true
}

func (b *Body) resetPending() {
	b.rewind = 1
	b.impulse = physics.Vec2{}
	b.push = physics.Vec2{}
	b.dirty = false
}

// reflect removes the velocity component going into the surface and bounces
// back the given fraction of it.
func reflect(v, normal physics.Vec2, restitution float64) physics.Vec2 {
	vn := v.Dot(normal)
	if vn >= 0 {
		return v
	}
	return v.Sub(normal.Mul(vn * (1 + restitution)))
}
