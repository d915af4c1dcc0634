package collision

import (
	"github.com/zeusync/collision/internal/core/models"
	"github.com/zeusync/collision/internal/core/systems/physics"
)

// Collidable is anything that takes part in collision tests.
//
// BoundingPolygon returns the shape at its end-of-frame position, i.e. after
// the frame's motion has been applied; the manager reconstructs the start of
// the frame from Velocity. Collide is invoked once per resolved contact with a
// fully populated Result and a normal pointing from the target toward the
// receiver.
type Collidable interface {
	ID() models.EntityID
	BoundingPolygon() *physics.BoundingPolygon
	Velocity() physics.Vec2
	Collide(target Target, normal physics.Vec2, result Result)
}

// TargetKind tags what a Collidable collided with.
type TargetKind uint8

const (
	TargetStatic TargetKind = iota + 1
	TargetEntity
)

func (k TargetKind) String() string {
	switch k {
	case TargetStatic:
		return "static"
	case TargetEntity:
		return "entity"
	default:
		return "unknown"
	}
}

// Target is the other side of a contact: static geometry or another entity.
// Exactly one of Polygon and Entity is set, according to Kind.
type Target struct {
	Kind    TargetKind
	Polygon *physics.BoundingPolygon
	Entity  Collidable
}

// StaticTarget wraps a static polygon as a contact target.
func StaticTarget(p *physics.BoundingPolygon) Target {
	return Target{Kind: TargetStatic, Polygon: p}
}

// EntityTarget wraps another collidable as a contact target.
func EntityTarget(c Collidable) Target {
	return Target{Kind: TargetEntity, Entity: c}
}
