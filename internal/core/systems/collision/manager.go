package collision

import (
	"github.com/zeusync/collision/internal/core/events/bus"
	"github.com/zeusync/collision/internal/core/models"
	"github.com/zeusync/collision/internal/core/observability/log"
	"github.com/zeusync/collision/internal/core/systems/physics"
	"github.com/zeusync/collision/pkg/generic"
)

// Bus event types published by the Manager.
const (
	EventTypeStatic = "collision.static"
	EventTypeEntity = "collision.entity"

	eventSource = "collision.manager"
)

// Event is one contact delivered to Self. It is also the payload of the bus
// events published by the Manager.
type Event struct {
	Self   Collidable
	Target Target
	Normal physics.Vec2
	Result Result
	Frame  uint64
}

// Stats counts narrow-phase work since the Manager was created.
type Stats struct {
	StaticTests     uint64
	StaticHits      uint64
	PairTests       uint64
	PairHits        uint64
	EventsDelivered uint64
	Frames          uint64
}

type pairKey struct {
	lo, hi models.EntityID
}

func makePairKey(a, b models.EntityID) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

type pairRecord struct {
	first  models.EntityID
	result Result
	hit    bool
}

// Manager is the narrow phase. Static geometry responses are delivered as
// soon as they are found; entity-vs-entity responses are queued and
// delivered by PerformCollisionEvents so that every pair test of a frame sees
// pre-response geometry.
//
// A Manager is not safe for concurrent use; one instance serves one world.
type Manager struct {
	cfg Config
	log log.Log
	bus bus.EventBus

	queue  []Event
	tested map[pairKey]pairRecord
	axes   []Axis
	frame  uint64
	stats  Stats
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger that reports failed event publishing.
func WithLogger(l log.Log) ManagerOption {
	return func(m *Manager) { m.log = l }
}

// WithEventBus publishes every delivered contact to b.
func WithEventBus(b bus.EventBus) ManagerOption {
	return func(m *Manager) { m.bus = b }
}

// NewManager returns a manager with an empty event queue and a no-op logger.
func NewManager(cfg Config, opts ...ManagerOption) *Manager {
	m := &Manager{
		cfg:    cfg,
		log:    log.NewNop(),
		tested: make(map[pairKey]pairRecord),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Config returns the numeric policy the manager tests with.
func (m *Manager) Config() Config { return m.cfg }

// Stats returns the running test and delivery counters.
func (m *Manager) Stats() Stats { return m.stats }

// Pending returns the queued, undelivered entity events. The slice is owned by the Manager.
func (m *Manager) Pending() []Event { return m.queue }

// TestStatic sweeps obj over one frame against a set of static polygons and
// delivers at most one contact, the best one, to obj immediately.
func (m *Manager) TestStatic(obj Collidable, polygons []*physics.BoundingPolygon, frameTime float64) (Result, bool) {
	disp := obj.Velocity().Mul(frameTime)
	start := snapshot(obj.BoundingPolygon(), disp)
	defer snapshots.Put(start)

	var (
		best     Result
		bestPoly *physics.BoundingPolygon
		found    bool
	)
	for _, poly := range polygons {
		if len(poly.Vertices()) == 0 {
			continue
		}
		m.stats.StaticTests++
		m.axes = AppendAxes(m.axes[:0], start, poly)
		r, ok := Sweep(start, poly, disp, m.axes, m.cfg)
		if ok && poly.IsLine() {
			r, ok = sweepOneSided(start, poly, disp, r, m.cfg)
		}
		if !ok {
			continue
		}
		if !found || r.beats(best) {
			best, bestPoly, found = r, poly, true
		}
	}
	if !found {
		return Result{}, false
	}

	m.stats.StaticHits++
	ev := Event{Self: obj, Target: StaticTarget(bestPoly), Normal: best.HitNormal, Result: best, Frame: m.frame}
	m.deliver(EventTypeStatic, ev)
	return best, true
}

// TestEntities sweeps a against b using their relative motion and, on
// contact, queues one event for each side with opposite normals. A pair is
// tested once per frame; repeating it returns the first result oriented for a
// and queues nothing.
func (m *Manager) TestEntities(a, b Collidable, frameTime float64) (Result, bool) {
	if a.ID() == b.ID() {
		return Result{}, false
	}

	key := makePairKey(a.ID(), b.ID())
	if rec, ok := m.tested[key]; ok {
		if rec.first == a.ID() {
			return rec.result, rec.hit
		}
		return rec.result.Mirror(), rec.hit
	}

	m.stats.PairTests++
	da := a.Velocity().Mul(frameTime)
	db := b.Velocity().Mul(frameTime)
	sa := snapshot(a.BoundingPolygon(), da)
	sb := snapshot(b.BoundingPolygon(), db)
	defer snapshots.Put(sa)
	defer snapshots.Put(sb)

	m.axes = AppendAxes(m.axes[:0], sa, sb)
	r, hit := Sweep(sa, sb, da.Sub(db), m.axes, m.cfg)
	m.tested[key] = pairRecord{first: a.ID(), result: r, hit: hit}
	if !hit {
		return Result{}, false
	}

	m.stats.PairHits++
	mirrored := r.Mirror()
	m.queue = append(m.queue,
		Event{Self: a, Target: EntityTarget(b), Normal: r.HitNormal, Result: r, Frame: m.frame},
		Event{Self: b, Target: EntityTarget(a), Normal: mirrored.HitNormal, Result: mirrored, Frame: m.frame},
	)
	return r, true
}

// PerformCollisionEvents delivers the queued entity events in the order they
// were found, clears the queue and starts a new frame. It returns the number
// of events delivered.
func (m *Manager) PerformCollisionEvents() int {
	n := len(m.queue)
	for i := range m.queue {
		m.deliver(EventTypeEntity, m.queue[i])
	}
	clear(m.queue)
	m.queue = m.queue[:0]
	clear(m.tested)
	m.frame++
	m.stats.Frames++
	return n
}

func (m *Manager) deliver(eventType string, ev Event) {
	ev.Self.Collide(ev.Target, ev.Normal, ev.Result)
	m.stats.EventsDelivered++

	if m.bus == nil {
		return
	}
	if err := m.bus.Publish(bus.NewEvent(eventType, eventSource, ev, nil)); err != nil {
		m.log.Warn("collision event handler failed",
			log.String("type", eventType),
			log.Uint64("entity", uint64(ev.Self.ID())),
			log.Error(err),
		)
	}
}

// snapshots recycles the start-of-frame copies built for every test.
var snapshots = generic.NewPool(func() *physics.BoundingPolygon { return physics.NewBoundingPolygon() })

// snapshot returns a pooled copy of p moved back by disp. Release it with
// snapshots.Put once the test is done.
func snapshot(p *physics.BoundingPolygon, disp physics.Vec2) *physics.BoundingPolygon {
	s := p.CloneInto(snapshots.Get())
	s.Translate(-disp[0], -disp[1])
	return s
}
