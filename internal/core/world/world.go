package world

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/collision/internal/core/models"
	"github.com/zeusync/collision/internal/core/observability/log"
	"github.com/zeusync/collision/internal/core/spatial"
	"github.com/zeusync/collision/internal/core/systems"
	"github.com/zeusync/collision/internal/core/systems/collision"
	"github.com/zeusync/collision/internal/core/systems/physics"
)

// SystemName is the name a World registers under with the system manager.
const SystemName = "collision.world"

// gridInset keeps clamped extents strictly inside the half-open world bounds.
const gridInset = 1e-9

// Stats describes the world after the last step.
type Stats struct {
	Steps     uint64
	Bodies    int
	Spawned   uint64
	Despawned uint64
	Clamped   uint64
	Pairs     uint64
	Delivered uint64
	Collision collision.Stats
}

// Option configures a World.
type Option func(*World)

func WithLogger(l log.Log) Option {
	return func(w *World) { w.log = l }
}

// WithTileMap sets the static level geometry.
func WithTileMap(m *TileMap) Option {
	return func(w *World) { w.tiles = m }
}

type spawnRequest struct {
	id  models.EntityID
	def BodyDef
}

// World owns the bodies of one simulation and runs the per-frame pipeline:
// integrate, static sweep, broad phase, entity sweep, event flush, response
// commit. Bodies live in an arena indexed by EntityID; spawns and despawns
// requested while a step runs are applied when it ends.
//
// A World is driven from one goroutine.
type World struct {
	cfg        Config
	log        log.Log
	grid       *spatial.SpatialGrid
	tiles      *TileMap
	collisions *collision.Manager

	ids    models.IDAllocator
	bodies []Body
	free   []int
	index  map[models.EntityID]int

	stepping bool
	spawns   []spawnRequest
	despawns []models.EntityID
	order    []int
	extents  []physics.Extent
	polys    []*physics.BoundingPolygon
	pairs    []pair
	sap      sweepAndPrune

	stats Stats
}

// New creates an empty world. The spatial grid covers cfg.Width × cfg.Height.
func New(cfg Config, collisions *collision.Manager, opts ...Option) (*World, error) {
	w := &World{
		cfg:        cfg,
		log:        log.NewNop(),
		collisions: collisions,
		index:      make(map[models.EntityID]int),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.collisions == nil {
		w.collisions = collision.NewManager(collision.DefaultConfig(), collision.WithLogger(w.log))
	}
	switch cfg.BroadPhase {
	case BroadPhaseGrid, BroadPhaseSweep:
	default:
		return nil, fmt.Errorf("%w: broad phase %q", spatial.ErrInvalidArgument, cfg.BroadPhase)
	}

	grid, err := spatial.NewSpatialGrid(cfg.Width, cfg.Height, cfg.CellSize, spatial.WithLogger(w.log))
	if err != nil {
		return nil, err
	}
	w.grid = grid
	return w, nil
}

func (w *World) Config() Config                 { return w.cfg }
func (w *World) Grid() *spatial.SpatialGrid     { return w.grid }
func (w *World) TileMap() *TileMap              { return w.tiles }
func (w *World) Collisions() *collision.Manager { return w.collisions }
func (w *World) Len() int                       { return len(w.index) }
func (w *World) Stepping() bool                 { return w.stepping }

func (w *World) Stats() Stats {
	s := w.stats
	s.Bodies = len(w.index)
	s.Collision = w.collisions.Stats()
	return s
}

// Spawn adds a body and returns its ID. During a step the body is created
// when the step ends; the ID is valid immediately.
func (w *World) Spawn(def BodyDef) (models.EntityID, error) {
	if _, err := def.polygon(); err != nil {
		return models.NoEntity, err
	}
	id := w.ids.Next()
	if w.stepping {
		w.spawns = append(w.spawns, spawnRequest{id: id, def: def})
		return id, nil
	}
	if err := w.insert(id, def); err != nil {
		return models.NoEntity, err
	}
	return id, nil
}

func (w *World) insert(id models.EntityID, def BodyDef) error {
	poly, err := def.polygon()
	if err != nil {
		return err
	}
	ext := poly.Bounds()
	if err = w.grid.Add(id, ext.X, ext.Y, ext.Width, ext.Height); err != nil {
		return fmt.Errorf("spawn %q: %w", def.Tag, err)
	}

	mass := def.Mass
	if mass == 0 {
		mass = 1
	}
	exit := def.Exit
	if exit == "" {
		exit = ExitClamp
	}
	b := Body{
		id:          id,
		tag:         def.Tag,
		poly:        poly,
		vel:         def.Velocity,
		mass:        mass,
		restitution: def.Restitution,
		exit:        exit,
		kinematic:   def.Kinematic,
		onCollide:   def.OnCollide,
		grid:        ext,
		alive:       true,
	}
	b.resetPending()

	slot := len(w.bodies)
	if n := len(w.free); n > 0 {
		slot = w.free[n-1]
		w.free = w.free[:n-1]
		w.bodies[slot] = b
	} else {
		w.bodies = append(w.bodies, b)
	}
	w.index[id] = slot
	w.stats.Spawned++
	return nil
}

// Despawn removes a body. During a step the body keeps colliding until the
// step ends.
func (w *World) Despawn(id models.EntityID) error {
	slot, ok := w.index[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrBodyNotFound, id)
	}
	if w.stepping {
		w.despawns = append(w.despawns, id)
		return nil
	}
	w.remove(slot)
	return nil
}

func (w *World) remove(slot int) {
	b := &w.bodies[slot]
	if !b.alive {
		return
	}
	if err := w.grid.Remove(b.id, b.grid.X, b.grid.Y, b.grid.Width, b.grid.Height); err != nil {
		w.log.Warn("failed to remove body from grid", log.Uint64("entity", uint64(b.id)), log.Error(err))
	}
	w.log.Debug("body despawned", log.Uint64("entity", uint64(b.id)), log.String("tag", b.tag))
	delete(w.index, b.id)
	*b = Body{}
	w.free = append(w.free, slot)
	w.stats.Despawned++
}

// Body returns the live body with the given ID.
func (w *World) Body(id models.EntityID) (*Body, bool) {
	slot, ok := w.index[id]
	if !ok {
		return nil, false
	}
	return &w.bodies[slot], true
}

// Each calls fn for every live body in ascending ID order until fn returns false.
func (w *World) Each(fn func(*Body) bool) {
	for _, slot := range slices.Clone(w.live()) {
		if !fn(&w.bodies[slot]) {
			return
		}
	}
}

// live returns the arena slots of live bodies in ascending ID order. The
// slice is reused by the next call.
func (w *World) live() []int {
	w.order = w.order[:0]
	for _, slot := range w.index {
		w.order = append(w.order, slot)
	}
	slices.SortFunc(w.order, func(a, b int) int { return idLess(w.bodies[a].id, w.bodies[b].id) })
	return w.order
}

var _ systems.System = (*World)(nil)

func (w *World) Name() string                   { return SystemName }
func (w *World) Priority() systems.Priority     { return systems.PriorityHigh }
func (w *World) Update(deltaTime float64) error { return w.Step(deltaTime) }

// Step advances the simulation by dt seconds.
func (w *World) Step(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: frame time %v", spatial.ErrInvalidArgument, dt)
	}
	if w.stepping {
		return ErrStepInProgress
	}
	w.stepping = true
	err := w.step(dt)
	for _, slot := range w.live() {
		w.bodies[slot].stepping = false
	}
	w.stepping = false
	w.applyDeferred()
	w.stats.Steps++
	return err
}

func (w *World) step(dt float64) error {
	order := w.live()
	gravity := w.cfg.Gravity.Mul(dt)

	for _, slot := range order {
		b := &w.bodies[slot]
		b.begin(dt)
		if !b.kinematic {
			b.vel = b.vel.Add(gravity)
		}
		b.poly.Translate(b.vel[0]*dt, b.vel[1]*dt)
	}

	if w.tiles != nil {
		for _, slot := range order {
			b := &w.bodies[slot]
			w.polys = w.tiles.PolygonsIn(sweptExtent(b.poly, b.displacement()), w.polys[:0])
			if len(w.polys) > 0 {
				w.collisions.TestStatic(b, w.polys, dt)
			}
		}
		clear(w.polys)
	}

	if err := w.syncAll(order); err != nil {
		return err
	}

	pairs, err := w.broadPhase(order)
	if err != nil {
		return err
	}
	w.stats.Pairs += uint64(len(pairs))
	for _, p := range pairs {
		w.collisions.TestEntities(&w.bodies[p.a], &w.bodies[p.b], dt)
	}
	w.stats.Delivered += uint64(w.collisions.PerformCollisionEvents())

	changed := false
	for _, slot := range order {
		if w.bodies[slot].commit() {
			changed = true
		}
	}
	if changed {
		return w.syncAll(order)
	}
	return nil
}

func (w *World) syncAll(order []int) error {
	var errs []error
	for _, slot := range order {
		if err := w.sync(&w.bodies[slot]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// sync moves the body's grid registration to its current extent, applying
// its exit policy when the extent left the world.
func (w *World) sync(b *Body) error {
	ext := b.poly.Bounds()
	if ext == b.grid {
		return nil
	}

	lo, hi := ext.Min(), ext.Max()
	inside := lo[0] >= 0 && lo[1] >= 0 && hi[0] < w.cfg.Width && hi[1] < w.cfg.Height
	if !inside {
		switch b.exit {
		case ExitDespawn:
			if !slices.Contains(w.despawns, b.id) {
				w.despawns = append(w.despawns, b.id)
			}
			return nil
		case ExitClamp:
			ext = w.clamp(b, lo, hi)
			w.stats.Clamped++
		}
	}

	old := b.grid
	if err := w.grid.Move(b.id, old.X, old.Y, ext.X, ext.Y, old.Width, old.Height, ext.Width, ext.Height); err != nil {
		return fmt.Errorf("body %d (%s): %w", b.id, b.tag, err)
	}
	b.grid = ext
	return nil
}

// clamp pushes the body back inside the world and cancels the velocity
// component that carried it out.
func (w *World) clamp(b *Body, lo, hi physics.Vec2) physics.Extent {
	maxX, maxY := w.cfg.Width*(1-gridInset), w.cfg.Height*(1-gridInset)
	var dx, dy float64
	switch {
	case lo[0] < 0:
		dx = -lo[0]
		b.vel[0] = max(b.vel[0], 0)
	case hi[0] >= maxX:
		dx = maxX - hi[0]
		b.vel[0] = min(b.vel[0], 0)
	}
	switch {
	case lo[1] < 0:
		dy = -lo[1]
		b.vel[1] = max(b.vel[1], 0)
	case hi[1] >= maxY:
		dy = maxY - hi[1]
		b.vel[1] = min(b.vel[1], 0)
	}
	b.poly.Translate(dx, dy)
	return b.poly.Bounds()
}

func (w *World) broadPhase(order []int) ([]pair, error) {
	w.pairs = w.pairs[:0]
	if cap(w.extents) < len(w.bodies) {
		w.extents = make([]physics.Extent, len(w.bodies))
	}
	w.extents = w.extents[:len(w.bodies)]
	for _, slot := range order {
		b := &w.bodies[slot]
		w.extents[slot] = sweptExtent(b.poly, b.displacement())
	}

	switch w.cfg.BroadPhase {
	case BroadPhaseSweep:
		w.pairs = append(w.pairs, w.sap.update(order, w.extents)...)
	default:
		for _, slot := range order {
			ext, ok := clampExtent(w.extents[slot], w.cfg.Width, w.cfg.Height)
			if !ok {
				continue
			}
			ids, err := w.grid.GetSurroundingObjects(ext.X, ext.Y, ext.Width, ext.Height, w.cfg.NeighborRadius)
			if err != nil {
				return nil, err
			}
			self := w.bodies[slot].id
			for _, id := range ids {
				other, ok := w.index[id]
				if !ok || id == self {
					continue
				}
				w.pairs = append(w.pairs, pair{a: slot, b: other})
			}
		}
	}

	sortPairs(w.pairs, w.bodies)
	w.pairs = dedupPairs(w.pairs)
	return w.pairs, nil
}

func (w *World) applyDeferred() {
	for _, id := range w.despawns {
		if slot, ok := w.index[id]; ok {
			w.remove(slot)
		}
	}
	clear(w.despawns)
	w.despawns = w.despawns[:0]

	for _, req := range w.spawns {
		if err := w.insert(req.id, req.def); err != nil {
			w.log.Warn("deferred spawn failed",
				log.Uint64("entity", uint64(req.id)),
				log.String("tag", req.def.Tag),
				log.Error(err),
			)
		}
	}
	clear(w.spawns)
	w.spawns = w.spawns[:0]
}

// Checksum fingerprints the position and velocity of every live body in ID
// order. Two worlds stepped through the same inputs produce equal checksums.
func (w *World) Checksum() uint64 {
	h := xxhash.New()
	var buf [8]byte
	put := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = h.Write(buf[:])
	}
	for _, slot := range w.live() {
		b := &w.bodies[slot]
		c := b.poly.Center()
		put(uint64(b.id))
		put(math.Float64bits(c[0]))
		put(math.Float64bits(c[1]))
		put(math.Float64bits(b.vel[0]))
		put(math.Float64bits(b.vel[1]))
	}
	return h.Sum64()
}
