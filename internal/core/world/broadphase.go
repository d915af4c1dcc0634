package world

import (
	"cmp"
	"slices"

	"github.com/zeusync/collision/internal/core/models"
	"github.com/zeusync/collision/internal/core/systems/physics"
)

// pair holds arena indices of two bodies that may touch this frame.
type pair struct {
	a, b int
}

type endpoint struct {
	value float64
	slot  int
	min   bool
}

// sweepAndPrune finds overlapping swept extents by sorting interval
// endpoints along X and keeping the set of open intervals. Pairs that are
// also separated on Y are pruned. Buffers are reused between frames.
type sweepAndPrune struct {
	endpoints []endpoint
	extents   []physics.Extent
	active    []int
	pairs     []pair
}

// update computes candidate pairs for the given slots; extents is indexed by
// arena slot.
func (s *sweepAndPrune) update(slots []int, extents []physics.Extent) []pair {
	s.pairs = s.pairs[:0]
	s.endpoints = s.endpoints[:0]
	for _, slot := range slots {
		e := extents[slot]
		s.endpoints = append(s.endpoints,
			endpoint{value: e.X - e.Width/2, slot: slot, min: true},
			endpoint{value: e.X + e.Width/2, slot: slot},
		)
	}

	// Starts sort before ends at equal coordinates so touching extents pair up.
	slices.SortStableFunc(s.endpoints, func(a, b endpoint) int {
		if c := cmp.Compare(a.value, b.value); c != 0 {
			return c
		}
		switch {
		case a.min && !b.min:
			return -1
		case !a.min && b.min:
			return 1
		}
		return 0
	})

	s.active = s.active[:0]
	for _, ep := range s.endpoints {
		if !ep.min {
			for i, slot := range s.active {
				if slot == ep.slot {
					s.active[i] = s.active[len(s.active)-1]
					s.active = s.active[:len(s.active)-1]
					break
				}
			}
			continue
		}
		for _, other := range s.active {
			if overlapY(extents[ep.slot], extents[other]) {
				s.pairs = append(s.pairs, pair{a: other, b: ep.slot})
			}
		}
		s.active = append(s.active, ep.slot)
	}
	return s.pairs
}

func overlapY(a, b physics.Extent) bool {
	return a.Y-a.Height/2 <= b.Y+b.Height/2 && b.Y-b.Height/2 <= a.Y+a.Height/2
}

// sweptExtent covers a polygon over the whole frame: from its start
// position, displacement behind the current one, to where it is now.
func sweptExtent(p *physics.BoundingPolygon, displacement physics.Vec2) physics.Extent {
	now := p.Bounds()
	start := now
	start.X -= displacement[0]
	start.Y -= displacement[1]
	return now.Union(start)
}

// clampExtent trims e to the [0,width)x[0,height) area the grid accepts.
func clampExtent(e physics.Extent, width, height float64) (physics.Extent, bool) {
	lo, hi := e.Min(), e.Max()
	lo[0], lo[1] = max(lo[0], 0), max(lo[1], 0)
	hi[0], hi[1] = min(hi[0], width*(1-gridInset)), min(hi[1], height*(1-gridInset))
	if !(hi[0] > lo[0]) || !(hi[1] > lo[1]) {
		return physics.Extent{}, false
	}
	return physics.Extent{
		X:      (lo[0] + hi[0]) / 2,
		Y:      (lo[1] + hi[1]) / 2,
		Width:  hi[0] - lo[0],
		Height: hi[1] - lo[1],
	}, true
}

// sortPairs orders pairs by the IDs of the bodies involved, lowest first, so
// the narrow phase runs in the same order whatever the arena layout.
func sortPairs(pairs []pair, bodies []Body) {
	for i, p := range pairs {
		if bodies[p.a].id > bodies[p.b].id {
			pairs[i] = pair{a: p.b, b: p.a}
		}
	}
	slices.SortFunc(pairs, func(x, y pair) int {
		if c := cmp.Compare(bodies[x.a].id, bodies[y.a].id); c != 0 {
			return c
		}
		return cmp.Compare(bodies[x.b].id, bodies[y.b].id)
	})
}

// dedupPairs drops repeated pairs from a sorted slice.
func dedupPairs(pairs []pair) []pair {
	return slices.Compact(pairs)
}

func idLess(a, b models.EntityID) int { return cmp.Compare(a, b) }
