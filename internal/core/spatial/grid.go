package spatial

import (
	"fmt"
	"math"
	"sync"

	"github.com/zeusync/collision/internal/core/models"
	"github.com/zeusync/collision/internal/core/observability/log"
)

// Cell addresses one grid cell.
type Cell struct {
	Col, Row int
}

type cellRange struct {
	minCol, maxCol int
	minRow, maxRow int
}

func (r cellRange) expand(radius, cols, rows int) cellRange {
	return cellRange{
		minCol: max(r.minCol-radius, 0),
		maxCol: min(r.maxCol+radius, cols-1),
		minRow: max(r.minRow-radius, 0),
		maxRow: min(r.maxRow+radius, rows-1),
	}
}

// SpatialGrid is a uniform broad-phase grid over a width × height world.
// Cells store entity handles only; the grid never owns entity lifetime.
// Every entity appears in exactly the cells its axis-aligned extent overlaps.
//
// All methods are safe for concurrent use; cell mutation is serialized by a
// single grid-wide lock.
type SpatialGrid struct {
	mu sync.RWMutex

	width, height float64
	cols, rows    int
	cellW, cellH  float64
	cells         [][]models.EntityID

	log log.Log
}

// Option configures a SpatialGrid.
type Option func(*SpatialGrid)

// WithLogger sets the logger used for consistency warnings.
func WithLogger(l log.Log) Option {
	return func(g *SpatialGrid) { g.log = l }
}

// NewSpatialGrid divides the world into ceil(size/maxCellSize) cells per axis,
// so every cell is at most maxCellSize wide and the world is covered evenly.
func NewSpatialGrid(width, height, maxCellSize float64, opts ...Option) (*SpatialGrid, error) {
	if !(width > 0) || !(height > 0) || !(maxCellSize > 0) {
		return nil, fmt.Errorf("%w: grid %vx%v with cell size %v", ErrInvalidArgument, width, height, maxCellSize)
	}

	cols := int(math.Ceil(width / maxCellSize))
	rows := int(math.Ceil(height / maxCellSize))

	g := &SpatialGrid{
		width:  width,
		height: height,
		cols:   cols,
		rows:   rows,
		cellW:  width / float64(cols),
		cellH:  height / float64(rows),
		cells:  make([][]models.EntityID, cols*rows),
		log:    log.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Dimensions returns the cell counts and cell size.
func (g *SpatialGrid) Dimensions() (cols, rows int, cellW, cellH float64) {
	return g.cols, g.rows, g.cellW, g.cellH
}

// Bounds returns the world size modeled by the grid.
func (g *SpatialGrid) Bounds() (width, height float64) {
	return g.width, g.height
}

func (g *SpatialGrid) rangeOf(x, y, w, h float64) (cellRange, error) {
	if !(w > 0) || !(h > 0) {
		return cellRange{}, fmt.Errorf("%w: extent %vx%v", ErrInvalidArgument, w, h)
	}

	left, right := x-w/2, x+w/2
	top, bottom := y-h/2, y+h/2
	if !(left >= 0) || !(right < g.width) || !(top >= 0) || !(bottom < g.height) {
		return cellRange{}, fmt.Errorf("%w: extent [%v,%v]x[%v,%v] outside [0,%v)x[0,%v)",
			ErrOutOfRange, left, right, top, bottom, g.width, g.height)
	}

	return cellRange{
		minCol: int(math.Floor(left / g.cellW)),
		maxCol: min(int(math.Floor(right/g.cellW)), g.cols-1),
		minRow: int(math.Floor(top / g.cellH)),
		maxRow: min(int(math.Floor(bottom/g.cellH)), g.rows-1),
	}, nil
}

// Add inserts id into every cell overlapped by the extent centered on (x, y).
// Nothing is mutated when the extent is invalid or out of bounds.
func (g *SpatialGrid) Add(id models.EntityID, x, y, width, height float64) error {
	r, err := g.rangeOf(x, y, width, height)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.insertLocked(id, r)
	return nil
}

// Remove deletes id from every cell overlapped by the extent. Cells that do
// not hold id are reported as a warning and skipped.
func (g *SpatialGrid) Remove(id models.EntityID, x, y, width, height float64) error {
	r, err := g.rangeOf(x, y, width, height)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.removeLocked(id, r)
	return nil
}

// Move relocates id from its old extent to its new one. When both extents map
// to the same cells the grid is left untouched. Both extents are validated
// before anything changes.
func (g *SpatialGrid) Move(id models.EntityID, oldX, oldY, newX, newY, oldW, oldH, newW, newH float64) error {
	from, err := g.rangeOf(oldX, oldY, oldW, oldH)
	if err != nil {
		return err
	}
	to, err := g.rangeOf(newX, newY, newW, newH)
	if err != nil {
		return err
	}
	if from == to {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.removeLocked(id, from)
	g.insertLocked(id, to)
	return nil
}

// GetSurroundingObjects returns every entity in the cells overlapped by the
// extent, grown by radius cells in each direction and clamped to the grid.
// The result is deduplicated and unordered.
func (g *SpatialGrid) GetSurroundingObjects(x, y, width, height float64, radius int) ([]models.EntityID, error) {
	if radius < 0 {
		return nil, fmt.Errorf("%w: negative radius %d", ErrInvalidArgument, radius)
	}
	r, err := g.rangeOf(x, y, width, height)
	if err != nil {
		return nil, err
	}
	r = r.expand(radius, g.cols, g.rows)

	g.mu.RLock()
	defer g.mu.RUnlock()

	seen := make(map[models.EntityID]struct{})
	var out []models.EntityID
	for row := r.minRow; row <= r.maxRow; row++ {
		for col := r.minCol; col <= r.maxCol; col++ {
			for _, id := range g.cells[row*g.cols+col] {
				if _, ok := seen[id]; ok {
					continue
				}
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}
	return out, nil
}

// Locate lists the cells currently holding id, in row-major order.
func (g *SpatialGrid) Locate(id models.EntityID) []Cell {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []Cell
	for i, cell := range g.cells {
		if indexOf(cell, id) >= 0 {
			out = append(out, Cell{Col: i % g.cols, Row: i / g.cols})
		}
	}
	return out
}

// Len returns the number of distinct entities stored in the grid.
func (g *SpatialGrid) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	seen := make(map[models.EntityID]struct{})
	for _, cell := range g.cells {
		for _, id := range cell {
			seen[id] = struct{}{}
		}
	}
	return len(seen)
}

// Clear empties every cell, keeping allocated capacity.
func (g *SpatialGrid) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

func (g *SpatialGrid) insertLocked(id models.EntityID, r cellRange) {
	for row := r.minRow; row <= r.maxRow; row++ {
		for col := r.minCol; col <= r.maxCol; col++ {
			idx := row*g.cols + col
			if indexOf(g.cells[idx], id) >= 0 {
				continue
			}
			g.cells[idx] = append(g.cells[idx], id)
		}
	}
}

func (g *SpatialGrid) removeLocked(id models.EntityID, r cellRange) {
	for row := r.minRow; row <= r.maxRow; row++ {
		for col := r.minCol; col <= r.maxCol; col++ {
			idx := row*g.cols + col
			cell := g.cells[idx]
			i := indexOf(cell, id)
			if i < 0 {
				g.log.Warn("entity not found in expected grid cell",
					log.Uint64("entity", uint64(id)),
					log.Int("col", col),
					log.Int("row", row),
				)
				continue
			}
			// swap-remove; cell order carries no meaning
			last := len(cell) - 1
			cell[i] = cell[last]
			g.cells[idx] = cell[:last]
		}
	}
}

func indexOf(cell []models.EntityID, id models.EntityID) int {
	for i, v := range cell {
		if v == id {
			return i
		}
	}
	return -1
}
