package world

import (
	"fmt"
	"math"
	"strings"

	"github.com/zeusync/collision/internal/core/systems/physics"
)

// Tile faces in the order their edges are generated.
const (
	faceTop = iota
	faceRight
	faceBottom
	faceLeft
	faceCount
)

// unitFaces are clockwise one-sided edges of a unit tile centered on the
// origin; each normal points out of the tile.
var unitFaces = [faceCount][2]physics.Vec2{
	faceTop:    {{-0.5, -0.5}, {0.5, -0.5}},
	faceRight:  {{0.5, -0.5}, {0.5, 0.5}},
	faceBottom: {{0.5, 0.5}, {-0.5, 0.5}},
	faceLeft:   {{-0.5, 0.5}, {-0.5, -0.5}},
}

var faceOffsets = [faceCount][2]int{
	faceTop:    {0, -1},
	faceRight:  {1, 0},
	faceBottom: {0, 1},
	faceLeft:   {-1, 0},
}

// TileMap is the static level geometry: a grid of solid and open tiles.
// Only faces of solid tiles that border an open tile produce collision
// edges, so bodies slide across flat runs of tiles without catching on the
// seams. Cells outside the map count as solid.
type TileMap struct {
	cols, rows int
	size       float64
	solid      []bool
	edges      [][]*physics.BoundingPolygon
}

// NewTileMap creates an empty map of cols × rows tiles of the given size.
func NewTileMap(cols, rows int, tileSize float64) (*TileMap, error) {
	if cols <= 0 || rows <= 0 || !(tileSize > 0) {
		return nil, fmt.Errorf("%w: %dx%d tiles of %v", ErrInvalidTile, cols, rows, tileSize)
	}
	return &TileMap{
		cols:  cols,
		rows:  rows,
		size:  tileSize,
		solid: make([]bool, cols*rows),
		edges: make([][]*physics.BoundingPolygon, cols*rows),
	}, nil
}

// ParseTileMap builds a map from text rows where '#' marks a solid tile and
// any other rune an open one. Short rows are padded with open tiles.
func ParseTileMap(rows []string, tileSize float64) (*TileMap, error) {
	cols := 0
	for _, r := range rows {
		cols = max(cols, len(r))
	}
	m, err := NewTileMap(cols, len(rows), tileSize)
	if err != nil {
		return nil, err
	}
	for y, r := range rows {
		for x := range len(r) {
			m.solid[y*cols+x] = r[x] == '#'
		}
	}
	for i := range m.solid {
		m.rebuild(i%cols, i/cols)
	}
	return m, nil
}

func (m *TileMap) Size() (cols, rows int) { return m.cols, m.rows }
func (m *TileMap) TileSize() float64      { return m.size }

// Solid reports whether the tile at (col, row) blocks; outside the map it does.
func (m *TileMap) Solid(col, row int) bool {
	if col < 0 || row < 0 || col >= m.cols || row >= m.rows {
		return true
	}
	return m.solid[row*m.cols+col]
}

// Set changes a tile and refreshes the edges around it.
func (m *TileMap) Set(col, row int, solid bool) error {
	if col < 0 || row < 0 || col >= m.cols || row >= m.rows {
		return fmt.Errorf("%w: (%d,%d) in %dx%d", ErrInvalidTile, col, row, m.cols, m.rows)
	}
	m.solid[row*m.cols+col] = solid
	m.rebuild(col, row)
	for _, off := range faceOffsets {
		m.rebuild(col+off[0], row+off[1])
	}
	return nil
}

func (m *TileMap) rebuild(col, row int) {
	if col < 0 || row < 0 || col >= m.cols || row >= m.rows {
		return
	}
	i := row*m.cols + col
	m.edges[i] = m.edges[i][:0]
	if !m.solid[i] {
		return
	}

	cx := (float64(col) + 0.5) * m.size
	cy := (float64(row) + 0.5) * m.size
	for f, off := range faceOffsets {
		if m.Solid(col+off[0], row+off[1]) {
			continue
		}
		edge := physics.NewBoundingPolygon(unitFaces[f][0], unitFaces[f][1])
		edge.Scale(m.size, m.size)
		edge.MoveTo(cx, cy)
		m.edges[i] = append(m.edges[i], edge)
	}
}

// Edges returns the exposed edges of one tile. The slice is owned by the map.
func (m *TileMap) Edges(col, row int) []*physics.BoundingPolygon {
	if col < 0 || row < 0 || col >= m.cols || row >= m.rows {
		return nil
	}
	return m.edges[row*m.cols+col]
}

// PolygonsIn appends to buf the edges of every tile overlapping ext grown by
// one tile on each side.
func (m *TileMap) PolygonsIn(ext physics.Extent, buf []*physics.BoundingPolygon) []*physics.BoundingPolygon {
	lo, hi := ext.Min(), ext.Max()
	minCol := max(int(math.Floor(lo[0]/m.size))-1, 0)
	maxCol := min(int(math.Floor(hi[0]/m.size))+1, m.cols-1)
	minRow := max(int(math.Floor(lo[1]/m.size))-1, 0)
	maxRow := min(int(math.Floor(hi[1]/m.size))+1, m.rows-1)

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			buf = append(buf, m.edges[row*m.cols+col]...)
		}
	}
	return buf
}

// EdgeCount returns the number of exposed edges in the map.
func (m *TileMap) EdgeCount() int {
	n := 0
	for _, e := range m.edges {
		n += len(e)
	}
	return n
}

// String renders the map in the format ParseTileMap reads.
func (m *TileMap) String() string {
	var sb strings.Builder
	for row := range m.rows {
		for col := range m.cols {
			if m.solid[row*m.cols+col] {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
