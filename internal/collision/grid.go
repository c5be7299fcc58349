package collision

import (
	"math"

	"github.com/younwookim/engine2d/internal/domain/geom"
)

// DefaultCellSize is used when the registry is built with a non-positive
// cell size.
const DefaultCellSize = 64

// maxCellsPerShape caps how many cells one shape is inserted into. Larger
// shapes go to the oversize list, which every query scans.
const maxCellsPerShape = 256

type cellKey struct {
	cx, cy int32
}

// grid is a uniform spatial hash over shape slots. Cells are keyed by
// floor(coord / size) so negative coordinates land in the right cell.
type grid struct {
	size     float64
	cells    map[cellKey][]*slot
	oversize []*slot
}

func newGrid(size float64) *grid {
	if size <= 0 {
		size = DefaultCellSize
	}
	return &grid{
		size:  size,
		cells: make(map[cellKey][]*slot, 256),
	}
}

// maxCell bounds cell coordinates. Anything further out shares the edge
// cell, which keeps the float conversion defined and the cell loops finite.
const maxCell = 1 << 30

func (g *grid) coord(v float64) int32 {
	c := math.Floor(v / g.size)
	switch {
	case math.IsNaN(c):
		return 0
	case c > maxCell:
		return maxCell
	case c < -maxCell:
		return -maxCell
	}
	return int32(c)
}

// span returns the inclusive cell range covered by b.
func (g *grid) span(b geom.Rect) (x0, y0, x1, y1 int32) {
	return g.coord(b.X), g.coord(b.Y), g.coord(b.MaxX()), g.coord(b.MaxY())
}

func (g *grid) reset() {
	for k, cell := range g.cells {
		clear(cell)
		g.cells[k] = cell[:0]
	}
	clear(g.oversize)
	g.oversize = g.oversize[:0]
}

func (g *grid) insert(s *slot) {
	x0, y0, x1, y1 := g.span(s.shape.Bounds())
	if int64(x1-x0+1)*int64(y1-y0+1) > maxCellsPerShape {
		g.oversize = append(g.oversize, s)
		return
	}
	for cx := x0; cx <= x1; cx++ {
		for cy := y0; cy <= y1; cy++ {
			k := cellKey{cx, cy}
			g.cells[k] = append(g.cells[k], s)
		}
	}
}

// visit calls fn for every slot in a cell touched by b, plus the oversize
// list. A slot may be visited more than once; callers dedupe.
func (g *grid) visit(b geom.Rect, fn func(*slot)) {
	for _, s := range g.oversize {
		fn(s)
	}
	x0, y0, x1, y1 := g.span(b)
	if int64(x1-x0+1)*int64(y1-y0+1) > maxCellsPerShape {
		// A huge query box would walk mostly empty cells; scan the
		// occupied ones instead.
		for k, cell := range g.cells {
			if k.cx < x0 || k.cx > x1 || k.cy < y0 || k.cy > y1 {
				continue
			}
			for _, s := range cell {
				fn(s)
			}
		}
		return
	}
	for cx := x0; cx <= x1; cx++ {
		for cy := y0; cy <= y1; cy++ {
			for _, s := range g.cells[cellKey{cx, cy}] {
				fn(s)
			}
		}
	}
}
