package collision

import (
	"fmt"
	"sort"

	"github.com/younwookim/engine2d/internal/domain/geom"
)

// slot is a registered shape plus the bookkeeping the broad phase needs.
type slot struct {
	shape Shape
	seq   uint64 // registration sequence, orders query results
	idx   int    // position in Registry.slots
	stamp uint32 // last query that visited this slot
}

// Registry is the collision world: the set of live shapes and the overlap
// queries over them. The spatial hash is rebuilt lazily on the first query
// after a shape was added, removed or moved. Accessed only from the frame
// goroutine, no locks.
type Registry struct {
	slots   []*slot
	byShape map[Shape]*slot
	grid    *grid
	dirty   bool
	seq     uint64
	stamp   uint32
}

// NewRegistry creates an empty registry whose broad phase uses cells of
// cellSize world units (DefaultCellSize when <= 0).
func NewRegistry(cellSize float64) *Registry {
	return &Registry{
		slots:   make([]*slot, 0, 64),
		byShape: make(map[Shape]*slot, 64),
		grid:    newGrid(cellSize),
	}
}

// AddShape registers s. Adding a shape that is already registered here is a
// no-op; a shape can belong to only one registry.
func (r *Registry) AddShape(s Shape) error {
	if s == nil {
		return fmt.Errorf("add shape: %w", ErrNilShape)
	}
	if owner := s.registry(); owner != nil {
		if owner == r {
			return nil
		}
		return fmt.Errorf("add %v: %w", s, ErrForeignShape)
	}
	sl := &slot{shape: s, seq: r.seq, idx: len(r.slots)}
	r.seq++
	r.slots = append(r.slots, sl)
	r.byShape[s] = sl
	s.setRegistry(r)
	r.dirty = true
	return nil
}

// RemoveShape unregisters s and reports whether it was registered. Removing
// an unknown or already removed shape is safe.
func (r *Registry) RemoveShape(s Shape) bool {
	if s == nil {
		return false
	}
	sl, ok := r.byShape[s]
	if !ok {
		return false
	}
	last := len(r.slots) - 1
	if sl.idx != last {
		moved := r.slots[last]
		r.slots[sl.idx] = moved
		moved.idx = sl.idx
	}
	r.slots[last] = nil
	r.slots = r.slots[:last]
	delete(r.byShape, s)
	s.setRegistry(nil)
	r.dirty = true
	return true
}

// Contains reports whether s is registered.
func (r *Registry) Contains(s Shape) bool {
	_, ok := r.byShape[s]
	return ok
}

// Len returns the number of registered shapes.
func (r *Registry) Len() int { return len(r.slots) }

// Shapes returns the registered shapes in registration order.
func (r *Registry) Shapes() []Shape {
	sorted := make([]*slot, len(r.slots))
	copy(sorted, r.slots)
	sortSlots(sorted)
	out := make([]Shape, len(sorted))
	for i, sl := range sorted {
		out[i] = sl.shape
	}
	return out
}

// Clear unregisters every shape.
func (r *Registry) Clear() {
	for _, sl := range r.slots {
		sl.shape.setRegistry(nil)
	}
	clear(r.slots)
	r.slots = r.slots[:0]
	clear(r.byShape)
	r.grid.reset()
	r.dirty = false
}

// GetCollisions returns every registered shape overlapping s, excluding s
// itself, in registration order. s need not be registered.
func (r *Registry) GetCollisions(s Shape) []Shape {
	if s == nil {
		return nil
	}
	var hits []*slot
	r.candidates(s.Bounds(), func(sl *slot) {
		if sl.shape != s && Overlaps(s, sl.shape) {
			hits = append(hits, sl)
		}
	})
	return shapesOf(hits)
}

// QueryRect returns every registered shape whose bounds touch rect, in
// registration order.
func (r *Registry) QueryRect(rect geom.Rect) []Shape {
	var hits []*slot
	r.candidates(rect, func(sl *slot) {
		if boundsOverlap(rect, sl.shape.Bounds()) {
			hits = append(hits, sl)
		}
	})
	return shapesOf(hits)
}

// candidates visits each slot near b exactly once.
func (r *Registry) candidates(b geom.Rect, fn func(*slot)) {
	r.rebuild()
	r.stamp++
	if r.stamp == 0 {
		for _, sl := range r.slots {
			sl.stamp = 0
		}
		r.stamp = 1
	}
	stamp := r.stamp
	r.grid.visit(b, func(sl *slot) {
		if sl.stamp == stamp {
			return
		}
		sl.stamp = stamp
		if boundsOverlap(b, sl.shape.Bounds()) {
			fn(sl)
		}
	})
}

func (r *Registry) rebuild() {
	if !r.dirty {
		return
	}
	r.grid.reset()
	for _, sl := range r.slots {
		r.grid.insert(sl)
	}
	r.dirty = false
}

func shapesOf(slots []*slot) []Shape {
	if len(slots) == 0 {
		return nil
	}
	sortSlots(slots)
	out := make([]Shape, len(slots))
	for i, sl := range slots {
		out[i] = sl.shape
	}
	return out
}

func sortSlots(slots []*slot) {
	sort.Slice(slots, func(i, j int) bool { return slots[i].seq < slots[j].seq })
}
