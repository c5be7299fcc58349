package ecs

// AnyStore is the type-erased view of a Store used by the World for bulk
// removal and counting.
type AnyStore interface {
	Remove(e Entity) bool
	Has(e Entity) bool
	Len() int
	Clear()
}

// Store is a sparse set of *T keyed by Entity. Entities and component
// pointers are kept in dense slices so iteration is ordered and cheap;
// removal swaps the last element into the hole.
type Store[T any] struct {
	index    map[Entity]int
	entities []Entity
	data     []*T
}

// NewStore creates an empty store.
func NewStore[T any]() *Store[T] {
	return &Store[T]{
		index:    make(map[Entity]int, 64),
		entities: make([]Entity, 0, 64),
		data:     make([]*T, 0, 64),
	}
}

// Set inserts or replaces the component for e.
func (s *Store[T]) Set(e Entity, c *T) {
	if i, ok := s.index[e]; ok {
		s.data[i] = c
		return
	}
	s.index[e] = len(s.entities)
	s.entities = append(s.entities, e)
	s.data = append(s.data, c)
}

// Get returns the component for e.
func (s *Store[T]) Get(e Entity) (*T, bool) {
	i, ok := s.index[e]
	if !ok {
		return nil, false
	}
	return s.data[i], true
}

// Remove deletes e's component. It reports whether anything was removed.
func (s *Store[T]) Remove(e Entity) bool {
	i, ok := s.index[e]
	if !ok {
		return false
	}
	last := len(s.entities) - 1
	if i != last {
		moved := s.entities[last]
		s.entities[i] = moved
		s.data[i] = s.data[last]
		s.index[moved] = i
	}
	s.entities[last] = NoEntity
	s.data[last] = nil
	s.entities = s.entities[:last]
	s.data = s.data[:last]
	delete(s.index, e)
	return true
}

// Has reports whether e has a component in the store.
func (s *Store[T]) Has(e Entity) bool {
	_, ok := s.index[e]
	return ok
}

// Len returns the number of stored components.
func (s *Store[T]) Len() int {
	return len(s.entities)
}

// Clear drops every component.
func (s *Store[T]) Clear() {
	clear(s.index)
	clear(s.entities)
	clear(s.data)
	s.entities = s.entities[:0]
	s.data = s.data[:0]
}

// Entities returns a copy of the dense entity slice.
func (s *Store[T]) Entities() []Entity {
	out := make([]Entity, len(s.entities))
	copy(out, s.entities)
	return out
}

// Each calls fn for every (entity, component) pair in dense order.
// fn must not add or remove components of this type.
func (s *Store[T]) Each(fn func(Entity, *T)) {
	for i, e := range s.entities {
		fn(e, s.data[i])
	}
}
