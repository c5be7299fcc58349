package ecs

import (
	"fmt"
	"reflect"
)

// World owns every entity and component. Component stores are created on
// first use and keyed by the component's concrete type. A World is not safe
// for concurrent mutation: structural changes (create, destroy, add, remove)
// belong to the frame goroutine. Parallel systems may only touch the
// component data of the entity they were handed.
type World struct {
	pool         *entityPool
	stores       map[reflect.Type]AnyStore
	order        []AnyStore // registration order, for deterministic bulk removal
	destroyQueue []Entity
	events       *EventBus
}

// NewWorld creates an empty world with its own event bus.
func NewWorld() *World {
	return &World{
		pool:         newEntityPool(),
		stores:       make(map[reflect.Type]AnyStore, 16),
		order:        make([]AnyStore, 0, 16),
		destroyQueue: make([]Entity, 0, 64),
		events:       NewEventBus(),
	}
}

// Events returns the world's event bus.
func (w *World) Events() *EventBus { return w.events }

// CreateEntity allocates a new active entity.
func (w *World) CreateEntity(name string) Entity {
	return w.pool.create(name)
}

// Alive reports whether e refers to an entity that has not been destroyed.
func (w *World) Alive(e Entity) bool {
	return w.pool.get(e) != nil
}

// IsActive reports whether e is alive and active.
func (w *World) IsActive(e Entity) bool {
	r := w.pool.get(e)
	return r != nil && r.active
}

// SetActive toggles the active flag. Inactive entities keep their
// components but are skipped by queries.
func (w *World) SetActive(e Entity, active bool) {
	if r := w.pool.get(e); r != nil {
		r.active = active
	}
}

// Name returns the entity's name, or "" for stale handles.
func (w *World) Name(e Entity) string {
	if r := w.pool.get(e); r != nil {
		return r.name
	}
	return ""
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return len(w.pool.records) - len(w.pool.freeList)
}

// DestroyEntity marks e inactive, removes all of its components and frees
// its slot. Destroying a stale handle is a no-op.
func (w *World) DestroyEntity(e Entity) {
	r := w.pool.get(e)
	if r == nil {
		return
	}
	r.active = false
	for _, s := range w.order {
		s.Remove(e)
	}
	w.pool.destroy(e)
}

// QueueDestroy defers destruction until FlushDestroyQueue, which the
// scheduler calls after the update phase.
func (w *World) QueueDestroy(e Entity) {
	w.destroyQueue = append(w.destroyQueue, e)
}

// FlushDestroyQueue destroys every queued entity.
func (w *World) FlushDestroyQueue() {
	for _, e := range w.destroyQueue {
		w.DestroyEntity(e)
	}
	w.destroyQueue = w.destroyQueue[:0]
}

// Clear destroys every entity and empties all stores.
func (w *World) Clear() {
	for _, s := range w.order {
		s.Clear()
	}
	for i := range w.pool.records {
		r := &w.pool.records[i]
		if r.alive {
			w.pool.destroy(newEntity(uint32(i), r.generation))
		}
	}
	w.destroyQueue = w.destroyQueue[:0]
}

func storeOf[T any](w *World, create bool) *Store[T] {
	t := reflect.TypeFor[T]()
	if s, ok := w.stores[t]; ok {
		return s.(*Store[T])
	}
	if !create {
		return nil
	}
	s := NewStore[T]()
	w.stores[t] = s
	w.order = append(w.order, s)
	return s
}

// StoreOf returns the store for T, creating it if needed. Systems that
// iterate the same component every frame can hold on to it.
func StoreOf[T any](w *World) *Store[T] {
	return storeOf[T](w, true)
}

// AddComponent attaches c to e. A second component of the same type is a
// configuration error and returns ErrDuplicateComponent.
func AddComponent[T any](w *World, e Entity, c *T) error {
	if !w.Alive(e) {
		return fmt.Errorf("add %s to %s: %w", reflect.TypeFor[T](), e, ErrEntityNotAlive)
	}
	if c == nil {
		c = new(T)
	}
	s := storeOf[T](w, true)
	if s.Has(e) {
		return fmt.Errorf("add %s to %s (%q): %w", reflect.TypeFor[T](), e, w.Name(e), ErrDuplicateComponent)
	}
	s.Set(e, c)
	return nil
}

// GetComponent returns e's T, or nil when absent or e is destroyed.
func GetComponent[T any](w *World, e Entity) *T {
	if !w.Alive(e) {
		return nil
	}
	s := storeOf[T](w, false)
	if s == nil {
		return nil
	}
	c, _ := s.Get(e)
	return c
}

// HasComponent reports whether e currently holds a T.
func HasComponent[T any](w *World, e Entity) bool {
	return GetComponent[T](w, e) != nil
}

// RemoveComponent detaches e's T and reports whether one was present.
func RemoveComponent[T any](w *World, e Entity) bool {
	s := storeOf[T](w, false)
	if s == nil {
		return false
	}
	return s.Remove(e)
}

// GetEntitiesWithComponent returns a point-in-time snapshot of the active
// entities holding a T, in store order. Re-query after mutating the world.
func GetEntitiesWithComponent[T any](w *World) []Entity {
	s := storeOf[T](w, false)
	if s == nil {
		return nil
	}
	out := make([]Entity, 0, s.Len())
	for _, e := range s.entities {
		if w.IsActive(e) {
			out = append(out, e)
		}
	}
	return out
}

// Each calls fn for every active entity holding a T.
func Each[T any](w *World, fn func(Entity, *T)) {
	s := storeOf[T](w, false)
	if s == nil {
		return
	}
	for i, e := range s.entities {
		if w.IsActive(e) {
			fn(e, s.data[i])
		}
	}
}

// Each2 iterates active entities holding both A and B, walking the smaller
// store and probing the larger one.
func Each2[A, B any](w *World, fn func(Entity, *A, *B)) {
	sa := storeOf[A](w, false)
	sb := storeOf[B](w, false)
	if sa == nil || sb == nil {
		return
	}
	if sa.Len() <= sb.Len() {
		for i, e := range sa.entities {
			if b, ok := sb.Get(e); ok && w.IsActive(e) {
				fn(e, sa.data[i], b)
			}
		}
		return
	}
	for i, e := range sb.entities {
		if a, ok := sa.Get(e); ok && w.IsActive(e) {
			fn(e, a, sb.data[i])
		}
	}
}

// Query2 returns the active entities holding both A and B, in the order of
// the smaller store.
func Query2[A, B any](w *World) []Entity {
	var out []Entity
	Each2(w, func(e Entity, _ *A, _ *B) {
		out = append(out, e)
	})
	return out
}
