package ecs

import "fmt"

// Entity is a generational handle: the low 32 bits index the World's entity
// table, the high 32 bits hold the slot generation. Destroying an entity bumps
// the generation so stale handles stop resolving. The zero Entity is never
// issued.
type Entity uint64

// NoEntity is the zero handle.
const NoEntity Entity = 0

func newEntity(index, generation uint32) Entity {
	return Entity(uint64(generation)<<32 | uint64(index))
}

// Index returns the entity's slot in the World's table.
func (e Entity) Index() uint32 { return uint32(e) }

// Generation returns the slot generation the handle was issued for.
func (e Entity) Generation() uint32 { return uint32(e >> 32) }

// IsZero reports whether e is NoEntity.
func (e Entity) IsZero() bool { return e == NoEntity }

// String formats e as index.generation.
func (e Entity) String() string {
	return fmt.Sprintf("%d.%d", e.Index(), e.Generation())
}

// entityRecord is the World-side state for one slot.
type entityRecord struct {
	generation uint32
	alive      bool
	active     bool
	name       string
}

// entityPool allocates slots with generational indices and a free list.
// Generations start at 1 so that no live handle equals NoEntity.
type entityPool struct {
	records  []entityRecord
	freeList []uint32
}

func newEntityPool() *entityPool {
	return &entityPool{
		records:  make([]entityRecord, 0, 1024),
		freeList: make([]uint32, 0, 256),
	}
}

func (p *entityPool) create(name string) Entity {
	if n := len(p.freeList); n > 0 {
		idx := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		r := &p.records[idx]
		r.alive = true
		r.active = true
		r.name = name
		return newEntity(idx, r.generation)
	}
	idx := uint32(len(p.records))
	p.records = append(p.records, entityRecord{generation: 1, alive: true, active: true, name: name})
	return newEntity(idx, 1)
}

func (p *entityPool) get(e Entity) *entityRecord {
	idx := e.Index()
	if int(idx) >= len(p.records) {
		return nil
	}
	r := &p.records[idx]
	if !r.alive || r.generation != e.Generation() {
		return nil
	}
	return r
}

func (p *entityPool) destroy(e Entity) bool {
	r := p.get(e)
	if r == nil {
		return false
	}
	r.alive = false
	r.active = false
	r.name = ""
	r.generation++
	if r.generation == 0 {
		r.generation = 1
	}
	p.freeList = append(p.freeList, e.Index())
	return true
}
