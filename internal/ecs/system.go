package ecs

import "github.com/hajimehoshi/ebiten/v2"

// Update orders (lower runs first). Systems may use any int; these are the
// slots the built-in systems occupy.
const (
	OrderInput     = 0
	OrderTween     = 50
	OrderMovement  = 100
	OrderCollision = 200 // after movement, before anything that reads contacts
	OrderGameplay  = 300
	OrderLate      = 900
)

// Render orders.
const (
	RenderOrderWorld   = 0
	RenderOrderDebug   = 800
	RenderOrderOverlay = 900
)

// System is anything the Scheduler can hold. Names must be unique within a
// scheduler; scenes suppress systems by name or by type.
type System interface {
	Name() string
}

// UpdateSystem runs once per frame in the update phase.
type UpdateSystem interface {
	System
	UpdateOrder() int
	Update(dt float64) error
}

// EntitySystem runs once per matched entity in the update phase. The
// scheduler may split Entities() across workers when ParallelSafe reports
// true; UpdateEntity must then only touch that entity's component data and
// must not depend on the processing order of other entities.
type EntitySystem interface {
	System
	UpdateOrder() int
	Entities() []Entity
	UpdateEntity(e Entity, dt float64) error
	ParallelSafe() bool
}

// UpdateHooks is optionally implemented by EntitySystems that need a
// sequential step before or after the per-entity pass.
type UpdateHooks interface {
	BeginUpdate(dt float64) error
	EndUpdate(dt float64) error
}

// RenderSystem runs once per frame in the render phase.
type RenderSystem interface {
	System
	Order() int
	Render(screen *ebiten.Image, dt float64) error
}

// Disposer is implemented by systems holding resources outside the World.
type Disposer interface {
	Dispose()
}
