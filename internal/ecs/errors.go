package ecs

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateComponent is returned when an entity already holds a
	// component of the same type.
	ErrDuplicateComponent = errors.New("ecs: duplicate component")

	// ErrEntityNotAlive is returned for operations on destroyed or never
	// issued entity handles.
	ErrEntityNotAlive = errors.New("ecs: entity not alive")

	// ErrSystemConstruction wraps a failing system factory. Startup aborts.
	ErrSystemConstruction = errors.New("ecs: system construction failed")

	// ErrDuplicateSystem is returned when a system name is registered twice.
	ErrDuplicateSystem = errors.New("ecs: duplicate system")

	// ErrInvalidSystem is returned for nil systems or systems implementing
	// neither UpdateSystem nor RenderSystem.
	ErrInvalidSystem = errors.New("ecs: invalid system")
)

// Phase names the scheduler pass a fault happened in.
type Phase string

const (
	PhaseUpdate Phase = "update"
	PhaseRender Phase = "render"
)

// SystemError describes a fault raised by a system during a frame.
// Entity is NoEntity unless the fault came from a per-entity call.
type SystemError struct {
	System string
	Phase  Phase
	Entity Entity
	Err    error
}

func (e *SystemError) Error() string {
	if e.Entity.IsZero() {
		return fmt.Sprintf("system %s (%s): %v", e.System, e.Phase, e.Err)
	}
	return fmt.Sprintf("system %s (%s) entity %s: %v", e.System, e.Phase, e.Entity, e.Err)
}

func (e *SystemError) Unwrap() error { return e.Err }

// PanicError carries a recovered panic value.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
