package system

import (
	"math"

	"github.com/younwookim/engine2d/internal/domain/geom"
	"github.com/younwookim/engine2d/internal/ecs"
)

// MovementSystem integrates Velocity into Transform.Position. Each entity
// only touches its own components, so the scheduler may fan it out.
type MovementSystem struct {
	world    *ecs.World
	bounds   geom.Rect
	maxSpeed float64
}

// NewMovementSystem creates a movement system without bounds or speed cap.
func NewMovementSystem(w *ecs.World) *MovementSystem {
	return &MovementSystem{world: w}
}

// WithBounds makes root entities bounce off the edges of r.
func (s *MovementSystem) WithBounds(r geom.Rect) *MovementSystem {
	s.bounds = r
	return s
}

// WithMaxSpeed clamps velocity magnitude before integrating. Zero disables it.
func (s *MovementSystem) WithMaxSpeed(v float64) *MovementSystem {
	s.maxSpeed = v
	return s
}

func (s *MovementSystem) Name() string       { return "movement" }
func (s *MovementSystem) UpdateOrder() int   { return ecs.OrderMovement }
func (s *MovementSystem) ParallelSafe() bool { return true }

func (s *MovementSystem) Entities() []ecs.Entity {
	return ecs.Query2[ecs.Velocity, ecs.Transform](s.world)
}

func (s *MovementSystem) UpdateEntity(e ecs.Entity, dt float64) error {
	v := ecs.GetComponent[ecs.Velocity](s.world, e)
	t := ecs.GetComponent[ecs.Transform](s.world, e)
	if v == nil || t == nil {
		return nil
	}
	if s.maxSpeed > 0 && v.LenSq() > s.maxSpeed*s.maxSpeed {
		v.Vec2 = v.Normalize().Scale(s.maxSpeed)
	}
	t.Position = t.Position.Add(v.Scale(dt))

	// Child positions are parent-relative; only roots are confined.
	if s.bounds.Width > 0 && s.bounds.Height > 0 && t.Parent.IsZero() {
		t.Position.X, v.X = bounce(t.Position.X, v.X, s.bounds.X, s.bounds.MaxX())
		t.Position.Y, v.Y = bounce(t.Position.Y, v.Y, s.bounds.Y, s.bounds.MaxY())
	}
	return nil
}

func bounce(p, v, lo, hi float64) (float64, float64) {
	switch {
	case p < lo:
		return lo, math.Abs(v)
	case p > hi:
		return hi, -math.Abs(v)
	}
	return p, v
}
