package system

import (
	"github.com/younwookim/engine2d/internal/application/input"
	"github.com/younwookim/engine2d/internal/ecs"
)

// PlayerControllerSystem steers PlayerControlled entities from the input
// captured for this frame. Diagonals are normalized so they are not faster.
type PlayerControllerSystem struct {
	world *ecs.World
	input input.Query
}

// NewPlayerControllerSystem creates a controller reading q.
func NewPlayerControllerSystem(w *ecs.World, q input.Query) *PlayerControllerSystem {
	return &PlayerControllerSystem{world: w, input: q}
}

func (s *PlayerControllerSystem) Name() string     { return "player_controller" }
func (s *PlayerControllerSystem) UpdateOrder() int { return ecs.OrderInput }

func (s *PlayerControllerSystem) Update(dt float64) error {
	st := s.input.State()
	dir := st.Direction()
	heading := dir.Normalize()

	ecs.Each2(s.world, func(e ecs.Entity, pc *ecs.PlayerControlled, v *ecs.Velocity) {
		v.Vec2 = heading.Scale(pc.Speed)
		if in := ecs.GetComponent[ecs.InputDirection](s.world, e); in != nil {
			in.Vec2 = dir
			in.Action = st.Action
		}
	})
	return nil
}
