package system

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/younwookim/engine2d/internal/application/input"
	"github.com/younwookim/engine2d/internal/collision"
	"github.com/younwookim/engine2d/internal/ecs"
	"github.com/younwookim/engine2d/internal/infrastructure/config"
)

// Globals are the engine-wide systems that run under every scene.
type Globals struct {
	Detection   *CollisionDetectionSystem
	Render      *RenderSystem
	Diagnostics *DiagnosticsSystem
}

// RegisterGlobals builds the engine-wide systems through the scheduler's
// factories. A system that cannot be constructed aborts registration with
// an error wrapping ecs.ErrSystemConstruction.
func RegisterGlobals(sched *ecs.Scheduler, q input.Query, cfg config.CollisionConfig, log *zap.Logger) (*Globals, error) {
	if log == nil {
		log = zap.NewNop()
	}
	w := sched.World()
	g := &Globals{}

	factories := []struct {
		name  string
		build func() (ecs.System, error)
	}{
		{"collision_detection", func() (ecs.System, error) {
			if cfg.CellSize <= 0 {
				return nil, fmt.Errorf("collision.cell_size %g: %w", cfg.CellSize, config.ErrInvalidConfig)
			}
			g.Detection = NewCollisionDetectionSystem(w, collision.NewRegistry(cfg.CellSize), log.Named("collision"))
			return g.Detection, nil
		}},
		{"player_controller", func() (ecs.System, error) {
			if q == nil {
				return nil, fmt.Errorf("player controller needs an input source: %w", config.ErrInvalidConfig)
			}
			return NewPlayerControllerSystem(w, q), nil
		}},
		{"render", func() (ecs.System, error) {
			g.Render = NewRenderSystem(w)
			return g.Render, nil
		}},
		{"collision_debug", func() (ecs.System, error) {
			return NewCollisionDebugSystem(g.Detection), nil
		}},
		{DiagnosticsName, func() (ecs.System, error) {
			g.Diagnostics = NewDiagnosticsSystem(sched, g.Detection, log.Named("diagnostics"))
			return g.Diagnostics, nil
		}},
	}
	for _, f := range factories {
		if err := sched.RegisterFactory(f.name, f.build); err != nil {
			return nil, err
		}
	}
	return g, nil
}
