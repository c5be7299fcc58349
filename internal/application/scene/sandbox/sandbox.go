// Package sandbox provides the data-driven demo scene: a stage of tile
// colliders plus entity prefabs read from scenes/<name>.yaml.
package sandbox

import (
	"context"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"go.uber.org/zap"

	"github.com/younwookim/engine2d/internal/application/input"
	"github.com/younwookim/engine2d/internal/application/scene"
	"github.com/younwookim/engine2d/internal/application/system"
	"github.com/younwookim/engine2d/internal/domain/geom"
	"github.com/younwookim/engine2d/internal/domain/tilemap"
	"github.com/younwookim/engine2d/internal/ecs"
	"github.com/younwookim/engine2d/internal/infrastructure/config"
)

// debugSystems are revealed and hidden together by the debug key.
var debugSystems = []string{system.DiagnosticsName, "collision_debug"}

// Deps are the engine services the scene works against. Global systems
// are registered by the caller; the scene adds its own on enter.
type Deps struct {
	Scheduler *ecs.Scheduler
	Configs   *config.Loader
	Textures  Textures
	Input     input.Query
	Render    *system.RenderSystem // optional, receives the background color
	DebugDraw bool                 // start with collision outlines visible
	Seed      int64                // seeds prefab jitter
	Logger    *zap.Logger
}

// Sandbox is a scene built from a SceneConfig.
type Sandbox struct {
	deps Deps
	name string
	log  *zap.Logger

	cfg     *config.SceneConfig
	stage   *tilemap.Stage
	loaded  []string // textures this scene holds a reference on
	systems []string // scene-scoped systems, unregistered on exit
	spawner *Spawner
	sup     *ecs.Suppressions
	subs    []ecs.Subscription

	player ecs.Entity
	hits   int
}

var (
	_ scene.Scene  = (*Sandbox)(nil)
	_ scene.Loader = (*Sandbox)(nil)
)

// New creates the scene; nothing is read until Load.
func New(deps Deps, name string) *Sandbox {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Sandbox{deps: deps, name: name, log: deps.Logger.With(zap.String("scene", name))}
}

// Name returns the scene name.
func (s *Sandbox) Name() string { return s.name }

// Player returns the player entity, NoEntity if the scene has none.
func (s *Sandbox) Player() ecs.Entity { return s.player }

// Hits returns how many collisions the player entered since OnEnter.
func (s *Sandbox) Hits() int { return s.hits }

// Load reads the scene and stage files and preloads textures. It runs off
// the frame goroutine and touches neither the world nor the scheduler.
func (s *Sandbox) Load(ctx context.Context) error {
	cfg, err := s.deps.Configs.LoadScene(s.name)
	if err != nil {
		return err
	}
	if cfg.Stage != "" {
		stageCfg, err := s.deps.Configs.LoadStage(cfg.Stage)
		if err != nil {
			return err
		}
		if s.stage, err = system.LoadStage(stageCfg); err != nil {
			return err
		}
		if cfg.Background == "" {
			cfg.Background = stageCfg.Background.Color
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(cfg.Textures) > 0 {
		if err := s.deps.Textures.LoadAll(ctx, cfg.Textures); err != nil {
			return fmt.Errorf("scene %s textures: %w", s.name, err)
		}
		s.loaded = cfg.Textures
	}
	if err := ctx.Err(); err != nil {
		s.Unload()
		return err
	}

	s.cfg = cfg
	s.log.Info("scene loaded",
		zap.Int("prefabs", len(cfg.Entities)),
		zap.Strings("textures", cfg.Textures),
	)
	return nil
}

// Unload releases the textures Load acquired.
func (s *Sandbox) Unload() {
	if len(s.loaded) > 0 {
		s.deps.Textures.Unload(s.loaded...)
		s.loaded = nil
	}
}

// OnEnter spawns the stage and prefabs and installs the scene's systems
// and suppressions.
func (s *Sandbox) OnEnter() error {
	if s.cfg == nil {
		return fmt.Errorf("scene %s entered before it was loaded", s.name)
	}
	sched := s.deps.Scheduler
	w := sched.World()

	movement := system.NewMovementSystem(w)
	if s.stage != nil {
		movement.WithBounds(geom.Rect{
			Width:  float64(s.stage.Width * s.stage.TileSize),
			Height: float64(s.stage.Height * s.stage.TileSize),
		})
	}
	for _, sys := range []ecs.System{movement, system.NewTweenSystem(w)} {
		if err := sched.Register(sys); err != nil {
			s.OnExit()
			return err
		}
		s.systems = append(s.systems, sys.Name())
	}

	if s.stage != nil {
		if _, err := system.SpawnStage(w, s.stage); err != nil {
			s.OnExit()
			return err
		}
	}
	s.spawner = NewSpawner(w, s.deps.Textures, s.log).WithSeed(s.deps.Seed)
	if _, err := s.spawner.SpawnAll(s.cfg.Entities); err != nil {
		s.OnExit()
		return fmt.Errorf("scene %s: %w", s.name, err)
	}
	s.player = ecs.NoEntity
	if players := ecs.GetEntitiesWithComponent[ecs.PlayerControlled](w); len(players) > 0 {
		s.player = players[0]
	}

	s.sup = ecs.NewSuppressions()
	for _, name := range s.cfg.Suppress {
		s.sup.DisableName(name)
	}
	if !s.deps.DebugDraw {
		s.sup.DisableName("collision_debug")
	}
	sched.SetSuppressions(s.sup)

	if s.deps.Render != nil && s.cfg.Background != "" {
		bg, err := config.ParseColor(s.cfg.Background)
		if err != nil {
			s.OnExit()
			return fmt.Errorf("scene %s background: %w", s.name, err)
		}
		s.deps.Render.SetBackground(bg)
	}

	s.hits = 0
	s.subs = append(s.subs, ecs.Subscribe(w.Events(), func(ev system.CollisionEnter) {
		if ev.Self == s.player {
			s.hits++
		}
	}))

	s.log.Info("scene entered",
		zap.Int("entities", w.Len()),
		zap.Strings("systems", s.systems),
	)
	return nil
}

// OnExit removes everything OnEnter installed.
func (s *Sandbox) OnExit() {
	sched := s.deps.Scheduler
	w := sched.World()
	for _, sub := range s.subs {
		w.Events().Unsubscribe(sub)
	}
	s.subs = nil
	for _, name := range s.systems {
		if d, ok := sched.Unregister(name).(ecs.Disposer); ok {
			d.Dispose()
		}
	}
	s.systems = nil
	sched.SetSuppressions(nil)
	if s.deps.Render != nil {
		s.deps.Render.SetBackground(color.RGBA{})
	}
	w.Clear()
	s.player = ecs.NoEntity
}

// Update toggles the debug overlays. The simulation itself runs in the
// scheduler before this is called.
func (s *Sandbox) Update(dt float64) (scene.Scene, error) {
	if s.deps.Input != nil && s.deps.Input.State().DebugPressed {
		s.toggleDebug()
	}
	return nil, nil
}

func (s *Sandbox) toggleDebug() {
	show := s.sup.NameDisabled(debugSystems[0])
	for _, name := range debugSystems {
		if show {
			s.sup.EnableName(name)
		} else {
			s.sup.DisableName(name)
		}
	}
	s.log.Debug("debug overlay toggled", zap.Bool("visible", show))
}

// Draw prints the status line along the bottom edge.
func (s *Sandbox) Draw(screen *ebiten.Image) {
	h := screen.Bounds().Dy()
	msg := fmt.Sprintf("%s  hits %d  [F3] debug", s.name, s.hits)
	ebitenutil.DebugPrintAt(screen, msg, 4, h-16)
}
