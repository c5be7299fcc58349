// Package game provides the main game loop manager that runs the scheduler
// and handles Scene transitions.
package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"go.uber.org/zap"

	"github.com/younwookim/engine2d/internal/application/input"
	"github.com/younwookim/engine2d/internal/application/scene"
	"github.com/younwookim/engine2d/internal/application/state"
	"github.com/younwookim/engine2d/internal/ecs"
)

// Config wires a Game to the engine core.
type Config struct {
	Scheduler *ecs.Scheduler
	// Input is polled once per tick into Latch. Either may be nil.
	Input  input.Query
	Latch  *input.Latch
	Width  int
	Height int
	DT     float64 // defaults to 1/60
	Logger *zap.Logger
}

type pendingLoad struct {
	scene  scene.Scene
	cancel context.CancelFunc
	done   chan error
}

// Game implements ebiten.Game. Each tick captures input, runs the
// scheduler's update phase and then the current scene.
type Game struct {
	sched   *ecs.Scheduler
	input   input.Query
	latch   *input.Latch
	log     *zap.Logger
	current scene.Scene
	pending *pendingLoad
	state   state.SceneState
	screenW int
	screenH int
	dt      float64
	drawErr error
}

// New creates a new Game and starts the transition to the initial scene.
// A scene without a Loader is entered immediately.
func New(cfg Config, initial scene.Scene) (*Game, error) {
	if cfg.Scheduler == nil {
		return nil, errors.New("game: scheduler is required")
	}
	if cfg.DT <= 0 {
		cfg.DT = 1.0 / 60.0
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	g := &Game{
		sched:   cfg.Scheduler,
		input:   cfg.Input,
		latch:   cfg.Latch,
		log:     cfg.Logger,
		screenW: cfg.Width,
		screenH: cfg.Height,
		dt:      cfg.DT,
	}
	if err := g.switchTo(initial); err != nil {
		return nil, err
	}
	return g, nil
}

// State returns the lifecycle state of the current transition.
func (g *Game) State() state.SceneState { return g.state }

// Current returns the active scene, nil before the first one was entered.
func (g *Game) Current() scene.Scene { return g.current }

// Scheduler returns the scheduler driven by this game.
func (g *Game) Scheduler() *ecs.Scheduler { return g.sched }

// Update updates the current scene and handles scene transitions.
// Implements ebiten.Game interface.
func (g *Game) Update() error {
	if err := g.drawErr; err != nil {
		g.drawErr = nil
		return err
	}
	if g.state == state.StateClosed {
		return ebiten.Termination
	}
	if g.pending != nil {
		select {
		case err := <-g.pending.done:
			p := g.pending
			g.pending = nil
			if err != nil {
				g.state = state.StateFailed
				g.log.Error("scene load failed", zap.Error(err))
				return fmt.Errorf("load scene: %w", err)
			}
			if err := g.enter(p.scene); err != nil {
				return err
			}
		default:
			return nil
		}
	}
	if !g.state.Running() {
		return nil
	}
	// Only simulated ticks consume input; recordings stay frame-aligned.
	if g.latch != nil && g.input != nil {
		g.latch.Capture(g.input)
	}

	if err := g.sched.Update(g.dt); err != nil {
		return err
	}
	next, err := g.current.Update(g.dt)
	if err != nil {
		return err
	}

	// Handle scene transition
	if next != nil {
		return g.switchTo(next)
	}
	return nil
}

// Draw runs the scheduler's render phase, then the current scene's Draw.
// A render failure is returned from the next Update.
// Implements ebiten.Game interface.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.state == state.StateLoading && g.current == nil {
		ebitenutil.DebugPrint(screen, "Loading...")
		return
	}
	if g.current == nil {
		return
	}
	if err := g.sched.Render(screen, g.dt); err != nil && g.drawErr == nil {
		g.drawErr = err
	}
	g.current.Draw(screen)
}

// Layout returns the game's logical screen dimensions.
// Implements ebiten.Game interface.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.screenW, g.screenH
}

// SetDT sets the delta time used for updates.
// Useful for testing or custom frame rates.
func (g *Game) SetDT(dt float64) {
	g.dt = dt
}

// Close cancels any load in flight, exits the current scene and disposes
// the scheduler's systems. Safe to call more than once.
func (g *Game) Close() {
	if g.state == state.StateClosed {
		return
	}
	if p := g.pending; p != nil {
		g.pending = nil
		p.cancel()
		if err := <-p.done; err == nil {
			unload(p.scene)
		}
	}
	if g.current != nil {
		g.leave(g.current)
		g.current = nil
	}
	g.sched.Close()
	g.state = state.StateClosed
}

func (g *Game) switchTo(next scene.Scene) error {
	l, ok := next.(scene.Loader)
	if !ok {
		return g.enter(next)
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &pendingLoad{scene: next, cancel: cancel, done: make(chan error, 1)}
	go func() {
		defer cancel()
		p.done <- l.Load(ctx)
	}()
	g.pending = p
	g.state = state.StateLoading
	return nil
}

func (g *Game) enter(next scene.Scene) error {
	if g.current != nil {
		g.leave(g.current)
	}
	g.current = nil
	if err := next.OnEnter(); err != nil {
		unload(next)
		g.state = state.StateFailed
		return fmt.Errorf("enter scene: %w", err)
	}
	g.current = next
	g.state = state.StateActive
	return nil
}

func (g *Game) leave(s scene.Scene) {
	s.OnExit()
	unload(s)
}

func unload(s scene.Scene) {
	if l, ok := s.(scene.Loader); ok {
		l.Unload()
	}
}
