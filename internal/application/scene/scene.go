// Package scene defines the Scene interface for game screens.
//
// A scene owns the entities and scene-scoped systems it creates. Global
// systems live in the scheduler for the lifetime of the game; a scene adds
// its own in OnEnter and removes them in OnExit.
package scene

import (
	"context"

	"github.com/hajimehoshi/ebiten/v2"
)

// Scene represents a game screen.
//
// The game loop runs the scheduler and then delegates Update and Draw calls
// to the current scene. Scene transitions are handled by returning a new
// Scene from Update.
type Scene interface {
	// Update updates the scene state.
	// dt is the delta time in seconds (typically 1/60).
	// Returns the next scene if a transition is needed, nil to stay on current scene.
	// Returns an error to terminate the game.
	Update(dt float64) (next Scene, err error)

	// Draw renders scene-owned overlays after the scheduler's render pass.
	Draw(screen *ebiten.Image)

	// OnEnter is called once the scene is about to become current.
	// An error aborts the transition and terminates the game.
	OnEnter() error

	// OnExit is called when leaving this scene.
	OnExit()
}

// Loader is implemented by scenes that need resources before they can be
// entered. Load runs off the frame goroutine and must return ctx.Err()
// after releasing whatever it already acquired when ctx is cancelled.
// Unload is called after OnExit, or instead of it when a loaded scene is
// never entered.
type Loader interface {
	Load(ctx context.Context) error
	Unload()
}
