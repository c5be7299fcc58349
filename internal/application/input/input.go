// Package input is the engine's view of player input. Systems never poll a
// device directly: the frame driver captures one State per tick from a
// Query (the ebiten adapter or a replay) and systems read it from a Latch.
package input

import "github.com/younwookim/engine2d/internal/domain/geom"

// State is one frame of input.
type State struct {
	Left, Right, Up, Down bool
	Action                bool // held
	ActionPressed         bool // went down this frame
	DebugPressed          bool // toggles the debug overlay
	CursorX, CursorY      int
}

// Direction returns the held direction as a vector with components in
// {-1, 0, 1}. Opposite keys cancel.
func (s State) Direction() geom.Vec2 {
	var d geom.Vec2
	if s.Left {
		d.X--
	}
	if s.Right {
		d.X++
	}
	if s.Up {
		d.Y--
	}
	if s.Down {
		d.Y++
	}
	return d
}

// Query produces the input for the current frame. Implementations may
// advance internal state on each call, so call it once per frame.
type Query interface {
	State() State
}

// QueryFunc adapts a function to Query.
type QueryFunc func() State

func (f QueryFunc) State() State { return f() }

// Latch holds the State captured at the start of a frame so every system
// in that frame sees the same input.
type Latch struct {
	state State
}

// Capture polls q and stores the result.
func (l *Latch) Capture(q Query) State {
	l.state = q.State()
	return l.state
}

// Set stores s directly.
func (l *Latch) Set(s State) { l.state = s }

// State returns the captured input. Latch itself satisfies Query.
func (l *Latch) State() State { return l.state }
