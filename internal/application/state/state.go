package state

// SceneState tracks where the active scene is in its lifecycle.
type SceneState int

const (
	StateNone SceneState = iota
	StateLoading
	StateActive
	StateFailed
	StateClosed
)

// String returns the string representation of the scene state
func (s SceneState) String() string {
	switch s {
	case StateNone:
		return "None"
	case StateLoading:
		return "Loading"
	case StateActive:
		return "Active"
	case StateFailed:
		return "Failed"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Running reports whether frames should be simulated in this state.
func (s SceneState) Running() bool {
	return s == StateActive
}
