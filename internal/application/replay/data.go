package replay

import "github.com/younwookim/engine2d/internal/application/input"

// Version is written into every recording.
const Version = "2.0"

// FrameInput records input state for a single frame
type FrameInput struct {
	F   int  `json:"f"`             // Frame number
	L   bool `json:"l,omitempty"`   // Left
	R   bool `json:"r,omitempty"`   // Right
	U   bool `json:"u,omitempty"`   // Up
	D   bool `json:"d,omitempty"`   // Down
	A   bool `json:"a,omitempty"`   // Action held
	AP  bool `json:"ap,omitempty"`  // ActionPressed
	Dbg bool `json:"dbg,omitempty"` // DebugPressed
	MX  int  `json:"mx"`            // CursorX
	MY  int  `json:"my"`            // CursorY
}

// ReplayData contains all data needed to replay a game session
type ReplayData struct {
	Version   string       `json:"version"`
	Seed      int64        `json:"seed"`
	Scene     string       `json:"scene"`
	StartTime string       `json:"startTime"`
	Frames    []FrameInput `json:"frames"`
}

func encodeFrame(f int, s input.State) FrameInput {
	return FrameInput{
		F:   f,
		L:   s.Left,
		R:   s.Right,
		U:   s.Up,
		D:   s.Down,
		A:   s.Action,
		AP:  s.ActionPressed,
		Dbg: s.DebugPressed,
		MX:  s.CursorX,
		MY:  s.CursorY,
	}
}

func (fi FrameInput) state() input.State {
	return input.State{
		Left:          fi.L,
		Right:         fi.R,
		Up:            fi.U,
		Down:          fi.D,
		Action:        fi.A,
		ActionPressed: fi.AP,
		DebugPressed:  fi.Dbg,
		CursorX:       fi.MX,
		CursorY:       fi.MY,
	}
}
