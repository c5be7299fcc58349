package replay

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/younwookim/engine2d/internal/application/input"
)

// Replayer handles input playback from recorded data. It satisfies
// input.Query, so it can stand in for the live device source.
type Replayer struct {
	data  ReplayData
	frame int
}

var _ input.Query = (*Replayer)(nil)

// ErrUnsupportedVersion is returned for recordings written in another format.
var ErrUnsupportedVersion = errors.New("unsupported replay version")

// NewReplayer creates a new replayer from replay data
func NewReplayer(data ReplayData) *Replayer {
	return &Replayer{
		data:  data,
		frame: 0,
	}
}

// LoadReplay loads replay data from a file
func LoadReplay(filename string) (*ReplayData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return Decode(file)
}

// Decode reads replay JSON from r. Only recordings of the current Version
// are accepted.
func Decode(r io.Reader) (*ReplayData, error) {
	var data ReplayData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode replay: %w", err)
	}
	if data.Version != Version {
		return nil, fmt.Errorf("%w: %q (want %q)", ErrUnsupportedVersion, data.Version, Version)
	}
	return &data, nil
}

// Next returns the input for the current frame and advances
func (r *Replayer) Next() (input.State, bool) {
	if r.frame >= len(r.data.Frames) {
		return input.State{}, false
	}

	fi := r.data.Frames[r.frame]
	r.frame++
	return fi.state(), true
}

// State implements input.Query. After the last frame it reports idle input.
func (r *Replayer) State() input.State {
	s, _ := r.Next()
	return s
}

// Done reports whether every recorded frame has been played
func (r *Replayer) Done() bool {
	return r.frame >= len(r.data.Frames)
}

// CurrentFrame returns the current frame number
func (r *Replayer) CurrentFrame() int {
	return r.frame
}

// TotalFrames returns the total number of frames
func (r *Replayer) TotalFrames() int {
	return len(r.data.Frames)
}

// Seed returns the seed used for the replay
func (r *Replayer) Seed() int64 {
	return r.data.Seed
}

// Scene returns the scene the recording started in
func (r *Replayer) Scene() string {
	return r.data.Scene
}

// Reset resets the replayer to the beginning
func (r *Replayer) Reset() {
	r.frame = 0
}

// CreateTestReplayData creates replay data for testing (idle player)
func CreateTestReplayData(frames int, mouseX, mouseY int) ReplayData {
	data := ReplayData{
		Version:   Version,
		Seed:      12345,
		Scene:     "test",
		StartTime: time.Now().Format(time.RFC3339),
		Frames:    make([]FrameInput, frames),
	}

	for i := 0; i < frames; i++ {
		data.Frames[i] = FrameInput{
			F:  i,
			MX: mouseX,
			MY: mouseY,
		}
	}

	return data
}
