package input

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Ebiten reads the keyboard and mouse through ebiten. WASD and the arrow
// keys steer, Space is the action, F3 toggles debug.
type Ebiten struct{}

// NewEbiten creates the live input source.
func NewEbiten() *Ebiten { return &Ebiten{} }

// State reads the devices.
func (Ebiten) State() State {
	mx, my := ebiten.CursorPosition()
	return State{
		Left:          anyPressed(ebiten.KeyA, ebiten.KeyArrowLeft),
		Right:         anyPressed(ebiten.KeyD, ebiten.KeyArrowRight),
		Up:            anyPressed(ebiten.KeyW, ebiten.KeyArrowUp),
		Down:          anyPressed(ebiten.KeyS, ebiten.KeyArrowDown),
		Action:        ebiten.IsKeyPressed(ebiten.KeySpace),
		ActionPressed: inpututil.IsKeyJustPressed(ebiten.KeySpace),
		DebugPressed:  inpututil.IsKeyJustPressed(ebiten.KeyF3),
		CursorX:       mx,
		CursorY:       my,
	}
}

func anyPressed(keys ...ebiten.Key) bool {
	for _, k := range keys {
		if ebiten.IsKeyPressed(k) {
			return true
		}
	}
	return false
}
