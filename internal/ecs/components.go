package ecs

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/younwookim/engine2d/internal/domain/geom"
)

// maxHierarchyDepth bounds parent-chain walks so a cycle cannot hang a frame.
const maxHierarchyDepth = 32

// Transform places an entity. Position, Rotation and Scale are relative to
// Parent when Parent is set, otherwise they are world-space.
type Transform struct {
	Position geom.Vec2
	Rotation float64 // radians
	Scale    geom.Vec2
	Parent   Entity
}

// NewTransform returns a unit-scale transform at (x, y).
func NewTransform(x, y float64) *Transform {
	return &Transform{Position: geom.Vec2{X: x, Y: y}, Scale: geom.Vec2{X: 1, Y: 1}}
}

// WorldPosition resolves e's position through its parent chain. Entities
// without a Transform sit at the origin; a destroyed parent ends the walk.
func WorldPosition(w *World, e Entity) geom.Vec2 {
	t := GetComponent[Transform](w, e)
	if t == nil {
		return geom.Vec2{}
	}
	pos := t.Position
	parent := t.Parent
	for depth := 0; !parent.IsZero() && depth < maxHierarchyDepth; depth++ {
		pt := GetComponent[Transform](w, parent)
		if pt == nil {
			break
		}
		scale := pt.Scale
		if scale == (geom.Vec2{}) {
			scale = geom.Vec2{X: 1, Y: 1}
		}
		pos = pos.Mul(scale).Rotate(pt.Rotation).Add(pt.Position)
		parent = pt.Parent
	}
	return pos
}

// Velocity is a per-second displacement.
type Velocity struct {
	geom.Vec2
}

// InputDirection is written by input-reading systems and consumed by
// movement. Components are in [-1, 1].
type InputDirection struct {
	geom.Vec2
	Action bool
}

// PlayerControlled tags entities steered by the local player.
type PlayerControlled struct {
	Speed float64 // world units per second
}

// Sprite describes how the render system draws an entity, centered on its
// world position. A nil Image draws a solid rectangle of Size in Color, or a
// disc of diameter Size.X when Round is set.
type Sprite struct {
	Image  *ebiten.Image
	Size   geom.Vec2
	Color  color.RGBA
	Z      int
	Round  bool
	Hidden bool
}
