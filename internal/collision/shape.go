package collision

import (
	"fmt"

	"github.com/younwookim/engine2d/internal/domain/geom"
)

// Kind identifies a shape variant. The zero value is deliberately invalid so
// a Collider whose builder never picked a shape is caught at build time.
type Kind int

const (
	KindUnknown Kind = iota
	KindCircle
	KindBox
)

func (k Kind) String() string {
	switch k {
	case KindCircle:
		return "circle"
	case KindBox:
		return "box"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps a config name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "circle":
		return KindCircle, nil
	case "box":
		return KindBox, nil
	}
	return KindUnknown, fmt.Errorf("shape %q: %w", s, ErrUnknownShape)
}

// Shape is a world-space collision primitive. Only the types in this package
// implement it. Moving a registered shape marks its registry's broad phase
// stale.
type Shape interface {
	Kind() Kind
	Position() geom.Vec2
	SetPosition(p geom.Vec2)
	Bounds() geom.Rect

	registry() *Registry
	setRegistry(r *Registry)
}

// body holds the state shared by every shape.
type body struct {
	pos geom.Vec2
	reg *Registry
}

func (b *body) Position() geom.Vec2 { return b.pos }

func (b *body) SetPosition(p geom.Vec2) {
	if b.pos == p {
		return
	}
	b.pos = p
	if b.reg != nil {
		b.reg.dirty = true
	}
}

func (b *body) registry() *Registry     { return b.reg }
func (b *body) setRegistry(r *Registry) { b.reg = r }

// Circle is centered on its position.
type Circle struct {
	body
	radius float64
}

// NewCircle returns a circle of the given radius at the origin.
func NewCircle(radius float64) *Circle {
	return &Circle{radius: radius}
}

func (c *Circle) Kind() Kind        { return KindCircle }
func (c *Circle) Radius() float64   { return c.radius }
func (c *Circle) Bounds() geom.Rect { return geom.RectFromCenter(c.pos, 2*c.radius, 2*c.radius) }

func (c *Circle) String() string {
	return fmt.Sprintf("circle(r=%g @ %g,%g)", c.radius, c.pos.X, c.pos.Y)
}

// Box is an axis-aligned rectangle centered on its position.
type Box struct {
	body
	width, height float64
}

// NewBox returns a box of the given size centered at the origin.
func NewBox(width, height float64) *Box {
	return &Box{width: width, height: height}
}

func (b *Box) Kind() Kind        { return KindBox }
func (b *Box) Size() geom.Vec2   { return geom.Vec2{X: b.width, Y: b.height} }
func (b *Box) Bounds() geom.Rect { return geom.RectFromCenter(b.pos, b.width, b.height) }

func (b *Box) String() string {
	return fmt.Sprintf("box(%gx%g @ %g,%g)", b.width, b.height, b.pos.X, b.pos.Y)
}
