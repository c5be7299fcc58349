package collision

import (
	"fmt"

	"github.com/younwookim/engine2d/internal/domain/geom"
)

// MaxLayer is the highest layer index a mask can address.
const MaxLayer = 31

// AllLayers is a mask accepting every layer.
const AllLayers uint32 = ^uint32(0)

// State is a Collider's shape lifecycle.
//
//	Uninitialized --Build--> Active --Detach--> Removed
//	Removed --Enable--> Uninitialized
type State int

const (
	StateUninitialized State = iota
	StateActive
	StateRemoved
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	case StateRemoved:
		return "removed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Collider is the ECS component describing an entity's collision shape.
// Configure it with the builder methods, then attach it; the collision
// detection system builds and registers the shape on its next tick.
//
//	c := collision.NewCollider().Circle(5).OnLayer(1).WithMask(1 << 2)
type Collider struct {
	kind          Kind
	radius        float64
	width, height float64
	offset        geom.Vec2
	layer         uint8
	mask          uint32
	disabled      bool

	shape Shape
	state State
}

// NewCollider returns an enabled collider on layer 0 accepting every layer.
// A shape must still be chosen with Circle or Box.
func NewCollider() *Collider {
	return &Collider{mask: AllLayers}
}

// Circle makes the collider a circle of the given radius.
func (c *Collider) Circle(radius float64) *Collider {
	c.kind = KindCircle
	c.radius = radius
	return c
}

// Box makes the collider an axis-aligned box centered on the entity.
func (c *Collider) Box(width, height float64) *Collider {
	c.kind = KindBox
	c.width, c.height = width, height
	return c
}

// WithKind sets the kind directly, for data-driven setup.
func (c *Collider) WithKind(k Kind) *Collider {
	c.kind = k
	return c
}

// WithOffset shifts the shape relative to the entity's world position.
func (c *Collider) WithOffset(x, y float64) *Collider {
	c.offset = geom.Vec2{X: x, Y: y}
	return c
}

// OnLayer sets the layer this collider lives on.
func (c *Collider) OnLayer(layer uint8) *Collider {
	c.layer = layer
	return c
}

// WithMask sets which layers this collider is notified about.
func (c *Collider) WithMask(mask uint32) *Collider {
	c.mask = mask
	return c
}

func (c *Collider) Kind() Kind        { return c.kind }
func (c *Collider) Offset() geom.Vec2 { return c.offset }
func (c *Collider) Layer() uint8      { return c.layer }
func (c *Collider) Mask() uint32      { return c.mask }
func (c *Collider) State() State      { return c.state }

// Shape returns the built shape, or nil before the first build and after
// removal.
func (c *Collider) Shape() Shape { return c.shape }

// Accepts reports whether this collider's mask admits layer. Masking is
// directional: a.Accepts(b.Layer()) says nothing about b.Accepts(a.Layer()).
func (c *Collider) Accepts(layer uint8) bool {
	return layer <= MaxLayer && c.mask&(1<<layer) != 0
}

// Enabled reports whether the collider should have a live shape.
func (c *Collider) Enabled() bool { return !c.disabled }

// Disable asks for the shape to be removed on the next tick. Safe to call
// repeatedly.
func (c *Collider) Disable() {
	c.disabled = true
}

// Enable re-arms a disabled collider. A Removed collider goes back to
// Uninitialized so a fresh shape is built.
func (c *Collider) Enable() {
	c.disabled = false
	if c.state == StateRemoved {
		c.state = StateUninitialized
	}
}

// Build constructs the shape for an Uninitialized collider and moves it to
// Active. An unset or unknown kind is a setup mistake and fails with
// ErrUnknownShape.
func (c *Collider) Build() (Shape, error) {
	if c.state == StateActive {
		return c.shape, nil
	}
	if c.layer > MaxLayer {
		return nil, fmt.Errorf("layer %d: %w", c.layer, ErrInvalidCollider)
	}
	var s Shape
	switch c.kind {
	case KindCircle:
		if c.radius <= 0 {
			return nil, fmt.Errorf("circle radius %g: %w", c.radius, ErrInvalidCollider)
		}
		s = NewCircle(c.radius)
	case KindBox:
		if c.width <= 0 || c.height <= 0 {
			return nil, fmt.Errorf("box %gx%g: %w", c.width, c.height, ErrInvalidCollider)
		}
		s = NewBox(c.width, c.height)
	default:
		return nil, fmt.Errorf("%v (was Circle or Box called?): %w", c.kind, ErrUnknownShape)
	}
	c.shape = s
	c.state = StateActive
	return s, nil
}

// Detach drops the shape and moves the collider to Removed. It returns the
// shape so the caller can unregister it; nil when there was none.
func (c *Collider) Detach() Shape {
	s := c.shape
	c.shape = nil
	if c.state == StateActive {
		c.state = StateRemoved
	}
	return s
}
