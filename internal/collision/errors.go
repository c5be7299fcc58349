package collision

import "errors"

var (
	// ErrUnknownShape is returned when a Collider's shape kind was never set
	// or is not one this package knows how to build.
	ErrUnknownShape = errors.New("collision: unknown shape kind")

	// ErrInvalidCollider is returned for non-positive dimensions or a layer
	// outside 0..MaxLayer.
	ErrInvalidCollider = errors.New("collision: invalid collider")

	// ErrNilShape is returned by AddShape(nil).
	ErrNilShape = errors.New("collision: nil shape")

	// ErrForeignShape is returned when a shape registered with one registry
	// is added to another.
	ErrForeignShape = errors.New("collision: shape belongs to another registry")
)
