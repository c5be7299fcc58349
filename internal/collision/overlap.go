package collision

import "github.com/younwookim/engine2d/internal/domain/geom"

// Overlaps is the narrow phase. Every test is boundary-inclusive: shapes
// that only touch are colliding.
func Overlaps(a, b Shape) bool {
	switch sa := a.(type) {
	case *Circle:
		switch sb := b.(type) {
		case *Circle:
			return circleCircle(sa, sb)
		case *Box:
			return circleBox(sa, sb)
		}
	case *Box:
		switch sb := b.(type) {
		case *Circle:
			return circleBox(sb, sa)
		case *Box:
			return sa.Bounds().Intersects(sb.Bounds())
		}
	}
	return false
}

// d² <= (r1+r2)²
func circleCircle(a, b *Circle) bool {
	r := a.radius + b.radius
	return b.pos.Sub(a.pos).LenSq() <= r*r
}

// Closest point on the box to the circle center, then a radius check.
func circleBox(c *Circle, b *Box) bool {
	closest := b.Bounds().Clamp(c.pos)
	return c.pos.Sub(closest).LenSq() <= c.radius*c.radius
}

// boundsOverlap is the broad-phase rejection used before Overlaps.
func boundsOverlap(a, b geom.Rect) bool {
	return a.Intersects(b)
}
