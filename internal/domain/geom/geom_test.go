package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec2(t *testing.T) {
	a := Vec2{3, 4}
	b := Vec2{1, 2}

	assert.Equal(t, Vec2{4, 6}, a.Add(b))
	assert.Equal(t, Vec2{2, 2}, a.Sub(b))
	assert.Equal(t, Vec2{6, 8}, a.Scale(2))
	assert.Equal(t, Vec2{3, 8}, a.Mul(b))
	assert.Equal(t, 25.0, a.LenSq())
	assert.Equal(t, 5.0, a.Len())
	assert.Equal(t, Vec2{}, Vec2{}.Normalize())
	assert.InDelta(t, 1.0, a.Normalize().Len(), 1e-9)
}

func TestVec2_Rotate(t *testing.T) {
	v := Vec2{1, 0}.Rotate(math.Pi / 2)
	assert.InDelta(t, 0, v.X, 1e-9)
	assert.InDelta(t, 1, v.Y, 1e-9)

	assert.Equal(t, Vec2{2, 3}, Vec2{2, 3}.Rotate(0))
}

func TestRect(t *testing.T) {
	r := RectFromCenter(Vec2{10, 10}, 4, 6)

	assert.Equal(t, Rect{X: 8, Y: 7, Width: 4, Height: 6}, r)
	assert.Equal(t, Vec2{10, 10}, r.Center())
	assert.True(t, r.Contains(Vec2{8, 7}), "edge counts as inside")
	assert.False(t, r.Contains(Vec2{7.9, 7}))
	assert.Equal(t, Vec2{12, 7}, r.Clamp(Vec2{20, 0}))
}

func TestRect_Intersects(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want bool
	}{
		{"overlapping", Rect{0, 0, 10, 10}, Rect{5, 5, 10, 10}, true},
		{"touching edge", Rect{0, 0, 10, 10}, Rect{10, 0, 10, 10}, true},
		{"touching corner", Rect{0, 0, 10, 10}, Rect{10, 10, 5, 5}, true},
		{"separated", Rect{0, 0, 10, 10}, Rect{10.5, 0, 10, 10}, false},
		{"contained", Rect{0, 0, 10, 10}, Rect{2, 2, 1, 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Intersects(tt.b))
			assert.Equal(t, tt.want, tt.b.Intersects(tt.a))
		})
	}
}
