package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/engine2d/internal/collision"
	"github.com/younwookim/engine2d/internal/domain/geom"
	"github.com/younwookim/engine2d/internal/ecs"
)

func spawnSprite(t *testing.T, w *ecs.World, name string, x, y float64, sp *ecs.Sprite) ecs.Entity {
	t.Helper()
	e := w.CreateEntity(name)
	require.NoError(t, ecs.AddComponent(w, e, ecs.NewTransform(x, y)))
	require.NoError(t, ecs.AddComponent(w, e, sp))
	return e
}

func TestRenderSystem_DrawList(t *testing.T) {
	w := ecs.NewWorld()
	sys := NewRenderSystem(w)

	top := spawnSprite(t, w, "top", 0, 0, &ecs.Sprite{Z: 10})
	a := spawnSprite(t, w, "a", 0, 0, &ecs.Sprite{Z: 0})
	floor := spawnSprite(t, w, "floor", 0, 0, &ecs.Sprite{Z: -5})
	b := spawnSprite(t, w, "b", 0, 0, &ecs.Sprite{Z: 0})
	spawnSprite(t, w, "hidden", 0, 0, &ecs.Sprite{Z: 0, Hidden: true})
	off := spawnSprite(t, w, "inactive", 0, 0, &ecs.Sprite{})
	w.SetActive(off, false)

	var order []ecs.Entity
	for _, it := range sys.drawList() {
		order = append(order, it.entity)
	}
	assert.Equal(t, []ecs.Entity{floor, a, b, top}, order)

	t.Run("children draw at their world position", func(t *testing.T) {
		w := ecs.NewWorld()
		sys := NewRenderSystem(w)
		parent := spawnSprite(t, w, "parent", 100, 50, &ecs.Sprite{})
		child := spawnSprite(t, w, "child", 4, 4, &ecs.Sprite{Z: 1})
		ecs.GetComponent[ecs.Transform](w, child).Parent = parent

		items := sys.drawList()
		require.Len(t, items, 2)
		assert.Equal(t, geom.Vec2{X: 104, Y: 54}, items[1].pos)
	})

	assert.Equal(t, ecs.RenderOrderWorld, sys.Order())
}

func TestCollisionDebugSystem_Order(t *testing.T) {
	_, det, _ := newCollisionFixture(t)
	sys := NewCollisionDebugSystem(det)

	assert.Equal(t, "collision_debug", sys.Name())
	assert.Greater(t, sys.Order(), ecs.RenderOrderWorld)
	assert.Less(t, sys.Order(), ecs.RenderOrderOverlay)
}

func TestCollisionDebugSystem_CullsToView(t *testing.T) {
	w, det, _ := newCollisionFixture(t)
	sys := NewCollisionDebugSystem(det)

	spawnCollider(t, w, "inside", 50, 50, collision.NewCollider().Circle(4))
	spawnCollider(t, w, "edge", 322, 100, collision.NewCollider().Box(8, 8))
	spawnCollider(t, w, "far", 1000, 1000, collision.NewCollider().Circle(4))
	require.NoError(t, det.Update(1.0/60))

	view := geom.Rect{Width: 320, Height: 240}
	var got []geom.Vec2
	for _, sh := range sys.visible(view) {
		got = append(got, sh.Position())
	}
	assert.ElementsMatch(t, []geom.Vec2{{X: 50, Y: 50}, {X: 322, Y: 100}}, got)
	assert.Len(t, det.registry.Shapes(), 3)
}
