package system

import (
	"cmp"
	"image/color"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/younwookim/engine2d/internal/collision"
	"github.com/younwookim/engine2d/internal/domain/geom"
	"github.com/younwookim/engine2d/internal/ecs"
)

// Colors for the collision debug overlay
var (
	colorShapeIdle    = color.RGBA{80, 200, 120, 255}
	colorShapeContact = color.RGBA{230, 70, 70, 255}
)

type drawItem struct {
	entity ecs.Entity
	pos    geom.Vec2
	sprite *ecs.Sprite
}

// RenderSystem draws every visible Sprite, lowest Z first. Ties are broken
// by entity handle so the order is stable across frames.
type RenderSystem struct {
	world      *ecs.World
	background color.RGBA
	items      []drawItem
}

// NewRenderSystem creates a render system drawing the sprites of w.
func NewRenderSystem(w *ecs.World) *RenderSystem {
	return &RenderSystem{world: w}
}

// SetBackground sets the clear color. A zero alpha leaves the screen as is.
func (s *RenderSystem) SetBackground(c color.RGBA) { s.background = c }

// Background returns the clear color.
func (s *RenderSystem) Background() color.RGBA { return s.background }

func (s *RenderSystem) Name() string { return "render" }
func (s *RenderSystem) Order() int   { return ecs.RenderOrderWorld }

func (s *RenderSystem) Render(screen *ebiten.Image, dt float64) error {
	if s.background.A > 0 {
		screen.Fill(s.background)
	}
	for _, it := range s.drawList() {
		drawSprite(screen, it.pos, it.sprite)
	}
	return nil
}

// drawList collects visible sprites in draw order.
func (s *RenderSystem) drawList() []drawItem {
	s.items = s.items[:0]
	ecs.Each(s.world, func(e ecs.Entity, sp *ecs.Sprite) {
		if sp.Hidden {
			return
		}
		s.items = append(s.items, drawItem{entity: e, pos: ecs.WorldPosition(s.world, e), sprite: sp})
	})
	slices.SortFunc(s.items, func(a, b drawItem) int {
		if c := cmp.Compare(a.sprite.Z, b.sprite.Z); c != 0 {
			return c
		}
		return cmp.Compare(a.entity, b.entity)
	})
	return s.items
}

func drawSprite(screen *ebiten.Image, pos geom.Vec2, sp *ecs.Sprite) {
	size := sp.Size
	if sp.Image != nil {
		b := sp.Image.Bounds()
		if size == (geom.Vec2{}) {
			size = geom.Vec2{X: float64(b.Dx()), Y: float64(b.Dy())}
		}
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(size.X/float64(b.Dx()), size.Y/float64(b.Dy()))
		op.GeoM.Translate(pos.X-size.X/2, pos.Y-size.Y/2)
		screen.DrawImage(sp.Image, op)
		return
	}
	if sp.Round {
		vector.DrawFilledCircle(screen, float32(pos.X), float32(pos.Y), float32(size.X/2), sp.Color, true)
		return
	}
	vector.DrawFilledRect(screen, float32(pos.X-size.X/2), float32(pos.Y-size.Y/2), float32(size.X), float32(size.Y), sp.Color, false)
}

// CollisionDebugSystem outlines every registered shape, red while its owner
// has contacts.
type CollisionDebugSystem struct {
	detection *CollisionDetectionSystem
}

// NewCollisionDebugSystem creates an overlay for the shapes d tracks.
func NewCollisionDebugSystem(d *CollisionDetectionSystem) *CollisionDebugSystem {
	return &CollisionDebugSystem{detection: d}
}

func (s *CollisionDebugSystem) Name() string { return "collision_debug" }
func (s *CollisionDebugSystem) Order() int   { return ecs.RenderOrderDebug }

func (s *CollisionDebugSystem) Render(screen *ebiten.Image, dt float64) error {
	b := screen.Bounds()
	view := geom.Rect{X: float64(b.Min.X), Y: float64(b.Min.Y), Width: float64(b.Dx()), Height: float64(b.Dy())}
	for _, sh := range s.visible(view) {
		clr := colorShapeIdle
		if owner, ok := s.detection.owners[sh]; ok && len(s.detection.contacts[owner]) > 0 {
			clr = colorShapeContact
		}
		p := sh.Position()
		switch v := sh.(type) {
		case *collision.Circle:
			vector.StrokeCircle(screen, float32(p.X), float32(p.Y), float32(v.Radius()), 1, clr, true)
		case *collision.Box:
			b := v.Bounds()
			vector.StrokeRect(screen, float32(b.X), float32(b.Y), float32(b.Width), float32(b.Height), 1, clr, false)
		}
	}
	return nil
}

// visible returns the shapes whose bounds touch view.
func (s *CollisionDebugSystem) visible(view geom.Rect) []collision.Shape {
	return s.detection.registry.QueryRect(view)
}
