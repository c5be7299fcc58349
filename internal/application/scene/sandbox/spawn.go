package sandbox

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/younwookim/engine2d/internal/application/system"
	"github.com/younwookim/engine2d/internal/collision"
	"github.com/younwookim/engine2d/internal/domain/geom"
	"github.com/younwookim/engine2d/internal/ecs"
	"github.com/younwookim/engine2d/internal/infrastructure/assets"
	"github.com/younwookim/engine2d/internal/infrastructure/config"
)

// colorMissing marks sprites whose texture could not be found.
var colorMissing = color.RGBA{255, 0, 255, 255}

// Textures is the part of the texture loader the sandbox uses.
type Textures interface {
	LoadAll(ctx context.Context, names []string) error
	Require(name string) (*ebiten.Image, error)
	Unload(names ...string)
}

// Spawner turns entity prefabs into entities.
type Spawner struct {
	world    *ecs.World
	textures Textures
	log      *zap.Logger
	rng      *rand.Rand
	byName   map[string]ecs.Entity
}

// NewSpawner creates a spawner whose jitter is seeded with 0.
func NewSpawner(w *ecs.World, tex Textures, log *zap.Logger) *Spawner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Spawner{
		world:    w,
		textures: tex,
		log:      log,
		rng:      newRand(0),
		byName:   make(map[string]ecs.Entity),
	}
}

// WithSeed reseeds the jitter source. The same seed and prefabs always
// produce the same layout, which keeps replays in step.
func (s *Spawner) WithSeed(seed int64) *Spawner {
	s.rng = newRand(seed)
	return s
}

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), 0x9e3779b97f4a7c15))
}

// Lookup returns the entity spawned under name. For prefabs with a count
// the name refers to the first copy.
func (s *Spawner) Lookup(name string) (ecs.Entity, bool) {
	e, ok := s.byName[name]
	return e, ok
}

// SpawnAll spawns prefabs in order. On error, entities spawned by this call
// are destroyed.
func (s *Spawner) SpawnAll(prefabs []config.EntityConfig) ([]ecs.Entity, error) {
	var out []ecs.Entity
	for i, p := range prefabs {
		n := max(p.Count, 1)
		for c := 0; c < n; c++ {
			name := p.Name
			if n > 1 {
				name = fmt.Sprintf("%s_%d", p.Name, c)
			}
			shift := geom.Vec2{X: p.Spread.X * float64(c), Y: p.Spread.Y * float64(c)}
			if p.Jitter != nil {
				shift = shift.Add(s.jitter(*p.Jitter))
			}
			e, err := s.spawn(p, name, shift)
			if err != nil {
				for _, done := range out {
					s.world.DestroyEntity(done)
				}
				return nil, fmt.Errorf("entity %d (%s): %w", i, name, err)
			}
			if c == 0 && p.Name != "" {
				s.byName[p.Name] = e
			}
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Spawner) spawn(p config.EntityConfig, name string, shift geom.Vec2) (ecs.Entity, error) {
	w := s.world
	e := w.CreateEntity(name)
	fail := func(err error) (ecs.Entity, error) {
		w.DestroyEntity(e)
		return ecs.NoEntity, err
	}

	pos := geom.Vec2{X: p.Position.X, Y: p.Position.Y}.Add(shift)
	tr := ecs.NewTransform(pos.X, pos.Y)
	tr.Rotation = p.Rotation * math.Pi / 180
	if p.Parent != "" {
		parent, ok := s.byName[p.Parent]
		if !ok {
			return fail(fmt.Errorf("parent %q: %w", p.Parent, config.ErrInvalidConfig))
		}
		tr.Parent = parent
	}
	if err := ecs.AddComponent(w, e, tr); err != nil {
		return fail(err)
	}

	if p.Velocity != nil || p.Player != nil {
		v := &ecs.Velocity{}
		if p.Velocity != nil {
			v.Vec2 = geom.Vec2{X: p.Velocity.X, Y: p.Velocity.Y}
		}
		if err := ecs.AddComponent(w, e, v); err != nil {
			return fail(err)
		}
	}
	if p.Player != nil {
		if err := ecs.AddComponent(w, e, &ecs.PlayerControlled{Speed: p.Player.Speed}); err != nil {
			return fail(err)
		}
		if err := ecs.AddComponent(w, e, &ecs.InputDirection{}); err != nil {
			return fail(err)
		}
	}
	if p.Collider != nil {
		c, err := buildCollider(p.Collider)
		if err != nil {
			return fail(err)
		}
		if err := ecs.AddComponent(w, e, c); err != nil {
			return fail(err)
		}
	}
	if p.Sprite != nil {
		sp, err := s.sprite(name, p.Sprite, p.Collider)
		if err != nil {
			return fail(err)
		}
		if err := ecs.AddComponent(w, e, sp); err != nil {
			return fail(err)
		}
	}
	if p.Tween != nil {
		tw, err := buildTween(p.Tween, pos, shift)
		if err != nil {
			return fail(err)
		}
		if err := ecs.AddComponent(w, e, tw); err != nil {
			return fail(err)
		}
	}
	return e, nil
}

// jitter returns an offset uniform in [-j, j] on each axis.
func (s *Spawner) jitter(j config.Vec2Config) geom.Vec2 {
	return geom.Vec2{
		X: (s.rng.Float64()*2 - 1) * j.X,
		Y: (s.rng.Float64()*2 - 1) * j.Y,
	}
}

func buildCollider(cc *config.ColliderConfig) (*collision.Collider, error) {
	kind, err := collision.ParseKind(cc.Shape)
	if err != nil {
		return nil, err
	}
	c := collision.NewCollider()
	switch kind {
	case collision.KindCircle:
		c.Circle(cc.Radius)
	case collision.KindBox:
		c.Box(cc.Width, cc.Height)
	}
	return c.WithOffset(cc.Offset.X, cc.Offset.Y).OnLayer(cc.Layer).WithMask(cc.MaskBits()), nil
}

// sprite builds a Sprite. A texture that is not loaded degrades to a solid
// color so a missing file never stops a scene.
func (s *Spawner) sprite(name string, sc *config.SpriteConfig, cc *config.ColliderConfig) (*ecs.Sprite, error) {
	sp := &ecs.Sprite{Size: geom.Vec2{X: sc.Width, Y: sc.Height}, Z: sc.Z}
	if sc.Color != "" {
		c, err := config.ParseColor(sc.Color)
		if err != nil {
			return nil, err
		}
		sp.Color = c
	}
	if sc.Texture != "" {
		img, err := s.textures.Require(sc.Texture)
		switch {
		case err == nil:
			sp.Image = img
		case errors.Is(err, assets.ErrNotLoaded):
			s.log.Warn("texture not loaded, drawing solid sprite",
				zap.String("entity", name),
				zap.String("texture", sc.Texture),
			)
			if sp.Color.A == 0 {
				sp.Color = colorMissing
			}
		default:
			return nil, err
		}
	}
	sp.Round = sp.Image == nil && cc != nil && cc.Shape == collision.KindCircle.String()
	return sp, nil
}

// buildTween runs from the spawn position to To, shifted like the copy.
func buildTween(tc *config.TweenConfig, from, shift geom.Vec2) (*system.PositionTween, error) {
	if tc.Duration <= 0 {
		return nil, fmt.Errorf("tween duration %v: %w", tc.Duration, config.ErrInvalidConfig)
	}
	fn, err := system.ParseEase(tc.Ease)
	if err != nil {
		return nil, err
	}
	loop, err := system.ParseLoop(tc.Loop)
	if err != nil {
		return nil, err
	}
	to := geom.Vec2{X: tc.To.X, Y: tc.To.Y}.Add(shift)
	return system.NewPositionTween(from, to, tc.Duration, fn, loop), nil
}
