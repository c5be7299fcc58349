package system

import (
	"fmt"
	"strings"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/younwookim/engine2d/internal/domain/geom"
	"github.com/younwookim/engine2d/internal/ecs"
)

// LoopMode selects what a PositionTween does when it reaches its target.
type LoopMode int

const (
	LoopNone    LoopMode = iota // stop and drop the component
	LoopRestart                 // jump back to From
	LoopYoyo                    // run back towards From
)

// ParseLoop maps a config name to a LoopMode. Empty means LoopNone.
func ParseLoop(s string) (LoopMode, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return LoopNone, nil
	case "restart":
		return LoopRestart, nil
	case "yoyo":
		return LoopYoyo, nil
	default:
		return LoopNone, fmt.Errorf("unknown tween loop %q", s)
	}
}

var easings = map[string]ease.TweenFunc{
	"linear":     ease.Linear,
	"inquad":     ease.InQuad,
	"outquad":    ease.OutQuad,
	"inoutquad":  ease.InOutQuad,
	"incubic":    ease.InCubic,
	"outcubic":   ease.OutCubic,
	"inoutcubic": ease.InOutCubic,
	"insine":     ease.InSine,
	"outsine":    ease.OutSine,
	"inoutsine":  ease.InOutSine,
	"inexpo":     ease.InExpo,
	"outexpo":    ease.OutExpo,
	"inoutexpo":  ease.InOutExpo,
	"outback":    ease.OutBack,
	"outbounce":  ease.OutBounce,
	"outelastic": ease.OutElastic,
}

// ParseEase looks up an easing function by name, case-insensitively
// ("inOutQuad", "linear"). Empty means linear.
func ParseEase(name string) (ease.TweenFunc, error) {
	if name == "" {
		return ease.Linear, nil
	}
	fn, ok := easings[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown easing %q", name)
	}
	return fn, nil
}

// PositionTween moves an entity's local Transform.Position from From to To.
type PositionTween struct {
	From, To geom.Vec2
	Loop     LoopMode

	progress *gween.Tween
	done     bool
}

// NewPositionTween eases from -> to over duration seconds. A nil fn is linear.
func NewPositionTween(from, to geom.Vec2, duration float64, fn ease.TweenFunc, loop LoopMode) *PositionTween {
	if fn == nil {
		fn = ease.Linear
	}
	return &PositionTween{
		From:     from,
		To:       to,
		Loop:     loop,
		progress: gween.New(0, 1, float32(duration), fn),
	}
}

// Done reports whether a LoopNone tween has reached To.
func (t *PositionTween) Done() bool { return t.done }

// step advances by dt and returns the new position.
func (t *PositionTween) step(dt float64) geom.Vec2 {
	if t.done {
		return t.To
	}
	p, finished := t.progress.Update(float32(dt))
	if finished {
		switch t.Loop {
		case LoopNone:
			t.done = true
			return t.To
		case LoopYoyo:
			t.From, t.To = t.To, t.From
			fallthrough
		case LoopRestart:
			over := t.progress.Overflow
			t.progress.Reset()
			p, _ = t.progress.Update(over)
		}
	}
	return t.From.Add(t.To.Sub(t.From).Scale(float64(p)))
}

// TweenSystem advances PositionTweens and writes the result into the
// entity's Transform. Finished one-shot tweens are removed after the pass.
type TweenSystem struct {
	world *ecs.World
}

// NewTweenSystem creates a tween system over w.
func NewTweenSystem(w *ecs.World) *TweenSystem {
	return &TweenSystem{world: w}
}

func (s *TweenSystem) Name() string       { return "tween" }
func (s *TweenSystem) UpdateOrder() int   { return ecs.OrderTween }
func (s *TweenSystem) ParallelSafe() bool { return true }

func (s *TweenSystem) Entities() []ecs.Entity {
	return ecs.Query2[PositionTween, ecs.Transform](s.world)
}

func (s *TweenSystem) UpdateEntity(e ecs.Entity, dt float64) error {
	tw := ecs.GetComponent[PositionTween](s.world, e)
	tr := ecs.GetComponent[ecs.Transform](s.world, e)
	if tw == nil || tr == nil {
		return nil
	}
	tr.Position = tw.step(dt)
	return nil
}

func (s *TweenSystem) BeginUpdate(dt float64) error { return nil }

func (s *TweenSystem) EndUpdate(dt float64) error {
	var finished []ecs.Entity
	ecs.Each(s.world, func(e ecs.Entity, tw *PositionTween) {
		if tw.done {
			finished = append(finished, e)
		}
	})
	for _, e := range finished {
		ecs.RemoveComponent[PositionTween](s.world, e)
	}
	return nil
}
