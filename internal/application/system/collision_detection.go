package system

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/younwookim/engine2d/internal/collision"
	"github.com/younwookim/engine2d/internal/ecs"
)

// CollisionEnter is published on the world's event bus the first frame
// Self's collider overlaps Other's and Self's mask accepts Other's layer.
type CollisionEnter struct {
	Self, Other ecs.Entity
}

// CollisionExit is published the first frame a reported overlap ends, or
// when either side stops being tracked.
type CollisionExit struct {
	Self, Other ecs.Entity
}

type trackedCollider struct {
	collider *collision.Collider
	shape    collision.Shape
}

// CollisionDetectionSystem keeps collision shapes in step with Collider and
// Transform components and turns overlap changes into enter/exit events.
// It runs after movement so shapes see this frame's positions.
type CollisionDetectionSystem struct {
	world    *ecs.World
	registry *collision.Registry
	log      *zap.Logger

	tracked  map[ecs.Entity]*trackedCollider
	owners   map[collision.Shape]ecs.Entity
	contacts map[ecs.Entity]map[ecs.Entity]struct{}

	seen    map[ecs.Entity]struct{}
	scratch []ecs.Entity
}

// NewCollisionDetectionSystem creates the bridge between w and reg.
func NewCollisionDetectionSystem(w *ecs.World, reg *collision.Registry, log *zap.Logger) *CollisionDetectionSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &CollisionDetectionSystem{
		world:    w,
		registry: reg,
		log:      log,
		tracked:  make(map[ecs.Entity]*trackedCollider),
		owners:   make(map[collision.Shape]ecs.Entity),
		contacts: make(map[ecs.Entity]map[ecs.Entity]struct{}),
		seen:     make(map[ecs.Entity]struct{}),
	}
}

func (s *CollisionDetectionSystem) Name() string     { return "collision_detection" }
func (s *CollisionDetectionSystem) UpdateOrder() int { return ecs.OrderCollision }

// Registry returns the collision registry the system feeds.
func (s *CollisionDetectionSystem) Registry() *collision.Registry { return s.registry }

// Tracked returns the number of entities with a live shape.
func (s *CollisionDetectionSystem) Tracked() int { return len(s.tracked) }

// Contacts returns the entities e is currently reported as touching, sorted
// by handle.
func (s *CollisionDetectionSystem) Contacts(e ecs.Entity) []ecs.Entity {
	set := s.contacts[e]
	out := make([]ecs.Entity, 0, len(set))
	for o := range set {
		out = append(out, o)
	}
	slices.Sort(out)
	return out
}

// Update syncs shapes, then diffs each tracked entity's overlaps against the
// previous frame. A collider that cannot be built is a setup error and is
// returned, after the rest of the frame has still been processed so stale
// shapes never outlive their entities.
func (s *CollisionDetectionSystem) Update(dt float64) error {
	err := s.sync()
	s.dropStale()
	s.detect()
	return err
}

// sync materializes shapes for new colliders, removes disabled ones and
// copies world positions into every live shape. Colliders that fail to
// build are skipped and their errors joined.
func (s *CollisionDetectionSystem) sync() error {
	var errs []error
	clear(s.seen)
	for _, e := range ecs.GetEntitiesWithComponent[collision.Collider](s.world) {
		c := ecs.GetComponent[collision.Collider](s.world, e)

		tr, ok := s.tracked[e]
		if ok && tr.collider != c {
			// Component was replaced; the old shape belongs to the old one.
			s.untrack(e)
			ok = false
		}
		if !c.Enabled() {
			if ok {
				s.untrack(e)
			}
			continue
		}
		if !ok {
			shape, err := c.Build()
			if err != nil {
				errs = append(errs, fmt.Errorf("collider on %s (%q): %w", e, s.world.Name(e), err))
				continue
			}
			if err := s.registry.AddShape(shape); err != nil {
				c.Detach()
				errs = append(errs, fmt.Errorf("register collider on %s: %w", e, err))
				continue
			}
			tr = &trackedCollider{collider: c, shape: shape}
			s.tracked[e] = tr
			s.owners[shape] = e
			s.log.Debug("collider registered",
				zap.Stringer("entity", e),
				zap.Stringer("kind", c.Kind()),
				zap.Uint8("layer", c.Layer()),
			)
		}
		tr.shape.SetPosition(ecs.WorldPosition(s.world, e).Add(c.Offset()))
		s.seen[e] = struct{}{}
	}
	return errors.Join(errs...)
}

// dropStale untracks entities that were destroyed, deactivated or lost
// their collider since the last frame.
func (s *CollisionDetectionSystem) dropStale() {
	stale := s.scratch[:0]
	for e := range s.tracked {
		if _, ok := s.seen[e]; !ok {
			stale = append(stale, e)
		}
	}
	slices.Sort(stale)
	for _, e := range stale {
		s.untrack(e)
	}
	s.scratch = stale[:0]
}

func (s *CollisionDetectionSystem) detect() {
	order := s.scratch[:0]
	for e := range s.tracked {
		order = append(order, e)
	}
	slices.Sort(order)

	current := make(map[ecs.Entity]struct{})
	for _, e := range order {
		tr := s.tracked[e]
		clear(current)
		var entered []ecs.Entity
		for _, hit := range s.registry.GetCollisions(tr.shape) {
			other, ok := s.owners[hit]
			if !ok || other == e {
				continue
			}
			if !tr.collider.Accepts(s.tracked[other].collider.Layer()) {
				continue
			}
			current[other] = struct{}{}
			if _, was := s.contacts[e][other]; !was {
				entered = append(entered, other)
			}
		}

		prev := s.contacts[e]
		var exited []ecs.Entity
		for other := range prev {
			if _, still := current[other]; !still {
				exited = append(exited, other)
			}
		}
		slices.Sort(exited)

		for _, other := range exited {
			delete(prev, other)
			ecs.Publish(s.world.Events(), CollisionExit{Self: e, Other: other})
		}
		for _, other := range entered {
			s.contactsOf(e)[other] = struct{}{}
			ecs.Publish(s.world.Events(), CollisionEnter{Self: e, Other: other})
		}
	}
	s.scratch = order[:0]
}

func (s *CollisionDetectionSystem) contactsOf(e ecs.Entity) map[ecs.Entity]struct{} {
	set, ok := s.contacts[e]
	if !ok {
		set = make(map[ecs.Entity]struct{})
		s.contacts[e] = set
	}
	return set
}

// untrack removes e's shape and closes every open contact involving e, in
// both directions, so no pair is left Colliding without a matching Exit.
func (s *CollisionDetectionSystem) untrack(e ecs.Entity) {
	tr, ok := s.tracked[e]
	if !ok {
		return
	}
	s.registry.RemoveShape(tr.shape)
	tr.collider.Detach()
	delete(s.owners, tr.shape)
	delete(s.tracked, e)

	mine := make([]ecs.Entity, 0, len(s.contacts[e]))
	for other := range s.contacts[e] {
		mine = append(mine, other)
	}
	slices.Sort(mine)
	delete(s.contacts, e)
	for _, other := range mine {
		ecs.Publish(s.world.Events(), CollisionExit{Self: e, Other: other})
	}

	var theirs []ecs.Entity
	for other, set := range s.contacts {
		if _, ok := set[e]; ok {
			delete(set, e)
			theirs = append(theirs, other)
		}
	}
	slices.Sort(theirs)
	for _, other := range theirs {
		ecs.Publish(s.world.Events(), CollisionExit{Self: other, Other: e})
	}

	s.log.Debug("collider removed", zap.Stringer("entity", e))
}

// Dispose removes every shape this system registered and forgets all
// tracking state. No events are published.
func (s *CollisionDetectionSystem) Dispose() {
	for shape, e := range s.owners {
		s.registry.RemoveShape(shape)
		if tr, ok := s.tracked[e]; ok {
			tr.collider.Detach()
		}
	}
	clear(s.tracked)
	clear(s.owners)
	clear(s.contacts)
	clear(s.seen)
	s.scratch = s.scratch[:0]
}
