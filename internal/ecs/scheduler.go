package ecs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// SystemStats is what the scheduler measured for one system in the last
// frame it ran.
type SystemStats struct {
	Name     string
	Phase    Phase
	Order    int
	Duration time.Duration
	Entities int
	Workers  int // 1 for sequential runs
}

type entry struct {
	sys    System
	name   string
	seq    int
	update bool
	render bool
}

type updateOrdered interface {
	UpdateOrder() int
}

// Scheduler runs registered systems once per frame: update systems in
// ascending UpdateOrder, then the world's destroy queue is flushed, then
// render systems in ascending Order. Ties keep registration order, so the
// sequence is identical from frame to frame.
type Scheduler struct {
	world   *World
	opts    Options
	log     *zap.Logger
	entries []*entry
	byName  map[string]*entry
	updates []*entry
	renders []*entry
	sorted  bool
	seq     int

	suppressions *Suppressions
	stats        map[string]SystemStats
	frame        uint64
}

// NewScheduler creates a scheduler over w.
func NewScheduler(w *World, opts Options, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.FaultPolicy == "" {
		opts.FaultPolicy = FaultPropagate
	}
	return &Scheduler{
		world:   w,
		opts:    opts,
		log:     log,
		entries: make([]*entry, 0, 16),
		byName:  make(map[string]*entry, 16),
		stats:   make(map[string]SystemStats, 16),
	}
}

// World returns the world the scheduler drives.
func (s *Scheduler) World() *World { return s.world }

// Options returns the active options.
func (s *Scheduler) Options() Options { return s.opts }

// Frame returns the number of completed update phases.
func (s *Scheduler) Frame() uint64 { return s.frame }

// Register adds a system. It must implement UpdateSystem, EntitySystem or
// RenderSystem (or several) and carry a unique name.
func (s *Scheduler) Register(sys System) error {
	if sys == nil {
		return fmt.Errorf("register nil system: %w", ErrInvalidSystem)
	}
	name := sys.Name()
	_, isUpdate := sys.(UpdateSystem)
	_, isEntity := sys.(EntitySystem)
	_, isRender := sys.(RenderSystem)
	if !isUpdate && !isEntity && !isRender {
		return fmt.Errorf("register %s (%T): %w", name, sys, ErrInvalidSystem)
	}
	if _, dup := s.byName[name]; dup {
		return fmt.Errorf("register %s: %w", name, ErrDuplicateSystem)
	}
	en := &entry{
		sys:    sys,
		name:   name,
		seq:    s.seq,
		update: isUpdate || isEntity,
		render: isRender,
	}
	s.seq++
	s.entries = append(s.entries, en)
	s.byName[name] = en
	s.sorted = false
	s.log.Debug("system registered",
		zap.String("system", name),
		zap.Bool("update", en.update),
		zap.Bool("render", en.render),
	)
	return nil
}

// RegisterFactory builds a system and registers it. A factory error is a
// startup failure and is wrapped in ErrSystemConstruction.
func (s *Scheduler) RegisterFactory(name string, factory func() (System, error)) error {
	sys, err := factory()
	if err != nil {
		return fmt.Errorf("construct %s: %w: %w", name, ErrSystemConstruction, err)
	}
	return s.Register(sys)
}

// Unregister removes a system by name and returns it, or nil.
func (s *Scheduler) Unregister(name string) System {
	en, ok := s.byName[name]
	if !ok {
		return nil
	}
	delete(s.byName, name)
	delete(s.stats, statsKey(name, PhaseUpdate))
	delete(s.stats, statsKey(name, PhaseRender))
	for i, e := range s.entries {
		if e == en {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
	s.sorted = false
	return en.sys
}

// Lookup returns the system registered under name.
func (s *Scheduler) Lookup(name string) (System, bool) {
	en, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return en.sys, true
}

// Systems returns every registered system in registration order.
func (s *Scheduler) Systems() []System {
	out := make([]System, len(s.entries))
	for i, en := range s.entries {
		out[i] = en.sys
	}
	return out
}

// SetSuppressions installs the active scene's suppression set. Pass nil
// when the scene exits.
func (s *Scheduler) SetSuppressions(sup *Suppressions) {
	s.suppressions = sup
}

// UpdateOrderNames returns update system names in execution order.
func (s *Scheduler) UpdateOrderNames() []string {
	s.ensureSorted()
	out := make([]string, len(s.updates))
	for i, en := range s.updates {
		out[i] = en.name
	}
	return out
}

// RenderOrderNames returns render system names in execution order.
func (s *Scheduler) RenderOrderNames() []string {
	s.ensureSorted()
	out := make([]string, len(s.renders))
	for i, en := range s.renders {
		out[i] = en.name
	}
	return out
}

// Stats returns the last measured stats in update-then-render order.
func (s *Scheduler) Stats() []SystemStats {
	s.ensureSorted()
	out := make([]SystemStats, 0, len(s.stats))
	for _, en := range s.updates {
		if st, ok := s.stats[statsKey(en.name, PhaseUpdate)]; ok {
			out = append(out, st)
		}
	}
	for _, en := range s.renders {
		if st, ok := s.stats[statsKey(en.name, PhaseRender)]; ok {
			out = append(out, st)
		}
	}
	return out
}

func (s *Scheduler) ensureSorted() {
	if s.sorted {
		return
	}
	s.updates = s.updates[:0]
	s.renders = s.renders[:0]
	for _, en := range s.entries {
		if en.update {
			s.updates = append(s.updates, en)
		}
		if en.render {
			s.renders = append(s.renders, en)
		}
	}
	sort.SliceStable(s.updates, func(i, j int) bool {
		return s.updates[i].sys.(updateOrdered).UpdateOrder() < s.updates[j].sys.(updateOrdered).UpdateOrder()
	})
	sort.SliceStable(s.renders, func(i, j int) bool {
		return s.renders[i].sys.(RenderSystem).Order() < s.renders[j].sys.(RenderSystem).Order()
	})
	s.sorted = true
}

// Update runs the update phase. Under FaultPropagate the first failing
// system aborts the frame and its *SystemError is returned; under FaultSkip
// failures are logged and the frame continues.
func (s *Scheduler) Update(dt float64) error {
	s.ensureSorted()
	for _, en := range s.updates {
		if s.suppressions.Suppressed(en.sys) {
			continue
		}
		if err := s.runUpdate(en, dt); err != nil {
			s.log.Error("system update failed",
				zap.String("system", en.name),
				zap.Uint64("frame", s.frame),
				zap.String("policy", string(s.opts.FaultPolicy)),
				zap.Error(err),
			)
			if s.opts.FaultPolicy != FaultSkip {
				return err
			}
		}
	}
	s.world.FlushDestroyQueue()
	s.frame++
	return nil
}

// Render runs the render phase with the same fault policy as Update.
func (s *Scheduler) Render(screen *ebiten.Image, dt float64) error {
	s.ensureSorted()
	for _, en := range s.renders {
		if s.suppressions.Suppressed(en.sys) {
			continue
		}
		if err := s.runRender(en, screen, dt); err != nil {
			s.log.Error("system render failed",
				zap.String("system", en.name),
				zap.Uint64("frame", s.frame),
				zap.Error(err),
			)
			if s.opts.FaultPolicy != FaultSkip {
				return err
			}
		}
	}
	return nil
}

// Close disposes every registered Disposer in reverse registration order.
func (s *Scheduler) Close() {
	for i := len(s.entries) - 1; i >= 0; i-- {
		if d, ok := s.entries[i].sys.(Disposer); ok {
			d.Dispose()
		}
	}
}

func (s *Scheduler) runUpdate(en *entry, dt float64) (err error) {
	start := time.Now()
	st := SystemStats{Name: en.name, Phase: PhaseUpdate, Order: en.sys.(updateOrdered).UpdateOrder(), Workers: 1}
	defer func() {
		if r := recover(); r != nil {
			err = &SystemError{System: en.name, Phase: PhaseUpdate, Err: &PanicError{Value: r}}
		}
		st.Duration = time.Since(start)
		s.stats[statsKey(en.name, PhaseUpdate)] = st
	}()

	if es, ok := en.sys.(EntitySystem); ok {
		return s.runEntitySystem(en, es, dt, &st)
	}
	if err := en.sys.(UpdateSystem).Update(dt); err != nil {
		return wrapSystemError(en.name, PhaseUpdate, NoEntity, err)
	}
	return nil
}

func (s *Scheduler) runEntitySystem(en *entry, es EntitySystem, dt float64, st *SystemStats) error {
	hooks, _ := es.(UpdateHooks)
	if hooks != nil {
		if err := hooks.BeginUpdate(dt); err != nil {
			return wrapSystemError(en.name, PhaseUpdate, NoEntity, err)
		}
	}

	entities := es.Entities()
	st.Entities = len(entities)

	if s.parallel(es, len(entities)) {
		workers := s.opts.Workers()
		if workers > len(entities) {
			workers = len(entities)
		}
		st.Workers = workers
		err := ParallelFor(context.Background(), len(entities), workers, func(ctx context.Context, lo, hi int) error {
			return s.processChunk(ctx, en.name, es, entities[lo:hi], dt)
		})
		if err != nil {
			return err
		}
	} else if err := s.processChunk(context.Background(), en.name, es, entities, dt); err != nil {
		return err
	}

	if hooks != nil {
		if err := hooks.EndUpdate(dt); err != nil {
			return wrapSystemError(en.name, PhaseUpdate, NoEntity, err)
		}
	}
	return nil
}

func (s *Scheduler) parallel(es EntitySystem, n int) bool {
	return s.opts.EnableParallelExecution &&
		n > s.opts.ParallelEntityThreshold &&
		s.opts.Workers() > 1 &&
		es.ParallelSafe()
}

// processChunk runs UpdateEntity over entities, converting panics into
// errors so a faulting worker goroutine cannot take the process down.
func (s *Scheduler) processChunk(ctx context.Context, name string, es EntitySystem, entities []Entity, dt float64) (err error) {
	current := NoEntity
	defer func() {
		if r := recover(); r != nil {
			err = &SystemError{System: name, Phase: PhaseUpdate, Entity: current, Err: &PanicError{Value: r}}
		}
	}()
	for _, e := range entities {
		if ctx.Err() != nil {
			return nil
		}
		current = e
		if err := es.UpdateEntity(e, dt); err != nil {
			return wrapSystemError(name, PhaseUpdate, e, err)
		}
	}
	return nil
}

func (s *Scheduler) runRender(en *entry, screen *ebiten.Image, dt float64) (err error) {
	rs := en.sys.(RenderSystem)
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = &SystemError{System: en.name, Phase: PhaseRender, Err: &PanicError{Value: r}}
		}
		s.stats[statsKey(en.name, PhaseRender)] = SystemStats{
			Name:     en.name,
			Phase:    PhaseRender,
			Order:    rs.Order(),
			Duration: time.Since(start),
			Workers:  1,
		}
	}()
	if err := rs.Render(screen, dt); err != nil {
		return wrapSystemError(en.name, PhaseRender, NoEntity, err)
	}
	return nil
}

func statsKey(name string, phase Phase) string {
	return name + "/" + string(phase)
}

func wrapSystemError(name string, phase Phase, e Entity, err error) error {
	var se *SystemError
	if errors.As(err, &se) {
		return err
	}
	return &SystemError{System: name, Phase: phase, Entity: e, Err: err}
}
