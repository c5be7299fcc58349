package ecs

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects the names of systems in the order they ran.
type recorder struct {
	mu  sync.Mutex
	ran []string
}

func (r *recorder) add(name string) {
	r.mu.Lock()
	r.ran = append(r.ran, name)
	r.mu.Unlock()
}

type fakeUpdate struct {
	name  string
	order int
	rec   *recorder
	err   error
	panic any
}

func (s *fakeUpdate) Name() string     { return s.name }
func (s *fakeUpdate) UpdateOrder() int { return s.order }
func (s *fakeUpdate) Update(float64) error {
	if s.panic != nil {
		panic(s.panic)
	}
	s.rec.add(s.name)
	return s.err
}

type otherUpdate struct{ fakeUpdate }

type fakeRender struct {
	name  string
	order int
	rec   *recorder
}

func (s *fakeRender) Name() string { return s.name }
func (s *fakeRender) Order() int   { return s.order }
func (s *fakeRender) Render(*ebiten.Image, float64) error {
	s.rec.add(s.name)
	return nil
}

// counterSystem increments a per-entity counter, optionally failing on one
// entity.
type counterSystem struct {
	world    *World
	parallel bool
	failOn   Entity
	panicOn  Entity
	begun    int
	ended    int
}

type counter struct{ N int }

func (s *counterSystem) Name() string              { return "counter" }
func (s *counterSystem) UpdateOrder() int          { return OrderMovement }
func (s *counterSystem) ParallelSafe() bool        { return s.parallel }
func (s *counterSystem) Entities() []Entity        { return GetEntitiesWithComponent[counter](s.world) }
func (s *counterSystem) BeginUpdate(float64) error { s.begun++; return nil }
func (s *counterSystem) EndUpdate(float64) error   { s.ended++; return nil }
func (s *counterSystem) UpdateEntity(e Entity, _ float64) error {
	if e == s.panicOn {
		panic("boom")
	}
	if e == s.failOn {
		return errors.New("bad entity")
	}
	GetComponent[counter](s.world, e).N++
	return nil
}

type disposable struct {
	fakeUpdate
	disposed *[]string
}

func (d *disposable) Dispose() { *d.disposed = append(*d.disposed, d.name) }

func spawnCounters(t *testing.T, w *World, n int) []Entity {
	t.Helper()
	out := make([]Entity, n)
	for i := range out {
		out[i] = w.CreateEntity("c")
		require.NoError(t, AddComponent(w, out[i], &counter{}))
	}
	return out
}

func TestScheduler_Register(t *testing.T) {
	s := NewScheduler(NewWorld(), DefaultOptions(), nil)
	rec := &recorder{}

	require.NoError(t, s.Register(&fakeUpdate{name: "a", rec: rec}))

	t.Run("duplicate name", func(t *testing.T) {
		err := s.Register(&fakeUpdate{name: "a", rec: rec})
		assert.ErrorIs(t, err, ErrDuplicateSystem)
	})

	t.Run("nil system", func(t *testing.T) {
		assert.ErrorIs(t, s.Register(nil), ErrInvalidSystem)
	})

	t.Run("system with no phase", func(t *testing.T) {
		assert.ErrorIs(t, s.Register(nameOnly("x")), ErrInvalidSystem)
	})

	t.Run("lookup and unregister", func(t *testing.T) {
		sys, ok := s.Lookup("a")
		require.True(t, ok)
		assert.Equal(t, "a", sys.Name())

		assert.Same(t, sys, s.Unregister("a"))
		assert.Nil(t, s.Unregister("a"))
		_, ok = s.Lookup("a")
		assert.False(t, ok)
	})
}

type nameOnly string

func (n nameOnly) Name() string { return string(n) }

func TestScheduler_RegisterFactory(t *testing.T) {
	s := NewScheduler(NewWorld(), DefaultOptions(), nil)
	cause := errors.New("missing asset")

	err := s.RegisterFactory("broken", func() (System, error) { return nil, cause })

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSystemConstruction)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "broken")
	_, ok := s.Lookup("broken")
	assert.False(t, ok)

	require.NoError(t, s.RegisterFactory("ok", func() (System, error) {
		return &fakeUpdate{name: "ok", rec: &recorder{}}, nil
	}))
}

func TestScheduler_DeterministicOrder(t *testing.T) {
	s := NewScheduler(NewWorld(), DefaultOptions(), nil)
	rec := &recorder{}

	require.NoError(t, s.Register(&fakeUpdate{name: "late", order: OrderLate, rec: rec}))
	require.NoError(t, s.Register(&fakeUpdate{name: "collide", order: OrderCollision, rec: rec}))
	require.NoError(t, s.Register(&fakeUpdate{name: "move-a", order: OrderMovement, rec: rec}))
	require.NoError(t, s.Register(&fakeUpdate{name: "move-b", order: OrderMovement, rec: rec}))
	require.NoError(t, s.Register(&fakeRender{name: "overlay", order: RenderOrderOverlay, rec: rec}))
	require.NoError(t, s.Register(&fakeRender{name: "world", order: RenderOrderWorld, rec: rec}))

	want := []string{"move-a", "move-b", "collide", "late"}
	assert.Equal(t, want, s.UpdateOrderNames())
	assert.Equal(t, []string{"world", "overlay"}, s.RenderOrderNames())

	for frame := 0; frame < 3; frame++ {
		rec.ran = nil
		require.NoError(t, s.Update(1.0/60))
		require.NoError(t, s.Render(nil, 1.0/60))
		assert.Equal(t, append(append([]string{}, want...), "world", "overlay"), rec.ran, "frame %d", frame)
	}
	assert.Equal(t, uint64(3), s.Frame())
}

func TestScheduler_FaultPolicy(t *testing.T) {
	cause := errors.New("stuck")

	setup := func(policy FaultPolicy) (*Scheduler, *recorder, Entity) {
		w := NewWorld()
		opts := DefaultOptions()
		opts.FaultPolicy = policy
		s := NewScheduler(w, opts, nil)
		rec := &recorder{}
		require.NoError(t, s.Register(&fakeUpdate{name: "first", order: 0, rec: rec}))
		require.NoError(t, s.Register(&fakeUpdate{name: "failing", order: 1, rec: rec, err: cause}))
		require.NoError(t, s.Register(&fakeUpdate{name: "after", order: 2, rec: rec}))
		doomed := w.CreateEntity("doomed")
		w.QueueDestroy(doomed)
		return s, rec, doomed
	}

	t.Run("propagate aborts the frame", func(t *testing.T) {
		s, rec, doomed := setup(FaultPropagate)

		err := s.Update(0.016)

		var se *SystemError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "failing", se.System)
		assert.Equal(t, PhaseUpdate, se.Phase)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, []string{"first", "failing"}, rec.ran)
		assert.True(t, s.World().Alive(doomed), "aborted frame does not flush")
		assert.Equal(t, uint64(0), s.Frame())
	})

	t.Run("skip continues", func(t *testing.T) {
		s, rec, doomed := setup(FaultSkip)

		require.NoError(t, s.Update(0.016))

		assert.Equal(t, []string{"first", "failing", "after"}, rec.ran)
		assert.False(t, s.World().Alive(doomed))
		assert.Equal(t, uint64(1), s.Frame())
	})

	t.Run("empty policy defaults to propagate", func(t *testing.T) {
		s := NewScheduler(NewWorld(), Options{}, nil)
		assert.Equal(t, FaultPropagate, s.Options().FaultPolicy)
	})
}

func TestScheduler_PanicRecovered(t *testing.T) {
	s := NewScheduler(NewWorld(), DefaultOptions(), nil)
	require.NoError(t, s.Register(&fakeUpdate{name: "panicky", panic: "kaboom", rec: &recorder{}}))

	var err error
	require.NotPanics(t, func() { err = s.Update(0.016) })

	var se *SystemError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "panicky", se.System)
	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "kaboom", pe.Value)
}

func TestScheduler_Suppressions(t *testing.T) {
	s := NewScheduler(NewWorld(), DefaultOptions(), nil)
	rec := &recorder{}
	require.NoError(t, s.Register(&fakeUpdate{name: "keep", rec: rec}))
	require.NoError(t, s.Register(&fakeUpdate{name: "by-name", rec: rec}))
	require.NoError(t, s.Register(&otherUpdate{fakeUpdate{name: "by-type", rec: rec}}))

	sup := NewSuppressions().DisableName("by-name")
	DisableType[*otherUpdate](sup)
	assert.Equal(t, 2, sup.Len())

	s.SetSuppressions(sup)
	require.NoError(t, s.Update(0.016))
	assert.Equal(t, []string{"keep"}, rec.ran)

	t.Run("systems stay registered", func(t *testing.T) {
		s.SetSuppressions(nil)
		rec.ran = nil
		require.NoError(t, s.Update(0.016))
		assert.Equal(t, []string{"keep", "by-name", "by-type"}, rec.ran)
	})

	t.Run("name rules can be lifted", func(t *testing.T) {
		assert.True(t, sup.NameDisabled("by-name"))
		sup.EnableName("by-name")
		assert.False(t, sup.NameDisabled("by-name"))

		s.SetSuppressions(sup)
		rec.ran = nil
		require.NoError(t, s.Update(0.016))
		assert.Equal(t, []string{"keep", "by-name"}, rec.ran)
	})
}

func TestScheduler_EntitySystem(t *testing.T) {
	t.Run("sequential below threshold", func(t *testing.T) {
		w := NewWorld()
		opts := DefaultOptions()
		opts.ParallelEntityThreshold = 1000
		s := NewScheduler(w, opts, nil)
		sys := &counterSystem{world: w, parallel: true}
		require.NoError(t, s.Register(sys))
		ents := spawnCounters(t, w, 10)

		require.NoError(t, s.Update(0.016))

		for _, e := range ents {
			assert.Equal(t, 1, GetComponent[counter](w, e).N)
		}
		assert.Equal(t, 1, sys.begun)
		assert.Equal(t, 1, sys.ended)
		stats := s.Stats()
		require.Len(t, stats, 1)
		assert.Equal(t, 1, stats[0].Workers)
		assert.Equal(t, 10, stats[0].Entities)
	})

	t.Run("parallel above threshold", func(t *testing.T) {
		w := NewWorld()
		opts := Options{
			EnableParallelExecution: true,
			ParallelEntityThreshold: 16,
			MaxDegreeOfParallelism:  4,
		}
		s := NewScheduler(w, opts, nil)
		require.NoError(t, s.Register(&counterSystem{world: w, parallel: true}))
		ents := spawnCounters(t, w, 500)

		for i := 0; i < 3; i++ {
			require.NoError(t, s.Update(0.016))
		}

		for _, e := range ents {
			require.Equal(t, 3, GetComponent[counter](w, e).N, "entity %s", e)
		}
		assert.Equal(t, 4, s.Stats()[0].Workers)
	})

	t.Run("not parallel safe stays sequential", func(t *testing.T) {
		w := NewWorld()
		s := NewScheduler(w, Options{EnableParallelExecution: true, MaxDegreeOfParallelism: 4}, nil)
		require.NoError(t, s.Register(&counterSystem{world: w, parallel: false}))
		spawnCounters(t, w, 100)

		require.NoError(t, s.Update(0.016))
		assert.Equal(t, 1, s.Stats()[0].Workers)
	})

	t.Run("worker error carries the entity", func(t *testing.T) {
		w := NewWorld()
		s := NewScheduler(w, Options{EnableParallelExecution: true, MaxDegreeOfParallelism: 4}, nil)
		ents := spawnCounters(t, w, 64)
		require.NoError(t, s.Register(&counterSystem{world: w, parallel: true, failOn: ents[40]}))

		err := s.Update(0.016)

		var se *SystemError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, ents[40], se.Entity)
		assert.Equal(t, "counter", se.System)
	})

	t.Run("worker panic is recovered", func(t *testing.T) {
		w := NewWorld()
		s := NewScheduler(w, Options{EnableParallelExecution: true, MaxDegreeOfParallelism: 4}, nil)
		ents := spawnCounters(t, w, 64)
		require.NoError(t, s.Register(&counterSystem{world: w, parallel: true, panicOn: ents[10]}))

		var err error
		require.NotPanics(t, func() { err = s.Update(0.016) })

		var se *SystemError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, ents[10], se.Entity)
		var pe *PanicError
		assert.ErrorAs(t, err, &pe)
	})
}

func TestScheduler_Close(t *testing.T) {
	s := NewScheduler(NewWorld(), DefaultOptions(), nil)
	var disposed []string
	require.NoError(t, s.Register(&disposable{fakeUpdate{name: "a", rec: &recorder{}}, &disposed}))
	require.NoError(t, s.Register(&fakeUpdate{name: "plain", rec: &recorder{}}))
	require.NoError(t, s.Register(&disposable{fakeUpdate{name: "b", rec: &recorder{}}, &disposed}))

	s.Close()

	assert.Equal(t, []string{"b", "a"}, disposed)
}

func TestParallelFor(t *testing.T) {
	t.Run("covers every index once", func(t *testing.T) {
		for _, workers := range []int{1, 3, 8, 100} {
			hits := make([]int, 37)
			err := ParallelFor(context.Background(), len(hits), workers, func(_ context.Context, lo, hi int) error {
				for i := lo; i < hi; i++ {
					hits[i]++
				}
				return nil
			})
			require.NoError(t, err)
			for i, h := range hits {
				assert.Equal(t, 1, h, "workers=%d index=%d", workers, i)
			}
		}
	})

	t.Run("empty range", func(t *testing.T) {
		called := false
		err := ParallelFor(context.Background(), 0, 4, func(context.Context, int, int) error {
			called = true
			return nil
		})
		assert.NoError(t, err)
		assert.False(t, called)
	})

	t.Run("first error returned", func(t *testing.T) {
		cause := errors.New("chunk failed")
		err := ParallelFor(context.Background(), 10, 2, func(_ context.Context, lo, _ int) error {
			if lo == 0 {
				return cause
			}
			return nil
		})
		assert.ErrorIs(t, err, cause)
	})
}

func TestPartition(t *testing.T) {
	spans := partition(10, 3)
	assert.Equal(t, []span{{0, 4}, {4, 7}, {7, 10}}, spans)
	assert.Len(t, partition(2, 8), 2)
	assert.Nil(t, partition(0, 4))
}

func TestGather(t *testing.T) {
	ents := make([]Entity, 100)
	for i := range ents {
		ents[i] = newEntity(uint32(i), 1)
	}
	idx := func(e Entity) (int, error) { return int(e.Index()) * 2, nil }

	seq, err := Gather(context.Background(), ents, 1, idx)
	require.NoError(t, err)
	par, err := Gather(context.Background(), ents, 8, idx)
	require.NoError(t, err)

	assert.Equal(t, seq, par, "results are index-aligned regardless of workers")
	assert.Equal(t, 198, par[99])

	_, err = Gather(context.Background(), ents, 4, func(e Entity) (int, error) {
		if e.Index() == 50 {
			return 0, errors.New("nope")
		}
		return 0, nil
	})
	assert.Error(t, err)
}

func TestScheduler_Systems(t *testing.T) {
	s := NewScheduler(NewWorld(), DefaultOptions(), nil)
	rec := &recorder{}
	require.NoError(t, s.Register(&fakeUpdate{name: "b", order: 5, rec: rec}))
	require.NoError(t, s.Register(&fakeRender{name: "a", rec: rec}))

	systems := s.Systems()
	require.Len(t, systems, 2)
	assert.Equal(t, "b", systems[0].Name())
	assert.Equal(t, "a", systems[1].Name())
}
