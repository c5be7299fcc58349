package ecs

import (
	"context"
	"testing"

	"github.com/younwookim/engine2d/internal/domain/geom"
)

const benchEntities = 100_000

// newBenchWorld fills a world with movers; every fourth one also has health
// and every eighth is inactive.
func newBenchWorld(b *testing.B) *World {
	b.Helper()
	w := NewWorld()
	for i := 0; i < benchEntities; i++ {
		e := w.CreateEntity("")
		_ = AddComponent(w, e, NewTransform(float64(i), float64(i)))
		_ = AddComponent(w, e, &Velocity{geom.Vec2{X: 1, Y: 1}})
		if i%4 == 0 {
			_ = AddComponent(w, e, &health{Current: 100, Max: 100})
		}
		if i%8 == 0 {
			w.SetActive(e, false)
		}
	}
	return w
}

// Case 1: one component

func BenchmarkSingleColumn_Each(b *testing.B) {
	w := newBenchWorld(b)
	b.ResetTimer()
	var sum float64
	for n := 0; n < b.N; n++ {
		sum = 0
		Each(w, func(_ Entity, t *Transform) {
			sum += t.Position.X
		})
	}
	_ = sum
}

func BenchmarkSingleColumn_Store(b *testing.B) {
	w := newBenchWorld(b)
	store := StoreOf[Transform](w)
	b.ResetTimer()
	var sum float64
	for n := 0; n < b.N; n++ {
		sum = 0
		store.Each(func(_ Entity, t *Transform) {
			sum += t.Position.X
		})
	}
	_ = sum
}

// Case 2: two components joined

func BenchmarkMultiColumn_Each2(b *testing.B) {
	w := newBenchWorld(b)
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		Each2(w, func(_ Entity, v *Velocity, t *Transform) {
			t.Position = t.Position.Add(v.Scale(1.0 / 60))
		})
	}
}

func BenchmarkMultiColumn_Query2(b *testing.B) {
	w := newBenchWorld(b)
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		for _, e := range Query2[Velocity, Transform](w) {
			v := GetComponent[Velocity](w, e)
			t := GetComponent[Transform](w, e)
			t.Position = t.Position.Add(v.Scale(1.0 / 60))
		}
	}
}

func BenchmarkMultiColumn_ParallelFor(b *testing.B) {
	w := newBenchWorld(b)
	opts := DefaultOptions()
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		entities := Query2[Velocity, Transform](w)
		err := ParallelFor(context.Background(), len(entities), opts.Workers(), func(_ context.Context, lo, hi int) error {
			for _, e := range entities[lo:hi] {
				v := GetComponent[Velocity](w, e)
				t := GetComponent[Transform](w, e)
				t.Position = t.Position.Add(v.Scale(1.0 / 60))
			}
			return nil
		})
		if err != nil {
			b.Fatal(err)
		}
	}
}

// Case 3: sparse component filter

func BenchmarkFilter_Each2(b *testing.B) {
	w := newBenchWorld(b)
	b.ResetTimer()
	var count int
	for n := 0; n < b.N; n++ {
		count = 0
		Each2(w, func(_ Entity, h *health, _ *Transform) {
			if h.Current > 50 {
				count++
			}
		})
	}
	_ = count
}

func BenchmarkFilter_Lookup(b *testing.B) {
	w := newBenchWorld(b)
	movers := GetEntitiesWithComponent[Transform](w)
	b.ResetTimer()
	var count int
	for n := 0; n < b.N; n++ {
		count = 0
		for _, e := range movers {
			if h := GetComponent[health](w, e); h != nil && h.Current > 50 {
				count++
			}
		}
	}
	_ = count
}
