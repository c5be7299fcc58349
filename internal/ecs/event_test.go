package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type pinged struct{ N int }
type ponged struct{ N int }

func TestEventBus(t *testing.T) {
	b := NewEventBus()

	var got []int
	sub := Subscribe(b, func(ev pinged) { got = append(got, ev.N) })
	Subscribe(b, func(ev pinged) { got = append(got, ev.N*10) })

	var pongs int
	Subscribe(b, func(ponged) { pongs++ })

	Publish(b, pinged{N: 1})
	assert.Equal(t, []int{1, 10}, got, "handlers run in subscription order")
	assert.Equal(t, 0, pongs, "events are routed by type")

	b.Unsubscribe(sub)
	Publish(b, pinged{N: 2})
	assert.Equal(t, []int{1, 10, 20}, got)

	assert.NotPanics(t, func() { b.Unsubscribe(sub) })
	assert.NotPanics(t, func() { Publish(b, struct{}{}) })
}
