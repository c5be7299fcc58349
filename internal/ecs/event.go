package ecs

import "reflect"

// EventBus is a synchronous, typed publish/subscribe bus. Handlers run on
// the publisher's goroutine in subscription order. Like the World, it is
// meant for the frame goroutine.
type EventBus struct {
	handlers map[reflect.Type][]any
}

// NewEventBus creates an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{handlers: make(map[reflect.Type][]any)}
}

// Subscription identifies a handler for Unsubscribe.
type Subscription struct {
	typ reflect.Type
	id  *int
}

// Subscribe registers fn for events of type T.
func Subscribe[T any](b *EventBus, fn func(T)) Subscription {
	t := reflect.TypeFor[T]()
	h := &handler[T]{fn: fn, id: new(int)}
	b.handlers[t] = append(b.handlers[t], h)
	return Subscription{typ: t, id: h.id}
}

// Unsubscribe removes a handler. Unknown subscriptions are ignored.
func (b *EventBus) Unsubscribe(s Subscription) {
	hs := b.handlers[s.typ]
	for i, h := range hs {
		if h.(identified).key() == s.id {
			b.handlers[s.typ] = append(hs[:i:i], hs[i+1:]...)
			return
		}
	}
}

// Publish delivers ev to every handler subscribed to T.
func Publish[T any](b *EventBus, ev T) {
	for _, h := range b.handlers[reflect.TypeFor[T]()] {
		h.(*handler[T]).fn(ev)
	}
}

type identified interface{ key() *int }

type handler[T any] struct {
	fn func(T)
	id *int
}

func (h *handler[T]) key() *int { return h.id }
