package eventbus

import (
	"sync"

	"github.com/colonyops/shoplist/internal/core/event"
)

// hooks holds observer callbacks. They never influence delivery.
type hooks struct {
	mu          sync.RWMutex
	onPublish   []func(event.Event)
	onDrop      []func(event.Event)
	onSubscribe []func(int)
	onPanic     []func(event.Event, any)
}

// OnPublish registers a hook that fires after an event is enqueued.
func (bus *EventBus) OnPublish(fn func(event.Event)) {
	bus.hooks.mu.Lock()
	bus.hooks.onPublish = append(bus.hooks.onPublish, fn)
	bus.hooks.mu.Unlock()
}

// OnDrop registers a hook that fires when an event is published to a closed bus.
func (bus *EventBus) OnDrop(fn func(event.Event)) {
	bus.hooks.mu.Lock()
	bus.hooks.onDrop = append(bus.hooks.onDrop, fn)
	bus.hooks.mu.Unlock()
}

// OnSubscribe registers a hook that fires after a subscriber is registered.
// The hook receives the subscriber count including the new one.
func (bus *EventBus) OnSubscribe(fn func(int)) {
	bus.hooks.mu.Lock()
	bus.hooks.onSubscribe = append(bus.hooks.onSubscribe, fn)
	bus.hooks.mu.Unlock()
}

// OnPanic registers a hook that fires when a subscriber panics.
func (bus *EventBus) OnPanic(fn func(event.Event, any)) {
	bus.hooks.mu.Lock()
	bus.hooks.onPanic = append(bus.hooks.onPanic, fn)
	bus.hooks.mu.Unlock()
}

func (bus *EventBus) runOnPublish(ev event.Event) {
	bus.hooks.mu.RLock()
	hooks := make([]func(event.Event), len(bus.hooks.onPublish))
	copy(hooks, bus.hooks.onPublish)
	bus.hooks.mu.RUnlock()
	for _, fn := range hooks {
		fn(ev)
	}
}

func (bus *EventBus) runOnDrop(ev event.Event) {
	bus.hooks.mu.RLock()
	hooks := make([]func(event.Event), len(bus.hooks.onDrop))
	copy(hooks, bus.hooks.onDrop)
	bus.hooks.mu.RUnlock()
	for _, fn := range hooks {
		fn(ev)
	}
}

func (bus *EventBus) runOnSubscribe(n int) {
	bus.hooks.mu.RLock()
	hooks := make([]func(int), len(bus.hooks.onSubscribe))
	copy(hooks, bus.hooks.onSubscribe)
	bus.hooks.mu.RUnlock()
	for _, fn := range hooks {
		fn(n)
	}
}

func (bus *EventBus) runOnPanic(ev event.Event, recovered any) {
	bus.hooks.mu.RLock()
	hooks := make([]func(event.Event, any), len(bus.hooks.onPanic))
	copy(hooks, bus.hooks.onPanic)
	bus.hooks.mu.RUnlock()
	for _, fn := range hooks {
		func() {
			defer func() { recover() }() //nolint:errcheck
			fn(ev, recovered)
		}()
	}
}
