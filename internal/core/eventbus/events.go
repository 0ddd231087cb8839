// Package eventbus merges event producers into one ordered stream and
// dispatches it to subscribers from a single goroutine.
//
// Each producer's relative order is preserved. Interleaving across producers
// follows arrival order at the queue. Nothing is buffered-and-dropped: the
// queue is unbounded and only a closed bus refuses events.
package eventbus

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/colonyops/shoplist/internal/core/event"
)

// Handler receives dispatched events. Handlers run on the dispatch goroutine
// and must not block on the bus itself.
type Handler func(event.Event)

// EventBus is an unbounded FIFO of events with a single dispatch loop.
type EventBus struct {
	queue *queue
	hooks hooks

	subsMu sync.RWMutex
	subs   []Handler

	// inflight counts queued-but-undispatched events plus open merged sources.
	inflight atomic.Int64
}

// New creates an empty bus. Call Start to begin dispatching.
func New() *EventBus {
	return &EventBus{queue: newQueue()}
}

// Subscribe registers fn for every event. Subscribers are called in
// registration order.
func (bus *EventBus) Subscribe(fn Handler) {
	bus.subsMu.Lock()
	bus.subs = append(bus.subs, fn)
	n := len(bus.subs)
	bus.subsMu.Unlock()
	bus.runOnSubscribe(n)
}

// Publish enqueues ev. Safe from any goroutine. Events published after Close
// are reported to OnDrop hooks and discarded.
func (bus *EventBus) Publish(ev event.Event) {
	bus.inflight.Add(1)
	if !bus.queue.Enqueue(ev) {
		bus.inflight.Add(-1)
		bus.runOnDrop(ev)
		return
	}
	bus.runOnPublish(ev)
}

// Merge forwards every event from each source into the bus, one goroutine per
// source, until the source closes or ctx is cancelled.
func (bus *EventBus) Merge(ctx context.Context, sources ...<-chan event.Event) {
	for _, src := range sources {
		if src == nil {
			continue
		}
		bus.inflight.Add(1)
		go func(src <-chan event.Event) {
			defer bus.inflight.Add(-1)
			for {
				select {
				case <-ctx.Done():
					return
				case ev, ok := <-src:
					if !ok {
						return
					}
					bus.Publish(ev)
				}
			}
		}(src)
	}
}

// Start runs the dispatch loop until ctx is cancelled or the bus is closed
// and drained. It must be called from exactly one goroutine.
func (bus *EventBus) Start(ctx context.Context) error {
	for {
		if ev, ok := bus.queue.TryDequeue(); ok {
			bus.dispatch(ev)
			continue
		}

		select {
		case <-ctx.Done():
			bus.queue.Close()
			return ctx.Err()
		case <-bus.queue.Wait():
			if bus.queue.Closed() && bus.queue.Len() == 0 {
				return nil
			}
		}
	}
}

// Close stops accepting events. Start returns once the queue is drained.
func (bus *EventBus) Close() {
	bus.queue.Close()
}

// Idle reports whether no event is queued, being dispatched, or expected from
// an open merged source.
func (bus *EventBus) Idle() bool {
	return bus.inflight.Load() == 0
}

// WaitIdle blocks until the bus is idle or ctx is done.
func (bus *EventBus) WaitIdle(ctx context.Context) error {
	ticker := time.NewTicker(2 * time.Millisecond)
	defer ticker.Stop()

	for !bus.Idle() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

func (bus *EventBus) dispatch(ev event.Event) {
	defer bus.inflight.Add(-1)

	bus.subsMu.RLock()
	subs := make([]Handler, len(bus.subs))
	copy(subs, bus.subs)
	bus.subsMu.RUnlock()

	for _, fn := range subs {
		bus.call(fn, ev)
	}
}

func (bus *EventBus) call(fn Handler, ev event.Event) {
	defer func() {
		if r := recover(); r != nil {
			bus.runOnPanic(ev, r)
		}
	}()
	fn(ev)
}
