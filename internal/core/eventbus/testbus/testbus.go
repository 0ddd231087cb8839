// Package testbus provides test utilities for the event bus.
// It wraps a real EventBus with event recording and assertion helpers.
package testbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/colonyops/shoplist/internal/core/event"
	"github.com/colonyops/shoplist/internal/core/eventbus"
)

// Bus wraps a real EventBus with event recording for tests.
type Bus struct {
	*eventbus.EventBus
	cancel context.CancelFunc

	mu     sync.Mutex
	events []event.Event
}

// New creates a test bus, subscribes a recorder, and starts dispatching in a
// background goroutine. The bus is stopped when the test completes.
func New(t *testing.T) *Bus {
	t.Helper()

	bus := eventbus.New()
	ctx, cancel := context.WithCancel(context.Background())

	tb := &Bus{
		EventBus: bus,
		cancel:   cancel,
	}

	bus.Subscribe(tb.record)

	go func() { _ = bus.Start(ctx) }()

	t.Cleanup(func() {
		cancel()
	})

	return tb
}

func (tb *Bus) record(ev event.Event) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.events = append(tb.events, ev)
}

// Events returns a copy of all recorded events in dispatch order.
func (tb *Bus) Events() []event.Event {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	out := make([]event.Event, len(tb.events))
	copy(out, tb.events)
	return out
}

// Kinds returns the kinds of all recorded events in dispatch order.
func (tb *Bus) Kinds() []event.Kind {
	events := tb.Events()
	out := make([]event.Kind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind()
	}
	return out
}

// Reset clears all recorded events.
func (tb *Bus) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.events = nil
}

// WaitFor blocks until an event of the given kind is recorded or the timeout expires.
// Returns true if the event was found.
func (tb *Bus) WaitFor(kind event.Kind, timeout time.Duration) bool {
	deadline := time.After(timeout)
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for {
		if tb.has(kind) {
			return true
		}
		select {
		case <-deadline:
			return false
		case <-ticker.C:
		}
	}
}

// WaitCount blocks until at least n events are recorded or the timeout expires.
func (tb *Bus) WaitCount(n int, timeout time.Duration) bool {
	deadline := time.After(timeout)
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for {
		if len(tb.Events()) >= n {
			return true
		}
		select {
		case <-deadline:
			return false
		case <-ticker.C:
		}
	}
}

func (tb *Bus) has(kind event.Kind) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	for _, ev := range tb.events {
		if ev.Kind() == kind {
			return true
		}
	}
	return false
}

// AssertPublished asserts that an event of the given kind was recorded.
func (tb *Bus) AssertPublished(t *testing.T, kind event.Kind) {
	t.Helper()
	if !tb.WaitFor(kind, 500*time.Millisecond) {
		t.Errorf("expected event %q to be published, but it was not", kind)
	}
}

// AssertNotPublished asserts that an event of the given kind was NOT recorded
// within the given wait period.
func (tb *Bus) AssertNotPublished(t *testing.T, kind event.Kind, wait time.Duration) {
	t.Helper()
	time.Sleep(wait)
	if tb.has(kind) {
		t.Errorf("expected event %q to NOT be published, but it was", kind)
	}
}
