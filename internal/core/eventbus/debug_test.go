package eventbus_test

import (
	"bytes"
	"testing"

	"github.com/colonyops/shoplist/internal/core/event"
	"github.com/colonyops/shoplist/internal/core/eventbus"
	"github.com/colonyops/shoplist/internal/core/eventbus/testbus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestRegisterDebugLogger(t *testing.T) {
	tb := testbus.New(t)

	// Register with a nop logger; must not panic.
	eventbus.RegisterDebugLogger(tb.EventBus, zerolog.Nop())

	tb.Publish(event.AddItem{ID: "x", Name: "milk"})
	tb.Publish(event.SignOut{})

	tb.AssertPublished(t, event.KindSignOut)
}

func TestRegisterDebugLogger_LogsDrops(t *testing.T) {
	var buf bytes.Buffer
	bus := eventbus.New()
	eventbus.RegisterDebugLogger(bus, zerolog.New(&buf).Level(zerolog.DebugLevel))

	bus.Close()
	bus.Publish(event.EmptyList{})

	assert.Contains(t, buf.String(), "event dropped")
	assert.Contains(t, buf.String(), `"event":"emptyList"`)
}

func TestRegisterDebugLogger_LogsSubscriptions(t *testing.T) {
	var buf bytes.Buffer
	bus := eventbus.New()
	eventbus.RegisterDebugLogger(bus, zerolog.New(&buf).Level(zerolog.DebugLevel))

	bus.Subscribe(func(event.Event) {})
	bus.Subscribe(func(event.Event) {})

	assert.Contains(t, buf.String(), "subscriber added")
	assert.Contains(t, buf.String(), `"subscribers":1`)
	assert.Contains(t, buf.String(), `"subscribers":2`)
}
