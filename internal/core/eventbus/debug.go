package eventbus

import (
	"fmt"

	"github.com/colonyops/shoplist/internal/core/event"
	"github.com/rs/zerolog"
)

// RegisterDebugLogger registers bus hooks that log all event activity.
// Publishes and subscriptions log at debug, drops at warn, subscriber panics
// at error.
func RegisterDebugLogger(bus *EventBus, logger zerolog.Logger) {
	bus.OnSubscribe(func(n int) {
		logger.Debug().Int("subscribers", n).Msg("subscriber added")
	})

	bus.OnPublish(func(ev event.Event) {
		logger.Debug().Str("event", string(ev.Kind())).Msg("event published")
	})

	bus.OnDrop(func(ev event.Event) {
		logger.Warn().Str("event", string(ev.Kind())).Msg("event dropped: bus closed")
	})

	bus.OnPanic(func(ev event.Event, recovered any) {
		logger.Error().
			Str("event", string(ev.Kind())).
			Str("panic", fmt.Sprint(recovered)).
			Msg("subscriber panicked")
	})
}
