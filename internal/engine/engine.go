// Package engine wires the event bus, reducer, snapshot store, and sync
// projector into the running application.
//
// Every event on the bus is folded by a single subscriber, so state has one
// writer. After a fold that changes state the snapshot is persisted and
// change listeners run; effects requested by the fold are then handed to the
// projector without waiting on their outcome. Sign-up and sign-in view
// events are routed to the projector and their result streams are merged
// back into the bus.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/colonyops/shoplist/internal/core/event"
	"github.com/colonyops/shoplist/internal/core/eventbus"
	"github.com/colonyops/shoplist/internal/core/fsio"
	"github.com/colonyops/shoplist/internal/core/grocery"
	"github.com/colonyops/shoplist/internal/core/logging"
	"github.com/colonyops/shoplist/internal/core/reducer"
	"github.com/rs/zerolog"
)

// Projector is the remote side of the engine.
type Projector interface {
	SignUp(ctx context.Context, email, password string) <-chan event.Event
	SignIn(ctx context.Context, email, password string) <-chan event.Event
	SyncEvent(ctx context.Context, ev event.Event, state grocery.AppState) *fsio.Outcome
	SaveNewUserState(ctx context.Context, state grocery.AppState) *fsio.Outcome
	ClearItems(ctx context.Context, creds grocery.Credentials) *fsio.Outcome
	Idle() bool
}

// Saver persists state snapshots.
type Saver interface {
	Save(ctx context.Context, state grocery.AppState) error
}

// ChangeFunc observes a new state after a fold that changed it.
type ChangeFunc func(grocery.AppState)

// StatusFunc observes sign-in and sign-up failures.
type StatusFunc func(event.SignInStatusChange)

// Option configures an Engine.
type Option func(*Engine)

// WithOnChange registers fn as a change listener.
func WithOnChange(fn ChangeFunc) Option {
	return func(e *Engine) {
		e.onChange = append(e.onChange, fn)
	}
}

// WithOnStatus registers fn as a sign-in status listener.
func WithOnStatus(fn StatusFunc) Option {
	return func(e *Engine) {
		e.onStatus = append(e.onStatus, fn)
	}
}

// Engine owns the current application state.
type Engine struct {
	bus       *eventbus.EventBus
	projector Projector
	store     Saver
	log       zerolog.Logger

	ctx context.Context

	mu       sync.RWMutex
	state    grocery.AppState
	onChange []ChangeFunc
	onStatus []StatusFunc
}

// New creates an Engine starting from initial and subscribes it to bus.
// Events published before Start are queued, not lost.
func New(bus *eventbus.EventBus, projector Projector, store Saver, initial grocery.AppState, log zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		bus:       bus,
		projector: projector,
		store:     store,
		log:       logging.For(log, "engine"),
		ctx:       context.Background(),
		state:     initial,
	}
	for _, opt := range opts {
		opt(e)
	}

	bus.Subscribe(e.handle)
	return e
}

// Start runs the bus dispatch loop until ctx is cancelled or the bus is closed.
func (e *Engine) Start(ctx context.Context) error {
	e.ctx = ctx
	return e.bus.Start(ctx)
}

// Dispatch publishes a view event.
func (e *Engine) Dispatch(ev event.Event) {
	e.bus.Publish(ev)
}

// Merge adds an event producer to the bus.
func (e *Engine) Merge(ctx context.Context, src <-chan event.Event) {
	e.bus.Merge(ctx, src)
}

// State returns the current snapshot.
func (e *Engine) State() grocery.AppState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// OnChange registers fn to run after every fold that changes state.
func (e *Engine) OnChange(fn ChangeFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onChange = append(e.onChange, fn)
}

// OnStatus registers fn to run for every sign-in status change.
func (e *Engine) OnStatus(fn StatusFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onStatus = append(e.onStatus, fn)
}

// Settle blocks until the bus has no queued events or open sources and the
// projector has no remote call in flight.
func (e *Engine) Settle(ctx context.Context) error {
	ticker := time.NewTicker(2 * time.Millisecond)
	defer ticker.Stop()

	for {
		if err := e.bus.WaitIdle(ctx); err != nil {
			return err
		}
		if e.projector.Idle() && e.bus.Idle() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (e *Engine) handle(ev event.Event) {
	ctx := logging.WithEventKind(e.ctx, ev.Kind())

	current := e.State()
	if current.SignedIn() {
		ctx = logging.WithAccount(ctx, current.Credentials.Email)
	}

	switch ev := ev.(type) {
	case event.SignUp:
		e.log.Debug().Ctx(ctx).Str("email", ev.Email).Msg("signing up")
		e.bus.Merge(ctx, e.projector.SignUp(ctx, ev.Email, ev.Password))
		return
	case event.SignIn:
		e.log.Debug().Ctx(ctx).Str("email", ev.Email).Msg("signing in")
		e.bus.Merge(ctx, e.projector.SignIn(ctx, ev.Email, ev.Password))
		return
	case event.SignInStatusChange:
		e.log.Info().Ctx(ctx).
			Bool("sign_up_error", ev.SignUpError).
			Bool("sign_in_error", ev.SignInError).
			Msg("sign in status changed")
		for _, fn := range e.statusListeners() {
			fn(ev)
		}
		return
	}

	res := reducer.Reduce(current, ev)
	if !res.Handled {
		e.log.Info().Ctx(ctx).Msg("ignoring unhandled event")
		return
	}

	if res.Changed {
		e.mu.Lock()
		e.state = res.State
		listeners := append([]ChangeFunc(nil), e.onChange...)
		e.mu.Unlock()

		if err := e.store.Save(ctx, res.State); err != nil {
			e.log.Error().Ctx(ctx).Err(err).Msg("failed to persist snapshot")
		}

		for _, fn := range listeners {
			fn(res.State)
		}
	}

	for _, eff := range res.Effects {
		e.apply(ctx, eff)
	}
}

// apply hands an effect to the projector without waiting on the outcome. The
// projector logs failures itself.
func (e *Engine) apply(ctx context.Context, eff reducer.Effect) {
	switch eff := eff.(type) {
	case reducer.SyncItem:
		_ = e.projector.SyncEvent(ctx, eff.Event, eff.State)
	case reducer.UploadAll:
		_ = e.projector.SaveNewUserState(ctx, eff.State)
	case reducer.ClearRemote:
		_ = e.projector.ClearItems(ctx, eff.Credentials)
	}
}

func (e *Engine) statusListeners() []StatusFunc {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]StatusFunc(nil), e.onStatus...)
}
