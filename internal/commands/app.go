package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/colonyops/shoplist/internal/core/config"
	"github.com/colonyops/shoplist/internal/core/event"
	"github.com/colonyops/shoplist/internal/core/eventbus"
	"github.com/colonyops/shoplist/internal/core/fsio"
	"github.com/colonyops/shoplist/internal/core/grocery"
	"github.com/colonyops/shoplist/internal/core/snapshot"
	"github.com/colonyops/shoplist/internal/data/db"
	"github.com/colonyops/shoplist/internal/data/stores"
	"github.com/colonyops/shoplist/internal/engine"
	"github.com/colonyops/shoplist/internal/remote/httpfs"
	"github.com/colonyops/shoplist/internal/store/jsonfile"
)

// App holds the services commands run against. It is populated by the root
// command's Before hook; commands hold a pointer to it from registration.
type App struct {
	Config *config.Config
	Store  *snapshot.Store
	Remote fsio.Remote
	Logger zerolog.Logger

	closers []func() error
}

// Outcome is what a command observes after its events have settled.
type Outcome struct {
	Before grocery.AppState
	After  grocery.AppState
	Status []event.SignInStatusChange
}

// Open builds an App from cfg, opening the configured snapshot storage and
// remote client.
func Open(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: logger}

	slot, err := app.openSlot()
	if err != nil {
		return nil, err
	}
	app.Store = snapshot.New(slot, logger)

	if cfg.RemoteEnabled() {
		client, err := httpfs.New(cfg.Remote.URL, logger)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.Remote = client
	} else {
		app.Remote = fsio.Offline{}
	}

	return app, nil
}

func (a *App) openSlot() (snapshot.Slot, error) {
	switch a.Config.Storage.Driver {
	case config.DriverJSON:
		return jsonfile.NewSnapshotFile(a.Config.SnapshotFile()), nil
	default:
		opts := db.OpenOptions{
			MaxOpenConns: a.Config.Database.MaxOpenConns,
			MaxIdleConns: a.Config.Database.MaxIdleConns,
			BusyTimeout:  a.Config.Database.BusyTimeout,
		}

		database, err := db.Open(a.Config.DataDir, opts)
		if err != nil && stores.IsCorruptionError(err) {
			a.Logger.Warn().Err(err).Msg("snapshot database is corrupt, moving it aside")
			if rerr := stores.RecoverFromCorruption(a.Config.DataDir); rerr != nil {
				return nil, fmt.Errorf("recover database: %w", rerr)
			}
			database, err = db.Open(a.Config.DataDir, opts)
		}
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}

		a.closers = append(a.closers, database.Close)
		return snapshot.NewKVSlot(stores.NewKVStore(database)), nil
	}
}

// Close releases storage handles.
func (a *App) Close() error {
	var first error
	for _, fn := range a.closers {
		if err := fn(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

// Run loads the snapshot, starts an engine, dispatches the events returned by
// build for that snapshot, and waits for every consequence to settle,
// including remote calls.
func (a *App) Run(ctx context.Context, build func(grocery.AppState) ([]event.Event, error)) (Outcome, error) {
	initial := a.Store.Initial(ctx)

	events, err := build(initial)
	if err != nil {
		return Outcome{}, err
	}

	bus := eventbus.New()
	eventbus.RegisterDebugLogger(bus, a.Logger)

	var status []event.SignInStatusChange

	rememberMe := a.Config != nil && a.Config.Remote.RememberMe
	projector := fsio.New(a.Remote, a.Logger, fsio.WithRememberMe(rememberMe))
	eng := engine.New(bus, projector, a.Store, initial, a.Logger,
		engine.WithOnStatus(func(s event.SignInStatusChange) {
			status = append(status, s)
		}),
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- eng.Start(runCtx) }()

	for _, ev := range events {
		eng.Dispatch(ev)
	}

	settleErr := eng.Settle(ctx)
	cancel()
	<-done

	if settleErr != nil {
		return Outcome{}, fmt.Errorf("wait for events: %w", settleErr)
	}

	return Outcome{Before: initial, After: eng.State(), Status: status}, nil
}
