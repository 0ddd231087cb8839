// Package fsio projects grocery list events onto the remote file store and
// turns remote responses back into events.
//
// Sign-up and sign-in return event streams meant to be merged into the bus;
// they are the only path by which remote results reach application state.
// Item writes return an [Outcome] that callers normally discard: failures are
// logged and reported to outcome hooks, never retried, and never fed back.
package fsio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/colonyops/shoplist/internal/core/event"
	"github.com/colonyops/shoplist/internal/core/grocery"
	"github.com/colonyops/shoplist/internal/core/logging"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// uploadConcurrency bounds parallel item uploads during SaveNewUserState.
const uploadConcurrency = 4

// Op names a remote operation for outcome hooks.
type Op string

const (
	OpSignUp   Op = "sign_up"
	OpSignIn   Op = "sign_in"
	OpDownload Op = "download"
	OpUpload   Op = "upload"
	OpDelete   Op = "delete"
)

// OutcomeHook observes every finished remote call. It must not block.
type OutcomeHook func(op Op, path string, err error)

// Projector issues remote calls on behalf of the engine.
type Projector struct {
	remote     Remote
	log        zerolog.Logger
	rememberMe bool
	hooks      []OutcomeHook

	inflight atomic.Int64
}

// Option configures a Projector.
type Option func(*Projector)

// WithRememberMe sets the rememberMe flag sent with sign-in.
func WithRememberMe(v bool) Option {
	return func(p *Projector) {
		p.rememberMe = v
	}
}

// WithOutcomeHook registers fn to observe remote call results.
func WithOutcomeHook(fn OutcomeHook) Option {
	return func(p *Projector) {
		p.hooks = append(p.hooks, fn)
	}
}

// New creates a Projector backed by remote.
func New(remote Remote, log zerolog.Logger, opts ...Option) *Projector {
	p := &Projector{
		remote: remote,
		log:    logging.For(log, "fsio"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SignUp creates a remote account. The stream yields exactly one event,
// SignedUp on success or SignInStatusChange{SignUpError} on failure, and
// then closes.
func (p *Projector) SignUp(ctx context.Context, email, password string) <-chan event.Event {
	out := make(chan event.Event, 1)

	p.spawn(func() {
		defer close(out)

		err := p.remote.SignUp(ctx, email, password)
		p.observe(OpSignUp, "", err)
		if err != nil {
			p.log.Warn().Err(err).Str("email", email).Msg("sign up failed")
			send(ctx, out, event.SignInStatusChange{SignUpError: true})
			return
		}

		send(ctx, out, event.SignedUp{
			Credentials: grocery.Credentials{Email: email, Password: password},
		})
	})

	return out
}

// SignIn authenticates and then downloads the account's items. The stream
// yields exactly one event once both calls have resolved: SignedIn carrying
// the downloaded items, or SignInStatusChange{SignInError} if authentication
// fails. A failed download still signs in, with no downloaded items.
func (p *Projector) SignIn(ctx context.Context, email, password string) <-chan event.Event {
	out := make(chan event.Event, 1)

	p.spawn(func() {
		defer close(out)

		_, err := p.remote.SignIn(ctx, email, password, p.rememberMe)
		p.observe(OpSignIn, "", err)
		if err != nil {
			p.log.Warn().Err(err).Str("email", email).Msg("sign in failed")
			send(ctx, out, event.SignInStatusChange{SignInError: true})
			return
		}

		creds := grocery.Credentials{Email: email, Password: password}

		downloaded, err := p.download(ctx, creds)
		if err != nil {
			p.log.Warn().Err(err).Str("email", email).Msg("download after sign in failed")
		}

		send(ctx, out, event.SignedIn{Credentials: creds, Downloaded: downloaded})
	})

	return out
}

// DownloadFileList streams one RemoteAddItem per remote item file, then
// closes. A failed download closes the stream without events.
func (p *Projector) DownloadFileList(ctx context.Context, creds grocery.Credentials) <-chan event.Event {
	out := make(chan event.Event)

	p.spawn(func() {
		defer close(out)

		items, err := p.download(ctx, creds)
		if err != nil {
			p.log.Warn().Err(err).Str("email", creds.Email).Msg("download failed")
			return
		}
		for _, item := range items {
			if !send(ctx, out, item) {
				return
			}
		}
	})

	return out
}

func (p *Projector) download(ctx context.Context, creds grocery.Credentials) ([]event.RemoteAddItem, error) {
	items, err := p.remote.DownloadFileList(ctx, creds.Email, creds.Password)
	p.observe(OpDownload, ItemsPath, err)
	if err != nil {
		return nil, fmt.Errorf("download file list: %w", err)
	}

	out := make([]event.RemoteAddItem, len(items))
	for i, item := range items {
		out[i] = event.RemoteAddItem{Item: item}
	}
	return out, nil
}

// SyncEvent mirrors one item-level event to the remote store using the
// credentials and items of state. Adds, completions, and renames upload the
// item; deletes remove its file. Other kinds, signed-out snapshots, and items
// absent from state resolve immediately without a call.
func (p *Projector) SyncEvent(ctx context.Context, ev event.Event, state grocery.AppState) *Outcome {
	if !state.SignedIn() {
		return resolved(nil)
	}
	creds := *state.Credentials

	switch e := ev.(type) {
	case event.AddItem, event.CompleteItem, event.UpdateItem:
		id, _ := event.ItemID(e)
		item, ok := state.ItemByID(id)
		if !ok {
			p.log.Debug().Str("event", string(ev.Kind())).Str("id", id).Msg("item not in snapshot, skipping sync")
			return resolved(nil)
		}
		return p.run(ctx, func(ctx context.Context) error {
			return p.upload(ctx, creds, item)
		})

	case event.DeleteItem:
		return p.run(ctx, func(ctx context.Context) error {
			return p.delete(ctx, creds, ItemPath(e.ID))
		})

	default:
		return resolved(nil)
	}
}

// SaveNewUserState uploads every item of state individually, one request per
// item, continuing past failures. There is no atomicity across items.
func (p *Projector) SaveNewUserState(ctx context.Context, state grocery.AppState) *Outcome {
	if !state.SignedIn() {
		return resolved(nil)
	}
	creds := *state.Credentials
	items := state.Items

	return p.run(ctx, func(ctx context.Context) error {
		var (
			g    errgroup.Group
			mu   sync.Mutex
			errs []error
		)
		g.SetLimit(uploadConcurrency)

		for _, item := range items {
			g.Go(func() error {
				if err := p.upload(ctx, creds, item); err != nil {
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
				}
				return nil
			})
		}
		_ = g.Wait()

		return errors.Join(errs...)
	})
}

// ClearItems deletes the account's remote items list.
func (p *Projector) ClearItems(ctx context.Context, creds grocery.Credentials) *Outcome {
	return p.run(ctx, func(ctx context.Context) error {
		return p.delete(ctx, creds, ItemsPath)
	})
}

func (p *Projector) upload(ctx context.Context, creds grocery.Credentials, item grocery.Item) error {
	path := ItemPath(item.ID)

	content, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	err = p.remote.UploadFile(ctx, creds.Email, creds.Password, path, content)
	p.observe(OpUpload, path, err)
	if err != nil {
		return fmt.Errorf("upload %s: %w", path, err)
	}
	return nil
}

func (p *Projector) delete(ctx context.Context, creds grocery.Credentials, path string) error {
	err := p.remote.DeleteFile(ctx, creds.Email, creds.Password, path)
	p.observe(OpDelete, path, err)
	if err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

// run executes fn in the background and resolves the returned Outcome. Errors
// are logged here because callers typically never read them.
func (p *Projector) run(ctx context.Context, fn func(context.Context) error) *Outcome {
	o := newOutcome()
	p.spawn(func() {
		err := fn(ctx)
		if err != nil {
			p.log.Warn().Err(err).Msg("remote sync failed, local state kept")
		}
		o.resolve(err)
	})
	return o
}

func (p *Projector) spawn(fn func()) {
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Add(-1)
		fn()
	}()
}

func (p *Projector) observe(op Op, path string, err error) {
	for _, fn := range p.hooks {
		fn(op, path, err)
	}
}

// Idle reports whether no remote call is in flight.
func (p *Projector) Idle() bool {
	return p.inflight.Load() == 0
}

// Wait blocks until every in-flight remote call has finished or ctx is done.
func (p *Projector) Wait(ctx context.Context) error {
	ticker := time.NewTicker(2 * time.Millisecond)
	defer ticker.Stop()

	for !p.Idle() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

func send(ctx context.Context, out chan<- event.Event, ev event.Event) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
