// Package snapshot persists the application state as a single JSON document.
//
// A snapshot lives in one [Slot]. Each save overwrites the slot completely;
// there is no history and no merge. Reading a slot that is empty, unreadable,
// or malformed yields the default state rather than an error.
package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/colonyops/shoplist/internal/core/grocery"
	"github.com/colonyops/shoplist/internal/core/logging"
	"github.com/rs/zerolog"
)

// ErrEmpty is returned by a Slot that holds no snapshot.
var ErrEmpty = errors.New("snapshot: slot is empty")

// Slot is a single overwriteable blob of bytes.
type Slot interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}

// Store encodes and decodes application state to and from a Slot.
type Store struct {
	slot Slot
	log  zerolog.Logger
}

// New returns a Store over slot.
func New(slot Slot, log zerolog.Logger) *Store {
	return &Store{
		slot: slot,
		log:  logging.For(log, "snapshot"),
	}
}

// Load reads and decodes the stored state. It returns ErrEmpty when nothing
// has been saved yet.
func (s *Store) Load(ctx context.Context) (grocery.AppState, error) {
	data, err := s.slot.Read(ctx)
	if err != nil {
		return grocery.AppState{}, fmt.Errorf("read snapshot: %w", err)
	}
	if len(data) == 0 {
		return grocery.AppState{}, ErrEmpty
	}

	state, err := grocery.Decode(data)
	if err != nil {
		return grocery.AppState{}, fmt.Errorf("read snapshot: %w", err)
	}
	return state, nil
}

// Initial returns the stored state, or the default state when the slot is
// empty, unreadable, or holds a malformed document.
func (s *Store) Initial(ctx context.Context) grocery.AppState {
	state, err := s.Load(ctx)
	switch {
	case err == nil:
		return state
	case errors.Is(err, ErrEmpty):
		s.log.Debug().Msg("no snapshot, starting from defaults")
	default:
		s.log.Warn().Err(err).Msg("discarding unusable snapshot, starting from defaults")
	}
	return grocery.DefaultState()
}

// Save overwrites the slot with state.
func (s *Store) Save(ctx context.Context, state grocery.AppState) error {
	data, err := grocery.Encode(state)
	if err != nil {
		return err
	}
	if err := s.slot.Write(ctx, data); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
