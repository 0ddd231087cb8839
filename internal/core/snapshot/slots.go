package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/colonyops/shoplist/internal/core/kv"
)

const (
	kvNamespace = "snapshot"
	kvKey       = "state"
)

// KVSlot stores the snapshot under a single key of a persistent KV store.
type KVSlot struct {
	typed *kv.TypedKV[json.RawMessage]
}

var _ Slot = (*KVSlot)(nil)

// NewKVSlot returns a slot backed by store.
func NewKVSlot(store kv.KV) *KVSlot {
	return &KVSlot{typed: kv.Scoped[json.RawMessage](store, kvNamespace)}
}

func (s *KVSlot) Read(ctx context.Context) ([]byte, error) {
	raw, err := s.typed.Get(ctx, kvKey)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (s *KVSlot) Write(ctx context.Context, data []byte) error {
	if !json.Valid(data) {
		return errors.New("kv slot: refusing to store invalid JSON")
	}
	return s.typed.Set(ctx, kvKey, json.RawMessage(data))
}

// MemorySlot keeps the snapshot in process memory.
type MemorySlot struct {
	mu   sync.Mutex
	data []byte
}

var _ Slot = (*MemorySlot)(nil)

// NewMemorySlot returns an empty in-memory slot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

func (s *MemorySlot) Read(context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, ErrEmpty
	}
	return append([]byte(nil), s.data...), nil
}

func (s *MemorySlot) Write(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte{}, data...)
	return nil
}
