package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/colonyops/shoplist/internal/core/grocery"
	"github.com/colonyops/shoplist/internal/core/snapshot"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotFile_MissingIsEmpty(t *testing.T) {
	f := NewSnapshotFile(filepath.Join(t.TempDir(), "state.json"))

	_, err := f.Read(context.Background())
	assert.ErrorIs(t, err, snapshot.ErrEmpty)
}

func TestSnapshotFile_BlankIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("\n  \n"), 0o600))

	_, err := NewSnapshotFile(path).Read(context.Background())
	assert.ErrorIs(t, err, snapshot.ErrEmpty)
}

func TestSnapshotFile_WriteCreatesParentAndNoTempLeft(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "state.json")
	f := NewSnapshotFile(path)

	require.NoError(t, f.Write(context.Background(), []byte(`{"items":[]}`)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[]}`, string(data))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestSnapshotFile_WithStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")
	store := snapshot.New(NewSnapshotFile(path), zerolog.Nop())

	want := grocery.AppState{Items: []grocery.Item{{ID: "a", Name: "2 dl cream"}}}
	require.NoError(t, store.Save(ctx, want))

	// A fresh handle on the same file sees the saved state.
	got, err := snapshot.New(NewSnapshotFile(path), zerolog.Nop()).Load(ctx)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))
}

func TestSnapshotFile_CorruptFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{truncated"), 0o600))

	st := snapshot.New(NewSnapshotFile(path), zerolog.Nop()).Initial(context.Background())
	assert.Len(t, st.Items, 3)
}
