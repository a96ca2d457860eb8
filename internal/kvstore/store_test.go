package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Set(ctx, "k", []byte("v1")))
	data, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v1"), data)

	// Mutating the returned slice must not affect the stored value.
	data[0] = 'x'
	data2, _, _ := store.Get(ctx, "k")
	require.Equal(t, []byte("v1"), data2)

	require.NoError(t, store.Delete(ctx, "k"))
	_, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	store, err := New("local", map[string]interface{}{"dir": t.TempDir()})
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, "snapshot:v1", []byte(`{"entries":[]}`)))
	data, ok, err := store.Get(ctx, "snapshot:v1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte(`{"entries":[]}`), data)

	_, ok, err = store.Get(ctx, "other")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Delete(ctx, "snapshot:v1"))
	require.NoError(t, store.Delete(ctx, "snapshot:v1"))
}

func TestLocalStore_RequiresDir(t *testing.T) {
	_, err := New("local", map[string]interface{}{})
	require.Error(t, err)
}

func TestNew_DefaultsToMemory(t *testing.T) {
	store, err := New("", nil)
	require.NoError(t, err)
	require.NotNil(t, store)
}

func TestNew_UnknownType(t *testing.T) {
	_, err := New("bogus", nil)
	require.Error(t, err)
}
