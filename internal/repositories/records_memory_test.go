package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSetGet(t *testing.T) {
	store := NewMemoryRecordStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "resume:1", "v1"))

	value, err := store.Get(ctx, "resume:1")
	require.NoError(t, err)
	assert.Equal(t, "v1", value)

	// Set on an existing key overwrites.
	require.NoError(t, store.Set(ctx, "resume:1", "v2"))
	value, err = store.Get(ctx, "resume:1")
	require.NoError(t, err)
	assert.Equal(t, "v2", value)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStoreGetMissing(t *testing.T) {
	store := NewMemoryRecordStore()

	_, err := store.Get(context.Background(), "resume:missing")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestMemoryStoreListPrefix(t *testing.T) {
	store := NewMemoryRecordStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "resume:b", "2"))
	require.NoError(t, store.Set(ctx, "resume:a", "1"))
	require.NoError(t, store.Set(ctx, "session:x", "other"))

	items, err := store.List(ctx, KeyPrefix)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "resume:a", items[0].Key)
	assert.Equal(t, "resume:b", items[1].Key)
}

func TestMemoryStoreListEmpty(t *testing.T) {
	store := NewMemoryRecordStore()

	items, err := store.List(context.Background(), KeyPrefix)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestRecordKey(t *testing.T) {
	assert.Equal(t, "resume:abc", RecordKey("abc"))
}
