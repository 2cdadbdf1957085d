package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diybuddy/projectbuddy/pkg/storage"
)

func TestLocalDiskRoundTrip(t *testing.T) {
	ctx := context.Background()
	disk := storage.NewLocal(t.TempDir())

	require.NoError(t, disk.Put(ctx, "baskets/projectBasket.json", []byte(`[]`)))
	data, err := disk.Get(ctx, "baskets/projectBasket.json")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))

	mod, err := disk.Stat(ctx, "baskets/projectBasket.json")
	require.NoError(t, err)
	assert.False(t, mod.IsZero())

	require.NoError(t, disk.Put(ctx, "baskets/projectBasket.json", []byte(`[{"id":"1"}]`)))
	data, err = disk.Get(ctx, "baskets/projectBasket.json")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, string(data))
}

func TestLocalDiskMissing(t *testing.T) {
	ctx := context.Background()
	disk := storage.NewLocal(t.TempDir())

	_, err := disk.Get(ctx, "nope.json")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = disk.Stat(ctx, "nope.json")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.NoError(t, disk.Delete(ctx, "nope.json"), "deleting a missing file is not an error")
}

func TestLocalDiskDelete(t *testing.T) {
	ctx := context.Background()
	disk := storage.NewLocal(t.TempDir())
	require.NoError(t, disk.Put(ctx, "a.json", []byte("x")))
	require.NoError(t, disk.Delete(ctx, "a.json"))
	_, err := disk.Stat(ctx, "a.json")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, "local", disk.Driver())
}

func TestLocalDiskHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	disk := storage.NewLocal(t.TempDir())
	assert.ErrorIs(t, disk.Put(ctx, "a.json", []byte("x")), context.Canceled)
}
