package slot_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diybuddy/projectbuddy/pkg/slot"
	"github.com/diybuddy/projectbuddy/pkg/storage"
)

// exercise runs the contract every driver must honour.
func exercise(t *testing.T, s slot.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "projectBasket")
	require.ErrorIs(t, err, slot.ErrMissing)

	require.NoError(t, s.Put(ctx, "projectBasket", []byte(`[{"id":"1"}]`)))
	got, err := s.Get(ctx, "projectBasket")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1"}]`, string(got))

	require.NoError(t, s.Put(ctx, "projectBasket", []byte(`[]`)))
	got, err = s.Get(ctx, "projectBasket")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	require.NoError(t, s.Forget(ctx, "projectBasket"))
	_, err = s.Get(ctx, "projectBasket")
	assert.ErrorIs(t, err, slot.ErrMissing)

	assert.NoError(t, s.Forget(ctx, "projectBasket"), "forgetting twice is fine")
	assert.NoError(t, slot.Ping(ctx, s))
}

func TestMemory(t *testing.T) {
	exercise(t, slot.NewMemory())
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := slot.NewMemory()
	buf := []byte("abc")
	require.NoError(t, m.Put(ctx, "k", buf))
	buf[0] = 'x'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestLocalDisk(t *testing.T) {
	exercise(t, slot.NewDisk(storage.NewLocal(t.TempDir())))
}

func TestDiskSavedAt(t *testing.T) {
	d := slot.NewDisk(storage.NewLocal(t.TempDir()))
	_, err := d.SavedAt(context.Background(), "projectBasket")
	assert.ErrorIs(t, err, slot.ErrMissing)

	require.NoError(t, d.Put(context.Background(), "projectBasket", []byte("[]")))
	at, err := d.SavedAt(context.Background(), "projectBasket")
	require.NoError(t, err)
	assert.False(t, at.IsZero())

	via, err := slot.SavedAt(context.Background(), slot.Instrument(d), "projectBasket")
	require.NoError(t, err)
	assert.Equal(t, at, via)
}

func TestSavedAtUnsupported(t *testing.T) {
	_, err := slot.SavedAt(context.Background(), slot.Instrument(slot.NewMemory()), "projectBasket")
	assert.ErrorIs(t, err, errors.ErrUnsupported)
}

func TestSQLiteDatabase(t *testing.T) {
	db, err := slot.OpenDatabase("sqlite", filepath.Join(t.TempDir(), "slots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(context.Background()) })

	exercise(t, db)
}

func TestInstrumentKeepsSemantics(t *testing.T) {
	s := slot.Instrument(slot.NewMemory())
	assert.Equal(t, "memory", s.Name())
	assert.Same(t, s, slot.Instrument(s), "instrumenting twice is a no-op")
	exercise(t, s)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := slot.Open(context.Background(), "floppy")
	assert.Error(t, err)
}

func TestOpenMemory(t *testing.T) {
	s, err := slot.Open(context.Background(), "memory")
	require.NoError(t, err)
	exercise(t, s)
	assert.NoError(t, slot.Close(context.Background(), s))
}

type brokenStore struct{ slot.Memory }

func (b *brokenStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func TestPingReportsBackendFailure(t *testing.T) {
	assert.Error(t, slot.Ping(context.Background(), &brokenStore{}))
}
