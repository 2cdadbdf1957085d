package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diybuddy/projectbuddy/app/models"
	"github.com/diybuddy/projectbuddy/app/repositories"
	"github.com/diybuddy/projectbuddy/app/services"
	"github.com/diybuddy/projectbuddy/pkg/slot"
	"github.com/diybuddy/projectbuddy/pkg/storage"
)

const key = "projectBasket"

func newStore(t *testing.T) (*services.BasketStore, *slot.Memory) {
	t.Helper()
	mem := slot.NewMemory()
	return services.NewBasketStore(mem, key, services.DefaultPricing()), mem
}

func stored(t *testing.T, mem *slot.Memory) []models.Product {
	t.Helper()
	data, err := mem.Get(context.Background(), key)
	require.NoError(t, err)
	var items []models.Product
	require.NoError(t, json.Unmarshal(data, &items))
	return items
}

func TestLoadMissingSlotIsEmpty(t *testing.T) {
	store, _ := newStore(t)
	items, err := store.Items(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestLoadCorruptSlotIsEmpty(t *testing.T) {
	for _, raw := range []string{"{not json", `{"id":"1"}`, "null", `"text"`} {
		store, mem := newStore(t)
		require.NoError(t, mem.Put(context.Background(), key, []byte(raw)))

		items, err := store.Items(context.Background())
		require.NoError(t, err, raw)
		assert.Empty(t, items, raw)
	}
}

func TestSetQuantityPersists(t *testing.T) {
	ctx := context.Background()
	store, mem := newStore(t)
	_, err := store.Replace(ctx, []models.Product{product("1", 10, 1), product("2", 5, 1)})
	require.NoError(t, err)

	for _, q := range []int{1, 2, 7} {
		_, err := store.SetQuantity(ctx, "1", q)
		require.NoError(t, err)

		reloaded := services.NewBasketStore(mem, key, services.DefaultPricing())
		items, err := reloaded.Items(ctx)
		require.NoError(t, err)
		assert.Equal(t, q, items[0].Quantity)
	}

	change, err := store.SetQuantity(ctx, "1", 0)
	require.NoError(t, err)
	assert.Equal(t, services.ChangeRemoved, change.Kind)
	assert.Len(t, stored(t, mem), 1)
}

func TestSetQuantityNegativeWritesNothing(t *testing.T) {
	ctx := context.Background()
	store, mem := newStore(t)

	_, err := store.SetQuantity(ctx, "1", -3)
	assert.ErrorIs(t, err, services.ErrInvalidQuantity)

	_, err = mem.Get(ctx, key)
	assert.ErrorIs(t, err, slot.ErrMissing)
}

func TestRemoveAndAddOrIncrement(t *testing.T) {
	ctx := context.Background()
	store, mem := newStore(t)

	_, err := store.AddOrIncrement(ctx, product("r1", 16.99, 0))
	require.NoError(t, err)
	change, err := store.AddOrIncrement(ctx, product("r1", 16.99, 0))
	require.NoError(t, err)
	assert.Equal(t, services.ChangeIncremented, change.Kind)
	assert.Equal(t, 2, stored(t, mem)[0].Quantity)

	change, err = store.Remove(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", change.Product.ID)
	assert.Empty(t, stored(t, mem))
}

func TestCheckoutAlwaysEmpties(t *testing.T) {
	ctx := context.Background()
	store, mem := newStore(t)
	_, err := store.Replace(ctx, []models.Product{product("a", 60, 1)})
	require.NoError(t, err)

	receipt, err := store.Checkout(ctx)
	require.NoError(t, err)
	assert.True(t, receipt.Success)
	assert.NotEmpty(t, receipt.OrderRef)
	assert.Equal(t, 1, receipt.Items)
	assert.Equal(t, "64.80", receipt.Totals.Total)

	_, err = mem.Get(ctx, key)
	assert.ErrorIs(t, err, slot.ErrMissing)

	items, err := store.Items(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	again, err := store.Checkout(ctx)
	require.NoError(t, err)
	assert.True(t, again.Success)
	assert.Zero(t, again.Items)
	assert.NotEqual(t, receipt.OrderRef, again.OrderRef)
}

type failingSlot struct{ *slot.Memory }

func (failingSlot) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func TestBackendFailureIsReported(t *testing.T) {
	store := services.NewBasketStore(failingSlot{slot.NewMemory()}, key, services.DefaultPricing())

	_, err := store.Items(context.Background())
	assert.ErrorContains(t, err, "connection refused")

	_, err = store.Remove(context.Background(), "1")
	assert.Error(t, err)

	receipt, err := store.Checkout(context.Background())
	require.NoError(t, err)
	assert.True(t, receipt.Success)
}

type flakySlot struct {
	*slot.Memory
	down bool
}

func (f *flakySlot) Get(ctx context.Context, key string) ([]byte, error) {
	if f.down {
		return nil, errors.New("connection refused")
	}
	return f.Memory.Get(ctx, key)
}

func TestCheckoutAfterFailedReadIssuesEmptyReceipt(t *testing.T) {
	ctx := context.Background()
	flaky := &flakySlot{Memory: slot.NewMemory()}
	store := services.NewBasketStore(flaky, key, services.DefaultPricing())

	_, err := store.Replace(ctx, []models.Product{product("a", 60, 1)})
	require.NoError(t, err)
	require.NoError(t, flaky.Memory.Forget(ctx, key))
	flaky.down = true

	receipt, err := store.Checkout(ctx)
	require.NoError(t, err)
	assert.True(t, receipt.Success)
	assert.Zero(t, receipt.Items)
	assert.Equal(t, "0.00", receipt.Totals.Subtotal)
}

func TestLoadRepairsDuplicateEntries(t *testing.T) {
	ctx := context.Background()
	store, mem := newStore(t)
	require.NoError(t, mem.Put(ctx, key, []byte(`[{"id":"1","quantity":1},{"id":"1","quantity":2},{"id":"2","quantity":-4},{"id":"","quantity":1}]`)))

	items, err := store.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, 3, items[0].Quantity)

	_, err = store.SetQuantity(ctx, "1", 5)
	require.NoError(t, err)
	got := stored(t, mem)
	require.Len(t, got, 1)
	assert.Equal(t, 5, got[0].Quantity)
}

func TestLoadCapsOversizedQuantity(t *testing.T) {
	ctx := context.Background()
	store, mem := newStore(t)
	require.NoError(t, mem.Put(ctx, key, []byte(`[{"id":"1","quantity":9223372036854775807}]`)))

	_, err := store.AddOrIncrement(ctx, product("1", 10, 0))
	require.NoError(t, err)

	got := stored(t, mem)
	require.Len(t, got, 1)
	assert.Equal(t, services.MaxQuantity, got[0].Quantity)

	totals, err := store.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, "9990.00", totals.Display().Subtotal)
}

func TestCreateBasketFromCatalog(t *testing.T) {
	ctx := context.Background()
	store, mem := newStore(t)
	catalog := services.NewCatalogService(repositories.NewDefaultCatalogRepository(), store)

	_, err := store.AddOrIncrement(ctx, product("r3", 7.99, 0))
	require.NoError(t, err)

	change, err := catalog.CreateBasketForProject(ctx, repositories.FloatingShelfID)
	require.NoError(t, err)
	assert.Equal(t, services.ChangeCreated, change.Kind)
	assert.Equal(t, 5, change.Count)

	items := stored(t, mem)
	require.Len(t, items, 5, "overwrites rather than merges")
	for _, p := range items {
		assert.Equal(t, 1, p.Quantity)
	}
}

func TestCreateBasketFromCatalogNothingInStock(t *testing.T) {
	ctx := context.Background()
	store, mem := newStore(t)
	catalog := services.NewCatalogService(repositories.NewDefaultCatalogRepository(), store)
	_, err := store.AddOrIncrement(ctx, product("r3", 7.99, 0))
	require.NoError(t, err)

	out := product("x", 1, 0)
	out.InStock = false
	_, err = catalog.CreateBasketFromCatalog(ctx, []models.Product{out})
	assert.ErrorIs(t, err, services.ErrNoProductsAvailable)
	assert.Len(t, stored(t, mem), 1, "no write")

	_, err = catalog.CreateBasketForProject(ctx, "unknown")
	assert.ErrorIs(t, err, repositories.ErrProjectNotFound)
}

func TestAddProduct(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)
	catalog := services.NewCatalogService(repositories.NewDefaultCatalogRepository(), store)

	change, err := catalog.AddProduct(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Wood Stain - Natural Oak", change.Product.Name)

	_, err = catalog.AddProduct(ctx, "6")
	assert.ErrorIs(t, err, services.ErrOutOfStock)

	_, err = catalog.AddProduct(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)
}

func TestStoreSeesExternalSlotWrites(t *testing.T) {
	ctx := context.Background()
	store, mem := newStore(t)
	_, err := store.Replace(ctx, []models.Product{product("1", 10, 1)})
	require.NoError(t, err)

	require.NoError(t, mem.Put(ctx, key, []byte(`[{"id":"2","name":"Glue","price":3,"category":"material","inStock":true,"quantity":2}]`)))

	change, err := store.SetQuantity(ctx, "2", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, change.Product.Quantity)

	items, err := store.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "2", items[0].ID)
}

func TestSavedAtFollowsDriver(t *testing.T) {
	ctx := context.Background()

	volatile, _ := newStore(t)
	_, err := volatile.Replace(ctx, []models.Product{product("a", 1, 1)})
	require.NoError(t, err)
	_, ok := volatile.SavedAt(ctx)
	assert.False(t, ok, "memory slot keeps no timestamps")

	disk := services.NewBasketStore(slot.Instrument(slot.NewDisk(storage.NewLocal(t.TempDir()))), key, services.DefaultPricing())
	_, ok = disk.SavedAt(ctx)
	assert.False(t, ok, "nothing saved yet")

	_, err = disk.Replace(ctx, []models.Product{product("a", 1, 1)})
	require.NoError(t, err)
	at, ok := disk.SavedAt(ctx)
	assert.True(t, ok)
	assert.False(t, at.IsZero())
}
