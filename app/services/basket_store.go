package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/diybuddy/projectbuddy/app/models"
	"github.com/diybuddy/projectbuddy/pkg/collection"
	"github.com/diybuddy/projectbuddy/pkg/logger"
	"github.com/diybuddy/projectbuddy/pkg/metrics"
	"github.com/diybuddy/projectbuddy/pkg/slot"
)

// Receipt is the result of a checkout.
type Receipt struct {
	Success  bool       `json:"success"`
	OrderRef string     `json:"orderRef"`
	Items    int        `json:"items"`
	Totals   TotalsView `json:"totals"`
	PlacedAt time.Time  `json:"placedAt"`
}

// BasketStore owns the shopper's basket and persists it in one slot after
// every mutation. Every operation re-reads the slot first, so a CLI and a
// server sharing one backend see each other's writes.
type BasketStore struct {
	mu      sync.Mutex
	slot    slot.Store
	key     string
	pricing Pricing
	items   []models.Product // last state read or written
}

// NewBasketStore returns a store persisting under key in s.
func NewBasketStore(s slot.Store, key string, pricing Pricing) *BasketStore {
	return &BasketStore{slot: s, key: key, pricing: pricing}
}

// Pricing returns the parameters used for totals.
func (b *BasketStore) Pricing() Pricing { return b.pricing }

// Items reads the basket from the slot. Missing or unparsable data yields
// an empty basket; only a backend failure is returned.
func (b *BasketStore) Items(ctx context.Context) ([]models.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.load(ctx); err != nil {
		return nil, err
	}
	return collection.Clone(b.items), nil
}

// SavedAt reports when the basket was last written, for drivers that
// track it.
func (b *BasketStore) SavedAt(ctx context.Context) (time.Time, bool) {
	at, err := slot.SavedAt(ctx, b.slot, b.key)
	switch {
	case err == nil:
		return at, true
	case !errors.Is(err, slot.ErrMissing) && !errors.Is(err, errors.ErrUnsupported):
		logger.WithCtx(ctx).Debug("basket: no save time", "error", err)
	}
	return time.Time{}, false
}

// Totals prices the current basket.
func (b *BasketStore) Totals(ctx context.Context) (Totals, error) {
	items, err := b.Items(ctx)
	if err != nil {
		return Totals{}, err
	}
	return ComputeTotals(items, b.pricing), nil
}

// SetQuantity sets the quantity of productID; 0 removes it.
func (b *BasketStore) SetQuantity(ctx context.Context, productID string, q int) (Change, error) {
	return b.mutate(ctx, func(items []models.Product) ([]models.Product, Change, error) {
		return SetQuantity(items, productID, q)
	})
}

// Remove drops productID from the basket.
func (b *BasketStore) Remove(ctx context.Context, productID string) (Change, error) {
	return b.mutate(ctx, func(items []models.Product) ([]models.Product, Change, error) {
		out, change := Remove(items, productID)
		return out, change, nil
	})
}

// AddOrIncrement adds p with quantity 1 or bumps its quantity.
func (b *BasketStore) AddOrIncrement(ctx context.Context, p models.Product) (Change, error) {
	return b.mutate(ctx, func(items []models.Product) ([]models.Product, Change, error) {
		out, change := AddOrIncrement(items, p)
		return out, change, nil
	})
}

// Replace overwrites the basket with items.
func (b *BasketStore) Replace(ctx context.Context, items []models.Product) (Change, error) {
	return b.mutate(ctx, func([]models.Product) ([]models.Product, Change, error) {
		return collection.Clone(items), Change{Kind: ChangeCreated, Count: len(items)}, nil
	})
}

// Checkout empties the basket and forgets the slot. It always succeeds
// from the shopper's point of view; a failed delete is logged. When the
// slot cannot be read the receipt covers no items.
func (b *BasketStore) Checkout(ctx context.Context) (Receipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.load(ctx); err != nil {
		// Without a fresh read the cached entries may already be stale.
		logger.WithCtx(ctx).Warn("basket: checkout could not read slot", "error", err)
		b.items = []models.Product{}
	}

	totals := ComputeTotals(b.items, b.pricing)
	receipt := Receipt{
		Success:  true,
		OrderRef: uuid.NewString(),
		Items:    len(b.items),
		Totals:   totals.Display(),
		PlacedAt: time.Now().UTC(),
	}

	b.items = []models.Product{}
	if err := b.slot.Forget(ctx, b.key); err != nil {
		logger.WithCtx(ctx).Error("basket: checkout could not clear slot", "error", err, "driver", b.slot.Name())
	}

	metrics.RecordMutation(string(ChangeCleared))
	metrics.Checkouts.Inc()
	logger.WithCtx(ctx).Info("basket: checkout", "order_ref", receipt.OrderRef, "items", receipt.Items, "total", receipt.Totals.Total)

	return receipt, nil
}

func (b *BasketStore) mutate(ctx context.Context, fn func([]models.Product) ([]models.Product, Change, error)) (Change, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.load(ctx); err != nil {
		return Change{}, err
	}

	next, change, err := fn(b.items)
	if err != nil {
		return Change{}, err
	}
	if err := b.persist(ctx, next); err != nil {
		return Change{}, err
	}

	b.items = next
	metrics.RecordMutation(string(change.Kind))
	logger.WithCtx(ctx).Debug("basket: mutated", "kind", change.Kind, "product", change.Product.ID, "entries", len(next))

	return change, nil
}

func (b *BasketStore) load(ctx context.Context) error {
	data, err := b.slot.Get(ctx, b.key)
	switch {
	case errors.Is(err, slot.ErrMissing):
		b.items = []models.Product{}
	case err != nil:
		return fmt.Errorf("basket: load %s: %w", b.key, err)
	default:
		b.items = decodeBasket(ctx, data)
	}
	return nil
}

func (b *BasketStore) persist(ctx context.Context, items []models.Product) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("basket: encode: %w", err)
	}
	if err := b.slot.Put(ctx, b.key, data); err != nil {
		return fmt.Errorf("basket: save %s: %w", b.key, err)
	}
	return nil
}

// decodeBasket parses slot contents. Anything that is not a JSON array of
// products resets the basket to empty; an array that breaks the basket
// invariants is repaired through Normalize.
func decodeBasket(ctx context.Context, data []byte) []models.Product {
	var items []models.Product
	if err := json.Unmarshal(data, &items); err != nil {
		logger.WithCtx(ctx).Warn("basket: discarding unreadable slot", "error", err)
		metrics.CorruptLoads.Inc()
		return []models.Product{}
	}

	items, repaired := Normalize(items)
	if repaired {
		logger.WithCtx(ctx).Warn("basket: repaired slot contents", "entries", len(items))
		metrics.CorruptLoads.Inc()
	}
	return items
}
