package services

import (
	"errors"
	"fmt"

	"github.com/diybuddy/projectbuddy/app/models"
	"github.com/diybuddy/projectbuddy/pkg/collection"
)

// MaxQuantity is the most units one basket entry may hold.
const MaxQuantity = 999

var (
	// ErrInvalidQuantity is returned for quantities outside 0..MaxQuantity.
	ErrInvalidQuantity = fmt.Errorf("services: quantity must be between 0 and %d", MaxQuantity)

	// ErrNoProductsAvailable is returned when a catalog has nothing in stock.
	ErrNoProductsAvailable = errors.New("services: no products available")

	// ErrOutOfStock is returned when adding a product that is not in stock.
	ErrOutOfStock = errors.New("services: product is out of stock")
)

// ChangeKind names what a basket transition did.
type ChangeKind string

const (
	ChangeCreated     ChangeKind = "created"
	ChangeUpdated     ChangeKind = "updated"
	ChangeRemoved     ChangeKind = "removed"
	ChangeAdded       ChangeKind = "added"
	ChangeIncremented ChangeKind = "incremented"
	ChangeCleared     ChangeKind = "cleared"
)

// Change describes the outcome of a basket mutation. Product is the entry
// the mutation touched, as it was after the change (or before removal).
// Count is the number of entries written for ChangeCreated.
type Change struct {
	Kind    ChangeKind     `json:"kind"`
	Product models.Product `json:"product"`
	Count   int            `json:"count,omitempty"`
}

func byID(id string) func(models.Product) bool {
	return func(p models.Product) bool { return p.ID == id }
}

// SetQuantity returns items with the entry for id set to q. q == 0 removes
// the entry. An unknown id leaves items unchanged.
func SetQuantity(items []models.Product, id string, q int) ([]models.Product, Change, error) {
	if q < 0 || q > MaxQuantity {
		return nil, Change{}, ErrInvalidQuantity
	}
	if q == 0 {
		out, change := Remove(items, id)
		return out, change, nil
	}

	out := collection.Clone(items)
	change := Change{Kind: ChangeUpdated, Product: models.Product{ID: id, Quantity: q}}
	if i := collection.IndexOf(out, byID(id)); i >= 0 {
		out[i].Quantity = q
		change.Product = out[i]
	}
	return out, change, nil
}

// Remove returns items without the entry for id.
func Remove(items []models.Product, id string) ([]models.Product, Change) {
	change := Change{Kind: ChangeRemoved, Product: models.Product{ID: id}}
	if p, ok := collection.First(items, byID(id)); ok {
		change.Product = p
	}
	return collection.Reject(items, byID(id)), change
}

// AddOrIncrement bumps the quantity of an existing entry by one (an absent
// quantity counts as 1) or appends p with quantity 1. An entry already at
// MaxQuantity stays there.
func AddOrIncrement(items []models.Product, p models.Product) ([]models.Product, Change) {
	out := collection.Clone(items)
	if i := collection.IndexOf(out, byID(p.ID)); i >= 0 {
		out[i].Quantity = min(out[i].Units()+1, MaxQuantity)
		return out, Change{Kind: ChangeIncremented, Product: out[i]}
	}

	added := p.WithQuantity(1)
	return append(out, added), Change{Kind: ChangeAdded, Product: added}
}

// FromCatalog keeps the in-stock products of catalog, each with quantity 1.
func FromCatalog(catalog []models.Product) ([]models.Product, error) {
	inStock := collection.Filter(catalog, func(p models.Product) bool { return p.InStock })
	if len(inStock) == 0 {
		return nil, ErrNoProductsAvailable
	}
	return collection.Map(inStock, func(p models.Product) models.Product {
		return p.WithQuantity(1)
	}), nil
}

// Normalize repairs a basket read from storage: entries without an id or
// with a negative quantity are dropped, duplicate ids are merged into the
// first entry with their units summed, and quantities are capped at
// MaxQuantity. It reports whether anything changed.
func Normalize(items []models.Product) ([]models.Product, bool) {
	out := make([]models.Product, 0, len(items))
	at := make(map[string]int, len(items))
	repaired := false

	for _, p := range items {
		if p.ID == "" || p.Quantity < 0 {
			repaired = true
			continue
		}
		if i, ok := at[p.ID]; ok {
			out[i].Quantity = min(out[i].Units()+p.Units(), MaxQuantity)
			repaired = true
			continue
		}
		if p.Quantity > MaxQuantity {
			p.Quantity = MaxQuantity
			repaired = true
		}
		at[p.ID] = len(out)
		out = append(out, p)
	}
	return out, repaired
}
