package controllers

import (
	"net/http"

	"github.com/diybuddy/projectbuddy/app/events"
	"github.com/diybuddy/projectbuddy/app/models"
	"github.com/diybuddy/projectbuddy/app/resources"
	"github.com/diybuddy/projectbuddy/app/services"
	"github.com/diybuddy/projectbuddy/pkg/ctx"
	"github.com/diybuddy/projectbuddy/pkg/event"
	"github.com/diybuddy/projectbuddy/pkg/resource"
)

// SetQuantityRequest is the body of PUT /api/basket/items/{product}. The
// upper bound is services.MaxQuantity, enforced by the store.
type SetQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0"`
}

// AddProductRequest is the body of POST /api/basket/items.
type AddProductRequest struct {
	ProductID string `json:"productId" validate:"required,alpha_dash,max=64"`
}

type BasketController struct {
	store   *services.BasketStore
	catalog *services.CatalogService
}

func NewBasketController(store *services.BasketStore, catalog *services.CatalogService) *BasketController {
	return &BasketController{store: store, catalog: catalog}
}

// Show returns the basket with its totals, and when the slot driver
// tracks it, meta.savedAt.
func (bc *BasketController) Show(c *ctx.Context) {
	items, err := bc.store.Items(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	res := resources.NewBasket(items, bc.store.Pricing(), nil)
	if at, ok := bc.store.SavedAt(c.Context()); ok {
		res.WithMeta(resource.Map{"savedAt": at.UTC()})
	}
	c.Success(res)
}

// UpdateQuantity sets the quantity of one entry; 0 removes it.
func (bc *BasketController) UpdateQuantity(c *ctx.Context) {
	var in SetQuantityRequest
	if !c.BindJSON(&in) {
		return
	}

	change, err := bc.store.SetQuantity(c.Context(), c.Param("product"), *in.Quantity)
	bc.respond(c, http.StatusOK, change, err)
}

// Remove drops one entry.
func (bc *BasketController) Remove(c *ctx.Context) {
	change, err := bc.store.Remove(c.Context(), c.Param("product"))
	bc.respond(c, http.StatusOK, change, err)
}

// Add puts a catalog product in the basket, or bumps its quantity.
func (bc *BasketController) Add(c *ctx.Context) {
	var in AddProductRequest
	if !c.BindJSON(&in) {
		return
	}

	change, err := bc.catalog.AddProduct(c.Context(), in.ProductID)
	bc.respond(c, http.StatusOK, change, err)
}

// Recommended lists the "complete your project" products.
func (bc *BasketController) Recommended(c *ctx.Context) {
	products := bc.catalog.Repository().Recommended()
	c.Success(resource.CollectionOf[models.Product](resources.ProductResource{}, products))
}

// Checkout clears the basket and returns a receipt.
func (bc *BasketController) Checkout(c *ctx.Context) {
	receipt, err := bc.store.Checkout(c.Context())
	if err != nil {
		fail(c, err)
		return
	}

	notice := resources.CheckoutNotice()
	event.Fire(events.BasketCheckedOut, events.CheckedOut{Receipt: receipt, Notice: notice, Source: "http"})

	c.Respond(http.StatusOK, notice.Title, resource.Map{
		"receipt": receipt,
		"notice":  notice,
	})
}

// respond reports a mutation: the new basket plus the notice it earned.
func (bc *BasketController) respond(c *ctx.Context, status int, change services.Change, err error) {
	if err != nil {
		fail(c, err)
		return
	}

	notice := resources.NoticeFor(change)
	event.Fire(events.BasketChanged, events.Changed{Change: change, Notice: notice, Source: "http"})

	items, err := bc.store.Items(c.Context())
	if err != nil {
		fail(c, err)
		return
	}

	message := ""
	if notice != nil {
		message = notice.Title
	}
	c.Respond(status, message, resources.NewBasket(items, bc.store.Pricing(), notice))
}
