// Package resources shapes models for API and CLI output.
package resources

import (
	"github.com/diybuddy/projectbuddy/app/models"
	"github.com/diybuddy/projectbuddy/app/repositories"
	"github.com/diybuddy/projectbuddy/app/services"
	"github.com/diybuddy/projectbuddy/pkg/resource"
)

// ProductResource renders a product; quantity only appears for basket entries.
type ProductResource struct{}

func (ProductResource) ToArray(p models.Product) resource.Map {
	out := resource.Map{
		"id":       p.ID,
		"name":     p.Name,
		"price":    p.Price,
		"image":    p.Image,
		"category": string(p.Category),
		"rating":   p.Rating,
		"inStock":  p.InStock,
	}
	if p.Quantity > 0 {
		out["quantity"] = p.Quantity
	}
	return out
}

// ProjectResource renders a project with its derived cost figures.
type ProjectResource struct {
	// BasketURL resolves the create-basket link for a project id.
	BasketURL func(projectID string) string
}

func (r ProjectResource) ToArray(p models.Project) resource.Map {
	out := resource.Map{
		"id":             p.ID,
		"title":          p.Title,
		"description":    p.Description,
		"difficulty":     p.Difficulty,
		"estimatedTime":  p.EstimatedTime,
		"rating":         p.Rating,
		"learnings":      p.Learnings,
		"video":          p.Video,
		"products":       resource.CollectionOf[models.Product](ProductResource{}, p.Products),
		"availableCount": repositories.AvailableCount(p),
		"estimatedCost":  repositories.EstimatedCost(p).StringFixed(2),
	}
	if r.BasketURL != nil {
		out["links"] = resource.Map{"basket": r.BasketURL(p.ID)}
	}
	return out
}

// Basket is the payload of every basket response.
type Basket struct {
	Items  []models.Product
	Totals services.Totals
	Notice *models.Notice
}

// BasketResource renders a basket with its presentation totals.
type BasketResource struct{}

func (BasketResource) ToArray(b Basket) resource.Map {
	out := resource.Map{
		"items":  resource.CollectionOf[models.Product](ProductResource{}, b.Items),
		"empty":  len(b.Items) == 0,
		"totals": b.Totals.Display(),
	}
	if b.Notice != nil {
		out["notice"] = b.Notice
	}
	return out
}

// NewBasket prices items and pairs them with an optional notice.
func NewBasket(items []models.Product, pricing services.Pricing, notice *models.Notice) *resource.Resource[Basket] {
	return resource.New[Basket](BasketResource{}, Basket{
		Items:  items,
		Totals: services.ComputeTotals(items, pricing),
		Notice: notice,
	})
}
