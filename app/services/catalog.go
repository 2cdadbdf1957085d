package services

import (
	"context"

	"github.com/diybuddy/projectbuddy/app/models"
	"github.com/diybuddy/projectbuddy/app/repositories"
)

// CatalogService turns projects into baskets.
type CatalogService struct {
	repo   *repositories.CatalogRepository
	basket *BasketStore
}

func NewCatalogService(repo *repositories.CatalogRepository, basket *BasketStore) *CatalogService {
	return &CatalogService{repo: repo, basket: basket}
}

// Repository exposes the catalog being served.
func (s *CatalogService) Repository() *repositories.CatalogRepository { return s.repo }

// CreateBasketFromCatalog overwrites the basket with the in-stock products
// of catalog, each with quantity 1. Nothing is written when none are in
// stock.
func (s *CatalogService) CreateBasketFromCatalog(ctx context.Context, catalog []models.Product) (Change, error) {
	items, err := FromCatalog(catalog)
	if err != nil {
		return Change{}, err
	}
	return s.basket.Replace(ctx, items)
}

// CreateBasketForProject is CreateBasketFromCatalog over a project's products.
func (s *CatalogService) CreateBasketForProject(ctx context.Context, projectID string) (Change, error) {
	project, err := s.repo.FindProject(projectID)
	if err != nil {
		return Change{}, err
	}
	return s.CreateBasketFromCatalog(ctx, project.Products)
}

// AddProduct adds an in-stock catalog product by id with AddOrIncrement.
func (s *CatalogService) AddProduct(ctx context.Context, productID string) (Change, error) {
	p, err := s.repo.FindProduct(productID)
	if err != nil {
		return Change{}, err
	}
	if !p.InStock {
		return Change{}, ErrOutOfStock
	}
	return s.basket.AddOrIncrement(ctx, p)
}
