package repositories

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/diybuddy/projectbuddy/app/models"
	"github.com/diybuddy/projectbuddy/pkg/collection"
	"github.com/diybuddy/projectbuddy/pkg/validate"
)

// ErrProjectNotFound is returned when no project has the requested id.
var ErrProjectNotFound = errors.New("repositories: project not found")

// ErrProductNotFound is returned when no catalog product has the requested id.
var ErrProductNotFound = errors.New("repositories: product not found")

// CatalogRepository serves the static project catalog.
type CatalogRepository struct {
	projects    []models.Project
	recommended []models.Product
}

// NewCatalogRepository serves the given projects and recommended products.
func NewCatalogRepository(projects []models.Project, recommended []models.Product) *CatalogRepository {
	return &CatalogRepository{projects: projects, recommended: recommended}
}

// NewDefaultCatalogRepository serves the built-in catalog.
func NewDefaultCatalogRepository() *CatalogRepository {
	return NewCatalogRepository(DefaultProjects(), DefaultRecommended())
}

// Validate checks every catalog product against its validation rules.
func (r *CatalogRepository) Validate() error {
	var errs []error
	check := func(where string, p models.Product) {
		failed := validate.Struct(p)
		for _, field := range slices.Sorted(maps.Keys(failed)) {
			errs = append(errs, fmt.Errorf("repositories: %s product %q: %s", where, p.ID, failed[field]))
		}
	}

	for _, project := range r.projects {
		for _, p := range project.Products {
			check(project.ID, p)
		}
	}
	for _, p := range r.recommended {
		check("recommended", p)
	}
	return errors.Join(errs...)
}

// Projects returns every project.
func (r *CatalogRepository) Projects() []models.Project {
	return collection.Clone(r.projects)
}

// FindProject looks up a project by id.
func (r *CatalogRepository) FindProject(id string) (models.Project, error) {
	p, ok := collection.First(r.projects, func(p models.Project) bool { return p.ID == id })
	if !ok {
		return models.Project{}, ErrProjectNotFound
	}
	p.Products = collection.Clone(p.Products)
	return p, nil
}

// Recommended returns the "complete your project" products.
func (r *CatalogRepository) Recommended() []models.Product {
	return collection.Clone(r.recommended)
}

// FindProduct searches project products and recommended products by id.
func (r *CatalogRepository) FindProduct(id string) (models.Product, error) {
	match := func(p models.Product) bool { return p.ID == id }
	for _, project := range r.projects {
		if p, ok := collection.First(project.Products, match); ok {
			return p, nil
		}
	}
	if p, ok := collection.First(r.recommended, match); ok {
		return p, nil
	}
	return models.Product{}, ErrProductNotFound
}

// AvailableCount is the number of in-stock products of a project.
func AvailableCount(p models.Project) int {
	return collection.Count(p.Products, func(p models.Product) bool { return p.InStock })
}

// EstimatedCost is the sum of the in-stock unit prices of a project.
func EstimatedCost(p models.Project) decimal.Decimal {
	inStock := collection.Filter(p.Products, func(p models.Product) bool { return p.InStock })
	return collection.Reduce(inStock, decimal.Zero, func(acc decimal.Decimal, p models.Product) decimal.Decimal {
		return acc.Add(decimal.NewFromFloat(p.Price))
	})
}
