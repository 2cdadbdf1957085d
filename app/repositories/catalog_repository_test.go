package repositories_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diybuddy/projectbuddy/app/models"
	"github.com/diybuddy/projectbuddy/app/repositories"
)

func TestDefaultCatalogFigures(t *testing.T) {
	repo := repositories.NewDefaultCatalogRepository()

	p, err := repo.FindProject(repositories.FloatingShelfID)
	require.NoError(t, err)
	assert.Len(t, p.Products, 6)
	assert.Equal(t, 5, repositories.AvailableCount(p))
	assert.Equal(t, "152.45", repositories.EstimatedCost(p).StringFixed(2))
}

func TestFindProjectUnknown(t *testing.T) {
	_, err := repositories.NewDefaultCatalogRepository().FindProject("bird-house")
	assert.ErrorIs(t, err, repositories.ErrProjectNotFound)
}

func TestFindProductSearchesRecommended(t *testing.T) {
	repo := repositories.NewDefaultCatalogRepository()

	p, err := repo.FindProduct("r2")
	require.NoError(t, err)
	assert.Equal(t, "Work Gloves", p.Name)

	p, err = repo.FindProduct("4")
	require.NoError(t, err)
	assert.Equal(t, models.CategorySafety, p.Category)

	_, err = repo.FindProduct("nope")
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)
}

func TestFindProjectReturnsCopy(t *testing.T) {
	repo := repositories.NewDefaultCatalogRepository()

	p, _ := repo.FindProject(repositories.FloatingShelfID)
	p.Products[0].Price = 0

	again, _ := repo.FindProject(repositories.FloatingShelfID)
	assert.Equal(t, 89.99, again.Products[0].Price)
}

func TestCatalogProductsAreValid(t *testing.T) {
	repo := repositories.NewDefaultCatalogRepository()
	require.NoError(t, repo.Validate())

	products := append(repo.Recommended(), repo.Projects()[0].Products...)
	for _, p := range products {
		assert.True(t, p.Category.Valid(), p.ID)
	}
}

func TestValidateReportsBadProducts(t *testing.T) {
	repo := repositories.NewCatalogRepository(
		[]models.Project{{ID: "bench", Products: []models.Product{
			{ID: "b1", Name: "Cedar Boards", Price: -1, Category: models.CategoryMaterial},
		}}},
		[]models.Product{{ID: "r1", Name: "Clamp", Price: 4, Category: "gadget"}},
	)

	err := repo.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, `bench product "b1"`)
	assert.ErrorContains(t, err, `recommended product "r1"`)
}
