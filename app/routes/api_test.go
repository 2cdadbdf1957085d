package routes_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diybuddy/projectbuddy/app/gql"
	"github.com/diybuddy/projectbuddy/app/models"
	"github.com/diybuddy/projectbuddy/app/repositories"
	"github.com/diybuddy/projectbuddy/app/routes"
	"github.com/diybuddy/projectbuddy/app/services"
	"github.com/diybuddy/projectbuddy/pkg/app"
	"github.com/diybuddy/projectbuddy/pkg/router"
	"github.com/diybuddy/projectbuddy/pkg/slot"
	"github.com/diybuddy/projectbuddy/pkg/testkit"
)

const basketKey = "projectBasket"

// soldOutBench is a project with nothing in stock.
var soldOutBench = models.Project{
	ID:    "sold-out-bench",
	Title: "Garden Bench",
	Products: []models.Product{
		{ID: "b1", Name: "Cedar Boards", Price: 54.00, Category: models.CategoryMaterial, InStock: false},
	},
}

func newHandler(t *testing.T, store slot.Store) (http.Handler, *services.BasketStore) {
	t.Helper()

	basket := services.NewBasketStore(store, basketKey, services.DefaultPricing())
	repo := repositories.NewCatalogRepository(
		append(repositories.DefaultProjects(), soldOutBench),
		repositories.DefaultRecommended(),
	)
	catalog := services.NewCatalogService(repo, basket)

	schema, err := gql.NewSchema(catalog, basket)
	require.NoError(t, err)

	h := app.New().Routes(func(r *router.Router) {
		routes.RegisterAPI(r, routes.Deps{Basket: basket, Catalog: catalog, Schema: schema})
	}).Handler()
	return h, basket
}

func TestAPIScenarios(t *testing.T) {
	store := testkit.NewSlotMock(slot.NewMemory())
	h, _ := newHandler(t, store)

	testkit.RunDir(t, h, "testdata", testkit.WithSlot(store, basketKey))
}

func TestRoutesAreNamed(t *testing.T) {
	r := router.New()
	routes.RegisterAPI(r, routes.Deps{})

	want := map[string]string{
		"projects.index":     "/api/projects",
		"projects.show":      "/api/projects/{project}",
		"projects.basket":    "/api/projects/{project}/basket",
		"basket.show":        "/api/basket",
		"basket.add":         "/api/basket/items",
		"basket.quantity":    "/api/basket/items/{product}",
		"basket.remove":      "/api/basket/items/{product}",
		"basket.recommended": "/api/basket/recommended",
		"basket.checkout":    "/api/basket/checkout",
		"graphql":            "/graphql",
	}
	for name, path := range want {
		got, ok := r.Path(name)
		if assert.True(t, ok, name) {
			assert.Equal(t, path, got, name)
		}
	}

	_, ok := r.Path("notices.stream")
	assert.False(t, ok, "feed route needs a hub")
}

type gqlResult struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func queryGraphQL(t *testing.T, h http.Handler, query string) gqlResult {
	t.Helper()
	body, err := json.Marshal(map[string]string{"query": query})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(string(body))))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res gqlResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func TestGraphQLBasket(t *testing.T) {
	h, basket := newHandler(t, slot.NewMemory())
	ctx := context.Background()

	_, err := basket.Replace(ctx, []models.Product{
		{ID: "a", Name: "Clamp", Price: 60, Category: models.CategoryTool, InStock: true, Quantity: 1},
	})
	require.NoError(t, err)

	res := queryGraphQL(t, h, `{ basket { empty items { id quantity } totals { subtotal shipping tax total units } } }`)
	require.Empty(t, res.Errors)
	assert.JSONEq(t, `{
		"empty": false,
		"items": [{"id": "a", "quantity": 1}],
		"totals": {"subtotal": "60.00", "shipping": "0.00", "tax": "4.80", "total": "64.80", "units": 1}
	}`, string(res.Data["basket"]))
}

func TestGraphQLProject(t *testing.T) {
	h, _ := newHandler(t, slot.NewMemory())

	res := queryGraphQL(t, h, `{ project(id: "floating-shelf") { title availableCount estimatedCost video { influencer } products { id inStock } } }`)
	require.Empty(t, res.Errors)

	var project struct {
		Title          string `json:"title"`
		AvailableCount int    `json:"availableCount"`
		EstimatedCost  string `json:"estimatedCost"`
		Video          struct {
			Influencer string `json:"influencer"`
		} `json:"video"`
		Products []struct {
			ID      string `json:"id"`
			InStock bool   `json:"inStock"`
		} `json:"products"`
	}
	require.NoError(t, json.Unmarshal(res.Data["project"], &project))
	assert.Equal(t, "Building a Floating Shelf", project.Title)
	assert.Equal(t, 5, project.AvailableCount)
	assert.Equal(t, "152.45", project.EstimatedCost)
	assert.Equal(t, "Mike the Builder", project.Video.Influencer)
	assert.Len(t, project.Products, 6)

	missing := queryGraphQL(t, h, `{ project(id: "bird-house") { title } }`)
	assert.NotEmpty(t, missing.Errors)
}

func TestGraphQLProjectsAndRecommended(t *testing.T) {
	h, _ := newHandler(t, slot.NewMemory())

	res := queryGraphQL(t, h, `{ projects { id } recommended { id name } }`)
	require.Empty(t, res.Errors)
	assert.JSONEq(t, `[{"id":"floating-shelf"},{"id":"sold-out-bench"}]`, string(res.Data["projects"]))
	assert.Contains(t, string(res.Data["recommended"]), "Work Gloves")
}

func TestGraphQLRejectsEmptyQuery(t *testing.T) {
	h, _ := newHandler(t, slot.NewMemory())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/graphql", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetQuantityAboveMaxIsUnprocessable(t *testing.T) {
	h, basket := newHandler(t, slot.NewMemory())
	_, err := basket.Replace(context.Background(), []models.Product{{ID: "2", Name: "Measuring Tape 25ft", Price: 12.99, Quantity: 1}})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/basket/items/2", strings.NewReader(`{"quantity":1000}`)))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	var body struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Errors["quantity"], "between 0 and 999")

	items, err := basket.Items(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, items[0].Quantity)
}
