package routes

import (
	gographql "github.com/graphql-go/graphql"

	"github.com/diybuddy/projectbuddy/app/controllers"
	"github.com/diybuddy/projectbuddy/app/services"
	"github.com/diybuddy/projectbuddy/pkg/ctx"
	"github.com/diybuddy/projectbuddy/pkg/graphql"
	"github.com/diybuddy/projectbuddy/pkg/router"
	"github.com/diybuddy/projectbuddy/pkg/sse"
	"github.com/diybuddy/projectbuddy/pkg/ws"
)

// Deps are the services the routes serve.
type Deps struct {
	Basket  *services.BasketStore
	Catalog *services.CatalogService
	Hub     *ws.Hub
	Events  *sse.Broker
	Schema  gographql.Schema
}

// RegisterAPI mounts the JSON API, the GraphQL endpoint and whichever
// notice feeds are configured.
func RegisterAPI(r *router.Router, d Deps) {
	basket := controllers.NewBasketController(d.Basket, d.Catalog)
	catalog := controllers.NewCatalogController(d.Catalog, basket, func(projectID string) string {
		url, _ := r.URL("projects.basket", map[string]string{"project": projectID})
		return url
	})

	api := r.Group("/api")

	projects := api.Group("/projects")
	projects.Get("/", "projects.index", ctx.Wrap(catalog.Index))
	projects.Get("/{project}", "projects.show", ctx.Wrap(catalog.Show))
	projects.Post("/{project}/basket", "projects.basket", ctx.Wrap(catalog.CreateBasket))

	b := api.Group("/basket")
	b.Get("/", "basket.show", ctx.Wrap(basket.Show))
	b.Post("/items", "basket.add", ctx.Wrap(basket.Add))
	b.Put("/items/{product}", "basket.quantity", ctx.Wrap(basket.UpdateQuantity))
	b.Delete("/items/{product}", "basket.remove", ctx.Wrap(basket.Remove))
	b.Get("/recommended", "basket.recommended", ctx.Wrap(basket.Recommended))
	b.Post("/checkout", "basket.checkout", ctx.Wrap(basket.Checkout))

	gql := graphql.Handler(d.Schema)
	r.Get("/graphql", "graphql.query", gql)
	r.Post("/graphql", "graphql", gql)

	if d.Hub != nil {
		r.Get("/ws/notices", "notices.stream", d.Hub.ServeHTTP)
	}
	if d.Events != nil {
		r.Get("/sse/notices", "notices.events", d.Events.ServeHTTP)
	}
}
