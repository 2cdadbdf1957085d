// Package bootstrap assembles the basket store, catalog and HTTP surface
// from configuration. The server and CLI both start here.
package bootstrap

import (
	"context"
	"fmt"

	gographql "github.com/graphql-go/graphql"

	"github.com/diybuddy/projectbuddy/app/gql"
	"github.com/diybuddy/projectbuddy/app/listeners"
	"github.com/diybuddy/projectbuddy/app/repositories"
	"github.com/diybuddy/projectbuddy/app/routes"
	"github.com/diybuddy/projectbuddy/app/services"
	"github.com/diybuddy/projectbuddy/config"
	"github.com/diybuddy/projectbuddy/pkg/app"
	"github.com/diybuddy/projectbuddy/pkg/logger"
	"github.com/diybuddy/projectbuddy/pkg/router"
	"github.com/diybuddy/projectbuddy/pkg/slot"
	"github.com/diybuddy/projectbuddy/pkg/sse"
	"github.com/diybuddy/projectbuddy/pkg/ws"
)

// Options tune Boot. Zero values fall back to config.
type Options struct {
	// Slot replaces the configured driver, mostly for tests.
	Slot slot.Store
	// Feed serves notices over websocket and SSE.
	Feed bool
}

// Services is the wired application.
type Services struct {
	Slot    slot.Store
	Basket  *services.BasketStore
	Catalog *services.CatalogService
	Hub     *ws.Hub
	Events  *sse.Broker
	Schema  gographql.Schema
}

// Boot loads config, opens the basket slot and wires the services.
// Listeners are registered on the global event bus.
func Boot(ctx context.Context, opts Options) (*Services, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("bootstrap: config: %w", err)
	}

	store := opts.Slot
	if store == nil {
		var err error
		store, err = slot.Open(ctx, config.BasketDriver())
		if err != nil {
			return nil, fmt.Errorf("bootstrap: open %s slot: %w", config.BasketDriver(), err)
		}
	}

	repo := repositories.NewDefaultCatalogRepository()
	if err := repo.Validate(); err != nil {
		_ = slot.Close(ctx, store)
		return nil, fmt.Errorf("bootstrap: catalog: %w", err)
	}

	basket := services.NewBasketStore(store, config.BasketKey(), services.PricingFromConfig())
	catalog := services.NewCatalogService(repo, basket)

	schema, err := gql.NewSchema(catalog, basket)
	if err != nil {
		_ = slot.Close(ctx, store)
		return nil, fmt.Errorf("bootstrap: graphql schema: %w", err)
	}

	s := &Services{
		Slot:    store,
		Basket:  basket,
		Catalog: catalog,
		Schema:  schema,
	}

	if opts.Feed {
		s.Hub = ws.NewHub(config.CORSOrigins()...)
		s.Events = sse.NewBroker("notice")
		listeners.Register(s.Hub, s.Events)
	} else {
		listeners.Register()
	}

	logger.Debug("bootstrap: services ready",
		"driver", store.Name(),
		"key", config.BasketKey(),
	)
	return s, nil
}

// Routes returns the route deps for routes.RegisterAPI.
func (s *Services) Routes() routes.Deps {
	return routes.Deps{
		Basket:  s.Basket,
		Catalog: s.Catalog,
		Hub:     s.Hub,
		Events:  s.Events,
		Schema:  s.Schema,
	}
}

// Application builds the HTTP kernel around the services.
func (s *Services) Application() *app.Application {
	return app.New().
		Routes(func(r *router.Router) { routes.RegisterAPI(r, s.Routes()) }).
		Health(func(ctx context.Context) error { return slot.Ping(ctx, s.Slot) })
}

// Close releases the slot connection.
func (s *Services) Close(ctx context.Context) error {
	if s.Slot == nil {
		return nil
	}
	return slot.Close(ctx, s.Slot)
}
