// Package app assembles the HTTP kernel and runs the servers.
//
//	app.New().
//	    Routes(func(r *router.Router) { routes.RegisterAPI(r, deps) }).
//	    Health(func(ctx context.Context) error { return slot.Ping(ctx, store) }).
//	    Serve(ctx)
package app

import (
	"context"
	"net/http"

	"github.com/diybuddy/projectbuddy/config"
	"github.com/diybuddy/projectbuddy/internal/server"
	"github.com/diybuddy/projectbuddy/pkg/grpc"
	"github.com/diybuddy/projectbuddy/pkg/router"
)

// HealthFunc reports whether the service can do its job.
type HealthFunc func(ctx context.Context) error

// Application collects route registrations and the health check.
type Application struct {
	routesFns []func(*router.Router)
	health    HealthFunc
}

// New creates an empty Application.
func New() *Application {
	return &Application{}
}

// Routes registers a route-registration callback that runs when the HTTP
// kernel is built. Callbacks run in order.
func (a *Application) Routes(fn func(*router.Router)) *Application {
	a.routesFns = append(a.routesFns, fn)
	return a
}

// Health sets the check behind /healthz and the gRPC health service.
func (a *Application) Health(fn HealthFunc) *Application {
	a.health = fn
	return a
}

// Router builds a bare router with only the application routes, for
// listing them.
func (a *Application) Router() *router.Router {
	r := router.New()
	for _, fn := range a.routesFns {
		fn(r)
	}
	return r
}

// Handler builds the full HTTP kernel.
func (a *Application) Handler() http.Handler {
	return buildHandler(a)
}

// Serve runs the HTTP and gRPC servers until ctx ends or a shutdown
// signal arrives.
func (a *Application) Serve(ctx context.Context) error {
	return server.Start(ctx, a.serverOptions())
}

func (a *Application) serverOptions() server.Options {
	opts := server.Options{
		Addr:     ":" + config.AppPort(),
		Handler:  a.Handler(),
		GRPCPort: config.GRPCPort(),
	}
	if a.health != nil {
		opts.Check = grpc.CheckFunc(a.health)
	}
	return opts
}
