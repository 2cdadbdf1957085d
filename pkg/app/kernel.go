package app

import (
	"context"
	"net/http"
	"time"

	"github.com/diybuddy/projectbuddy/config"
	"github.com/diybuddy/projectbuddy/pkg/logger"
	"github.com/diybuddy/projectbuddy/pkg/metrics"
	"github.com/diybuddy/projectbuddy/pkg/middleware"
	"github.com/diybuddy/projectbuddy/pkg/reqid"
	"github.com/diybuddy/projectbuddy/pkg/response"
	"github.com/diybuddy/projectbuddy/pkg/router"
)

// buildHandler wires the global middleware, the operational endpoints and
// the application routes.
func buildHandler(a *Application) http.Handler {
	r := router.New()

	// Outermost → innermost:
	//  1. Prometheus metrics: total latency
	//  2. Recovery: panics become 500 envelopes
	//  3. Request ID: before anything logs
	//  4. Logger: request-scoped slog logger
	//  5. CORS
	//  6. Rate limiter
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions(config.CORSOrigins())))
	r.Use(middleware.RateLimit(config.RateLimitPerMinute(), time.Minute))

	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/healthz", "health", healthHandler(a.health))

	for _, fn := range a.routesFns {
		fn(r)
	}

	return r.Handler()
}

func healthHandler(check HealthFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				logger.WithCtx(r.Context()).Warn("health check failing", "error", err)
				response.Error(w, http.StatusServiceUnavailable, "unhealthy")
				return
			}
		}
		response.Success(w, map[string]string{"status": "ok"})
	}
}
