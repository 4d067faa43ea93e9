package container

import (
	"fmt"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jaevor/go-nanoid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/do"
	"github.com/serroba/launch-site-go/internal/apierror"
	"github.com/serroba/launch-site-go/internal/content"
	"github.com/serroba/launch-site-go/internal/handlers"
	"github.com/serroba/launch-site-go/internal/health"
	"github.com/serroba/launch-site-go/internal/metrics"
	"github.com/serroba/launch-site-go/internal/middleware"
	"github.com/serroba/launch-site-go/internal/profile"
	"github.com/serroba/launch-site-go/internal/ratelimit"
	"github.com/serroba/launch-site-go/internal/static"
	"github.com/serroba/launch-site-go/internal/tracking"
	"go.uber.org/zap"
)

const requestIDLength = 21

// HTTPPackage provides the router and the API with every route registered.
// Invoking huma.API is what registers the routes.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*chi.Mux, error) {
		opts := do.MustInvoke[*Options](i)

		router := chi.NewMux()

		if opts.ForceHTTPS {
			router.Use(middleware.ForceHTTPS)
		}

		router.Use(middleware.CORS(middleware.ParseOrigins(opts.AllowedOrigins)))

		return router, nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)
		reg := do.MustInvoke[*prometheus.Registry](i)

		newID, err := nanoid.Standard(requestIDLength)
		if err != nil {
			return nil, fmt.Errorf("request id generator: %w", err)
		}

		apierror.Install()

		api := humachi.New(router, huma.DefaultConfig("Launch Site", "1.0.0"))

		api.UseMiddleware(
			middleware.Recover(api, logger),
			middleware.RequestMeta(api, newID),
			middleware.AccessLog(logger),
			middleware.PolicyRateLimiter(
				api,
				do.MustInvoke[*ratelimit.PolicyLimiter](i),
				do.MustInvoke[*metrics.Metrics](i),
				logger,
			),
		)

		catalog := do.MustInvoke[*content.Catalog](i)
		tracker := do.MustInvoke[*tracking.Tracker](i)

		health.RegisterRoutes(api, health.NewHandler(health.NewRedisChecker(do.MustInvoke[*Redis](i).UniversalClient)))
		handlers.RegisterProfileRoutes(api, handlers.NewProfileHandler(do.MustInvoke[profile.Lookup](i), logger))
		handlers.RegisterEventRoutes(api, handlers.NewEventsHandler(tracker, do.MustInvoke[*tracking.Sessions](i), logger))
		handlers.RegisterContentRoutes(api, handlers.NewContentHandler(catalog), handlers.NewQuizHandler(catalog, tracker))

		router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

		mounted, err := static.Mount(router, opts.StaticDir)
		if err != nil {
			return nil, fmt.Errorf("static site: %w", err)
		}

		if !mounted {
			logger.Warn("static site not found, serving the API only", zap.String("dir", opts.StaticDir))
		}

		if !tracker.Enabled() {
			logger.Warn("analytics token not configured, events are only logged")
		}

		return api, nil
	})
}
