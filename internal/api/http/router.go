package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/spec-kit/coworking/internal/api/http/handlers"
	"github.com/spec-kit/coworking/internal/auth"
	"github.com/spec-kit/coworking/internal/observability"
)

// AppDependencies are the ambient collaborators of the HTTP app.
type AppDependencies struct {
	Logger         *zap.Logger
	Metrics        *observability.Metrics
	RequestTimeout time.Duration
}

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Admins   *handlers.AdminHandler
	Clients  *handlers.ClientHandler
	Identity *handlers.IdentityHandler
	Resolver *auth.Resolver
	// Gatherer backs /api/metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	api := app.Group("/api")

	api.Get("/ping", cfg.Health.Ping)
	api.Get("/health", cfg.Health.Health)
	if cfg.Gatherer != nil {
		api.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	admin := api.Group("/admin")
	admin.Post("/login", cfg.Admins.Login)
	admin.Post("/register", cfg.Resolver.AdminOnly(), cfg.Admins.Register)
	admin.Get("", cfg.Resolver.AdminOnly(), cfg.Admins.Me)
	admin.Put("/password", cfg.Resolver.AdminOnly(), cfg.Admins.ChangePassword)
	admin.Delete("", cfg.Resolver.AdminOnly(), cfg.Admins.Delete)

	client := api.Group("/client")
	client.Post("/register", cfg.Clients.Register)
	client.Post("/login", cfg.Clients.Login)
	client.Get("", cfg.Resolver.ClientOnly(), cfg.Clients.Me)
	client.Put("/password", cfg.Resolver.ClientOnly(), cfg.Clients.ChangePassword)
	client.Delete("", cfg.Resolver.ClientOnly(), cfg.Clients.Delete)

	api.Get("/admins/:id", cfg.Resolver.AdminOnly(), cfg.Admins.GetByID)
	api.Get("/clients/:id", cfg.Resolver.Any(), cfg.Clients.GetByID)
	api.Get("/whoami", cfg.Resolver.Any(), cfg.Identity.WhoAmI)
}

// NewApp builds the fiber application with error rendering, middlewares and
// routes in place.
func NewApp(appName string, deps AppDependencies, routes RouteConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      appName,
		ErrorHandler: ErrorHandler(deps.Logger, deps.Metrics),
	})
	RegisterMiddlewares(app, deps.Logger, deps.Metrics, deps.RequestTimeout)
	RegisterRoutes(app, routes)
	return app
}
