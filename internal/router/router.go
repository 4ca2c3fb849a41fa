package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mesaview-usd/extrapay-api/internal/config"
	"github.com/mesaview-usd/extrapay-api/internal/handler"
	"github.com/mesaview-usd/extrapay-api/internal/middleware"
	"github.com/mesaview-usd/extrapay-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ContractHandler   *handler.ContractHandler
	PayRequestHandler *handler.PayRequestHandler
	DashboardHandler  *handler.DashboardHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	adminOnly := middleware.RequireRole("admin")
	payrollOnly := middleware.RequireRole("payroll")

	// Everything under a district is tenant-scoped: the path parameter must
	// match the district claim carried by the token. The limiter keys on the
	// user claim, so it runs after the token is parsed.
	district := api.Group("/districts/:districtID",
		jwtMiddleware,
		middleware.DistrictScoped(),
		middleware.RateLimit("district", 120, time.Minute),
	)

	if deps.ContractHandler != nil {
		deps.ContractHandler.Register(district.Group("/contracts"), adminOnly)
	}

	if deps.PayRequestHandler != nil {
		deps.PayRequestHandler.Register(district.Group("/requests"), adminOnly, payrollOnly)
	}

	if deps.DashboardHandler != nil {
		deps.DashboardHandler.Register(district, adminOnly)
	}
}
