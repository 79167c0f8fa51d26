package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/repair-ticket-service/internal/api/http/handlers"
	"github.com/spec-kit/repair-ticket-service/internal/auth"
	"github.com/spec-kit/repair-ticket-service/internal/domain"
	"github.com/spec-kit/repair-ticket-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Users   *handlers.UsersHandler
	Tickets *handlers.TicketsHandler
	Metrics *observability.Metrics
}

// RegisterRoutes wires HTTP routes. Static ticket paths are registered
// before /tickets/:id so they are not captured as ids.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	if registry := cfg.Metrics.Registry(); registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	users := app.Group("/users")
	users.Post("/", cfg.Users.Register)
	users.Post("/login", cfg.Users.Login)
	users.Get("/email/:email", auth.RequireAuthenticated(), cfg.Users.GetByEmail)

	authenticated := auth.RequireAuthenticated()
	admin := auth.RequireRole(domain.RoleAdmin)

	tickets := app.Group("/tickets")
	tickets.Post("/", admin, cfg.Tickets.CreateTicket)
	tickets.Get("/", authenticated, cfg.Tickets.ListTickets)
	tickets.Get("/estadisticas", authenticated, cfg.Tickets.Statistics)
	tickets.Get("/por-mes", authenticated, cfg.Tickets.ByMonth)
	tickets.Get("/cliente/:email", authenticated, cfg.Tickets.ListByCustomer)
	tickets.Get("/:id", authenticated, cfg.Tickets.GetTicket)
	tickets.Put("/:id/notificacion", authenticated, cfg.Tickets.EnableNotification)
	tickets.Put("/:id", admin, cfg.Tickets.UpdateTicket)
	tickets.Delete("/:id", admin, cfg.Tickets.DeleteTicket)
}

// PublicPaths are served without looking at the Authorization header.
var PublicPaths = []string{
	"/users",
	"/users/login",
	"/health/live",
	"/health/ready",
	"/metrics",
}
