package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queue-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Tickets  *handlers.TicketsHandler
	Operator *handlers.OperatorHandler
	Services *handlers.ServicesHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/services", cfg.Services.RegisterService)
	app.Get("/services/:id", cfg.Services.GetService)
	app.Get("/companies/:companyId/services", cfg.Services.ListCompanyServices)

	app.Post("/tickets", cfg.Tickets.IssueTicket)
	app.Get("/tickets/:id", cfg.Tickets.GetTicket)
	app.Get("/tickets/:id/position", cfg.Tickets.GetPosition)
	app.Post("/tickets/:id/cancel", cfg.Tickets.CancelTicket)
	app.Get("/owners/:ownerId/tickets", cfg.Tickets.ListOwnerTickets)

	app.Post("/services/:id/call-next", cfg.Operator.CallNext)
	app.Get("/services/:id/queue", cfg.Operator.ListQueue)
	app.Post("/tickets/:id/serve", cfg.Operator.ServeTicket)
	app.Post("/tickets/:id/skip", cfg.Operator.SkipTicket)
}
