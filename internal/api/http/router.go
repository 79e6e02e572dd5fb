package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/techaway/backend/internal/api/http/handlers"
	"github.com/techaway/backend/internal/auth"
	"github.com/techaway/backend/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Checkout       *handlers.CheckoutHandler
	Orders         *handlers.OrdersHandler
	Tickets        *handlers.TicketsHandler
	Catalog        *handlers.CatalogHandler
	Users          *handlers.UsersHandler
	Reports        *handlers.ReportsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/signup", cfg.Auth.SignUp)
	authGroup.Get("/confirm", cfg.Auth.ConfirmEmail)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ResetPassword)

	catalog := app.Group("/catalog")
	catalog.Get("/services", cfg.Catalog.ListServices)
	catalog.Get("/services/:id", cfg.Catalog.GetService)
	catalog.Get("/slas", cfg.Catalog.ListSLAs)
	catalog.Get("/slas/:id", cfg.Catalog.GetSLA)

	catalogAdmin := catalog.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	catalogAdmin.Post("/services", cfg.Catalog.CreateService)
	catalogAdmin.Put("/services/:id", cfg.Catalog.UpdateService)
	catalogAdmin.Delete("/services/:id", cfg.Catalog.DeleteService)
	catalogAdmin.Post("/slas", cfg.Catalog.CreateSLA)
	catalogAdmin.Put("/slas/:id", cfg.Catalog.UpdateSLA)
	catalogAdmin.Delete("/slas/:id", cfg.Catalog.DeleteSLA)

	checkout := app.Group("/checkout", cfg.AuthMiddleware.Handle)
	checkout.Post("/payment-intent", cfg.Checkout.CreatePaymentIntent)

	// signature-verified, not bearer-authenticated
	app.Post("/webhooks/stripe", cfg.Checkout.HandleWebhook)

	orders := app.Group("/orders", cfg.AuthMiddleware.Handle)
	orders.Get("/", cfg.Orders.ListOrders)
	orders.Get("/:id", cfg.Orders.GetOrder)
	orders.Post("/:id/cancel", cfg.Orders.CancelOrder)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)

	users := app.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	users.Get("/", cfg.Users.ListUsers)
	users.Patch("/:id", cfg.Users.UpdateUser)

	reports := app.Group("/reports", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	reports.Get("/revenue", cfg.Reports.Revenue)
	reports.Get("/technicians", cfg.Reports.Technicians)
}
