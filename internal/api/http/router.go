package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/medmais/sistema-indicadores/internal/api/http/handlers"
	"github.com/medmais/sistema-indicadores/internal/auth"
	"github.com/medmais/sistema-indicadores/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Lancamentos    *handlers.LancamentosHandler
	Reference      *handlers.ReferenceHandler
	Reports        *handlers.ReportsHandler
	Feedback       *handlers.FeedbackHandler
	AuthMiddleware *auth.AuthMiddleware
	// Metrics serves /metrics when set.
	Metrics nethttp.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics))
	}

	app.Post("/auth/login", cfg.Auth.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole())
	geralOnly := auth.RequireRole(domain.RoleGeral)
	managers := auth.RequireRole(domain.RoleGeral, domain.RoleGerenteSCI)

	protected.Get("/auth/me", cfg.Auth.Me)
	protected.Post("/auth/password/change", cfg.Auth.ChangePassword)

	admin := protected.Group("/admin", managers)
	admin.Get("/users", cfg.Users.List)
	admin.Post("/users", cfg.Users.Create)
	admin.Put("/users", cfg.Users.Update)
	admin.Delete("/users", cfg.Users.Delete)

	protected.Get("/lancamentos/export", cfg.Lancamentos.Export)
	protected.Get("/lancamentos", cfg.Lancamentos.List)
	protected.Post("/lancamentos", cfg.Lancamentos.Create)
	protected.Get("/lancamentos/:id", cfg.Lancamentos.Get)
	protected.Put("/lancamentos/:id", cfg.Lancamentos.Update)
	protected.Delete("/lancamentos/:id", cfg.Lancamentos.Delete)

	protected.Get("/aderencia", cfg.Reports.Aderencia)
	protected.Get("/compliance/rules", cfg.Reports.Rules)
	protected.Get("/analytics/:schemaType", cfg.Reports.Analytics)

	protected.Get("/bases", cfg.Reference.ListBases)
	protected.Post("/bases", geralOnly, cfg.Reference.CreateBase)
	protected.Put("/bases/:id", geralOnly, cfg.Reference.UpdateBase)
	protected.Delete("/bases/:id", geralOnly, cfg.Reference.DeleteBase)

	protected.Get("/equipes", cfg.Reference.ListEquipes)
	protected.Post("/equipes", geralOnly, cfg.Reference.CreateEquipe)
	protected.Put("/equipes/:id", geralOnly, cfg.Reference.UpdateEquipe)
	protected.Delete("/equipes/:id", geralOnly, cfg.Reference.DeleteEquipe)

	protected.Get("/indicadores", cfg.Reference.ListIndicadores)

	protected.Get("/colaboradores", cfg.Reference.ListColaboradores)
	protected.Post("/colaboradores", managers, cfg.Reference.CreateColaborador)
	protected.Post("/colaboradores/batch", managers, cfg.Reference.CreateColaboradoresBatch)
	protected.Post("/colaboradores/import", managers, cfg.Reference.ImportColaboradores)
	protected.Put("/colaboradores/:id", managers, cfg.Reference.UpdateColaborador)
	protected.Delete("/colaboradores/:id", managers, cfg.Reference.DeleteColaborador)

	protected.Get("/feedbacks", cfg.Feedback.List)
	protected.Post("/feedbacks", cfg.Feedback.Create)
	protected.Patch("/feedbacks/:id", geralOnly, cfg.Feedback.Update)
}
