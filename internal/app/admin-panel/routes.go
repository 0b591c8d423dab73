package adminpanel

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/subpanel/subscription-admin/internal/http/handlers/auth/login"
	"github.com/subpanel/subscription-admin/internal/http/handlers/auth/register"
	"github.com/subpanel/subscription-admin/internal/http/handlers/health"
	planlist "github.com/subpanel/subscription-admin/internal/http/handlers/plan/list"
	"github.com/subpanel/subscription-admin/internal/http/handlers/subscription/assign"
	"github.com/subpanel/subscription-admin/internal/http/handlers/subscription/history"
	usercreate "github.com/subpanel/subscription-admin/internal/http/handlers/user/create"
	"github.com/subpanel/subscription-admin/internal/http/handlers/user/lifecycle"
	userlist "github.com/subpanel/subscription-admin/internal/http/handlers/user/list"
	userremove "github.com/subpanel/subscription-admin/internal/http/handlers/user/remove"
	"github.com/subpanel/subscription-admin/internal/http/middlewarectx"
	"github.com/subpanel/subscription-admin/internal/lib/jwt"
	assignmentservice "github.com/subpanel/subscription-admin/internal/services/assignment"
	authservice "github.com/subpanel/subscription-admin/internal/services/auth"
	directoryservice "github.com/subpanel/subscription-admin/internal/services/directory"
	"github.com/subpanel/subscription-admin/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты панели.
func RegisterRoutes(r chi.Router, logger *slog.Logger, maker jwt.Maker, storage *repository.Storage,
	authService *authservice.Service, directoryService *directoryservice.Service,
	assignmentService *assignmentservice.Service) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Get("/health", health.New(logger, storage).ServeHTTP)
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(maker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Route("/admin", func(r chi.Router) {
				r.Post("/users", usercreate.New(logger, directoryService).ServeHTTP)
				r.Get("/users", userlist.New(logger, directoryService).ServeHTTP)
				r.Post("/users/{id}/activate", lifecycle.NewActivate(logger, directoryService).ServeHTTP)
				r.Post("/users/{id}/deactivate", lifecycle.NewDeactivate(logger, directoryService).ServeHTTP)
				r.Post("/users/{id}/unlink-device", lifecycle.NewUnlinkDevice(logger, directoryService).ServeHTTP)
				r.Delete("/users/{id}", userremove.New(logger, directoryService).ServeHTTP)
				r.Get("/plans", planlist.New(logger, directoryService).ServeHTTP)
				r.Post("/subscriptions/assign", assign.New(logger, assignmentService).ServeHTTP)
				r.Get("/subscriptions/history", history.New(logger, directoryService).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
