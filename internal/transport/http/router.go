package http

import (
	"net/http"

	"github.com/event-notify/internal/application/notification"
	"github.com/event-notify/internal/application/session"
	"github.com/event-notify/internal/application/template"
	"github.com/event-notify/internal/application/user"
	"github.com/event-notify/internal/config"
	"github.com/event-notify/internal/domain"
	"github.com/event-notify/internal/transport/http/handler"
	appmiddleware "github.com/event-notify/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(appmiddleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)

	// 5 requests/second, burst of 10, on public endpoints that hash passwords.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	sessionSvc := session.NewService(deps.SessionRepo, deps.UserRepo, deps.JWTProvider)
	userSvc := user.NewService(deps.UserRepo)
	notifSvc := notification.NewService(deps.NotificationRepo)
	templateSvc := template.NewService(deps.TemplateRepo)

	healthH := handler.NewHealthHandler(nil)
	if deps.Health != nil {
		healthH = handler.NewHealthHandler(deps.Health)
	}
	sessionH := handler.NewSessionHandler(sessionSvc)
	userH := handler.NewUserHandler(userSvc, deps.Gate)
	notifH := handler.NewNotificationHandler(notifSvc)
	dispatchH := handler.NewDispatchHandler(deps.Dispatcher, deps.UserRepo, templateSvc)
	templateH := handler.NewTemplateHandler(templateSvc)
	auditH := handler.NewAuditHandler(deps.Audit)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/sessions/login", sessionH.Login)
		r.With(sensitiveRL.Limit).Post("/users", userH.Register)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw, appmiddleware.RequireActiveSession(deps.SessionRepo))

			r.Get("/sessions", sessionH.GetCurrent)
			r.Post("/sessions/logout", sessionH.Logout)

			r.Get("/users/me", userH.Me)
			r.Put("/users/me/push-token", userH.SetPushToken)
			r.Put("/users/me/preferences", userH.SetPreferences)

			r.Get("/notifications", notifH.List)
			r.Delete("/notifications", notifH.DeleteAll)
			r.Get("/notifications/unread-count", notifH.UnreadCount)
			r.Put("/notifications/read-all", notifH.MarkAllAsRead)
			r.Get("/notifications/{id}", notifH.Get)
			r.Put("/notifications/{id}/read", notifH.MarkAsRead)
			r.Delete("/notifications/{id}", notifH.Delete)

			// Organizers notify entrants of their events.
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleOrganizer, domain.RoleAdmin))

				r.Post("/dispatch", dispatchH.Dispatch)
				r.Post("/dispatch/bulk", dispatchH.Bulk)
			})

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/audit-logs", auditH.List)
				r.Put("/users/{id}/role", userH.SetRole)

				r.Get("/notification-templates", templateH.List)
				r.Post("/notification-templates", templateH.Create)
				r.Get("/notification-templates/{id}", templateH.Get)
				r.Put("/notification-templates/{id}", templateH.Update)
				r.Put("/notification-templates/{id}/active", templateH.SetActive)
				r.Delete("/notification-templates/{id}", templateH.Delete)
			})
		})
	})

	return r
}
