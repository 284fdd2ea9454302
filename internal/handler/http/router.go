package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/internal/domain"
	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/internal/session"
	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/internal/state"
	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/pkg/health"
	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/pkg/middleware"
)

// NewRouter assembles the client shell. Every protected view declares its
// allowed roles here, in one place; an empty declaration means any
// authenticated role.
func NewRouter(
	sessions *session.Context,
	tokens *session.Manager,
	scopes *state.Manager,
	sessionTTL time.Duration,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("clienthub"))
	r.Use(RestoreSession(sessions, tokens))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	views := NewViewHandler(sessions)
	authHandler := NewAuthHandler(sessions, tokens, sessionTTL, logger)

	// Session lifecycle (public).
	r.Get("/login", views.Login)
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/session", authHandler.Session)
	})

	// Role-gated shell views.
	r.Group(func(r chi.Router) {
		r.Use(Gated(sessions, domain.RoleAdmin))
		r.Get("/admin", views.Render("admin"))
		r.Get("/admin/*", views.Render("admin"))
	})
	r.Group(func(r chi.Router) {
		r.Use(Gated(sessions, domain.RolePrincipal))
		r.Get("/dashboard/principal", views.Render("principal-dashboard"))
		r.Get("/dashboard/principal/*", views.Render("principal-dashboard"))
	})
	r.Group(func(r chi.Router) {
		r.Use(Gated(sessions, domain.RoleAgent))
		r.Get("/dashboard/agent", views.Render("agent-dashboard"))
		r.Get("/dashboard/agent/*", views.Render("agent-dashboard"))
	})
	r.Group(func(r chi.Router) {
		r.Use(Gated(sessions, domain.RoleCustomer))
		r.Get("/dashboard/customer", views.Render("customer-dashboard"))
		r.Get("/dashboard/customer/*", views.Render("customer-dashboard"))
	})

	// Account state endpoints: any authenticated role.
	addressHandler := NewAddressHandler(scopes, logger)
	paymentHandler := NewPaymentHandler(scopes, logger)

	r.Route("/api/v1/me", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(Gated(sessions))

		r.Get("/addresses", addressHandler.List)
		r.Post("/addresses", addressHandler.Create)
		r.Get("/addresses/default", addressHandler.GetDefault)
		r.Put("/addresses/{id}", addressHandler.Update)
		r.Delete("/addresses/{id}", addressHandler.Delete)
		r.Post("/addresses/{id}/default", addressHandler.SetDefault)

		r.Get("/payment-methods", paymentHandler.List)
		r.Post("/payment-methods", paymentHandler.Create)
		r.Get("/payment-methods/default", paymentHandler.GetDefault)
		r.Put("/payment-methods/{id}", paymentHandler.Update)
		r.Delete("/payment-methods/{id}", paymentHandler.Delete)
		r.Post("/payment-methods/{id}/default", paymentHandler.SetDefault)
	})

	return r
}
