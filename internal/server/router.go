// Package server assembles the HTTP router.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/reazulislam1487/event-hub-server/internal/auth"
	"github.com/reazulislam1487/event-hub-server/internal/events"
	"github.com/reazulislam1487/event-hub-server/internal/metrics"
	"github.com/reazulislam1487/event-hub-server/internal/middleware"
	"github.com/reazulislam1487/event-hub-server/internal/respond"
	"github.com/reazulislam1487/event-hub-server/internal/uploads"
)

// Pinger reports whether the document store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger      zerolog.Logger
	CORSOrigins []string

	Auth     *auth.Handler
	Verifier middleware.Verifier
	Events   *events.Handler
	Uploads  *uploads.Handler
	Health   Pinger

	// AuthLimiter throttles register and login. Nil disables it.
	AuthLimiter *middleware.IPRateLimiter
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(middleware.CorrelationID(d.Logger))
	r.Use(middleware.RequestLogging)
	r.Use(metrics.HTTPMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	requireAuth := middleware.RequireAuth(d.Verifier)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Hello Event Zone"))
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := d.Health.Ping(r.Context()); err != nil {
			respond.Error(w, r, http.StatusServiceUnavailable, "database unavailable", err)
			return
		}
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Credentials
	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if d.AuthLimiter != nil {
				r.Use(d.AuthLimiter.Middleware)
			}
			r.Post("/register", d.Auth.Register)
			r.Post("/login", d.Auth.Login)
		})
		r.With(requireAuth).Post("/logout", d.Auth.Logout)
	})
	r.With(requireAuth).Get("/api/users", d.Auth.ListUsers)

	// Event catalog
	r.Get("/events", d.Events.List)
	r.Get("/events/limited", d.Events.Recent)
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/add/event", d.Events.Create)
		r.Patch("/events/{id}", d.Events.Join)
		r.Get("/my-events", d.Events.ListByOwner)
		r.Put("/my-events/{id}", d.Events.Update)
		r.Delete("/my-events/{id}", d.Events.Delete)
	})

	// Photos
	r.With(requireAuth).Post("/uploads/photo", d.Uploads.Upload)
	r.Get("/uploads/*", d.Uploads.Download)

	return r
}
