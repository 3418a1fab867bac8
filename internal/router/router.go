package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ljosc/discuss/internal/guard"
	"github.com/ljosc/discuss/internal/metrics"
	"github.com/ljosc/discuss/internal/middleware"
	"github.com/ljosc/discuss/internal/setup"
)

// Pages is the route table the guard decides on. It must list every
// route registered in New.
var Pages = []guard.Route{
	{Pattern: "/", RequiresAuth: true},
	{Pattern: "/compose", RequiresAuth: true},
	{Pattern: "/thread/{id}", RequiresAuth: true},
	{Pattern: "/thread/{id}/reply", RequiresAuth: true},
	{Pattern: "/thread/{id}/like", RequiresAuth: true},
	{Pattern: "/logout", RequiresAuth: true},
	{Pattern: "/api/state"},
	{Pattern: "/metrics"},
}

func New(deps *setup.Dependencies) *chi.Mux {
	h := deps.Handler
	cfg := deps.Config
	notFound := http.HandlerFunc(h.NotFoundHandler)

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(middleware.SecurityHeadersWithCSP(cfg.SecureCookies, middleware.PageCSP))
	r.Use(middleware.CSRF(cfg.SecureCookies))
	r.Use(middleware.NewGuard(guard.New(Pages...), h.Session, cfg.SecureCookies, notFound).Handler)
	r.NotFound(notFound)
	// the guard matches paths, not methods
	r.MethodNotAllowed(notFound)

	r.Handle("/metrics", promhttp.Handler())

	// session state for other tabs; cors treats an empty origin list as
	// "allow all", so it is only mounted when origins are configured
	r.Route("/api", func(r chi.Router) {
		if len(cfg.AllowedOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: cfg.AllowedOrigins,
				AllowedMethods: []string{http.MethodGet},
				MaxAge:         300,
			}))
		}
		r.Get("/state", h.StateHandler)
	})

	r.Get("/login", h.LoginGetHandler)
	r.Post("/login", h.LoginPostHandler)

	r.Group(func(r chi.Router) {
		r.Use(deps.Liveness.Handler)
		r.Get("/", h.HomeGetHandler)
		r.Post("/compose", h.ComposePostHandler)
		r.Get("/thread/{id}", h.ThreadGetHandler)
		r.Post("/thread/{id}/reply", h.ReplyPostHandler)
		r.Post("/thread/{id}/like", h.LikePostHandler)
		r.Post("/logout", h.LogoutHandler)
	})

	return r
}
