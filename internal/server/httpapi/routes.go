package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/secrets/internal/logging"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter mounts every route. gatherer may be nil, in which case
// /metrics is not served.
func NewRouter(h *Handler, log logging.Logger, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(accessLog(log))
	r.Use(chimiddleware.Recoverer)

	r.Get("/", h.Home)
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Get("/auth/google", h.OAuthStart)
	r.Get("/auth/google/secrets", h.OAuthCallback)
	r.Get("/logout", h.Logout)
	r.Post("/logout", h.Logout)
	r.Get("/session", h.Session)

	r.Group(func(r chi.Router) {
		r.Use(h.requireSession)
		r.Get("/secrets", h.Secrets)
		r.Post("/submit", h.Submit)
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return r
}
