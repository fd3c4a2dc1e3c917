package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/spit-hierarchy/spit-backend/pkg/jwt"
)

// NewRouter assembles the HTTP API. Read endpoints are public; vote
// submission and sync triggers require a valid member token.
func NewRouter(handlers *Handlers, jwtService jwt.Service, registry *prometheus.Registry, rps rate.Limit, burst int) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	limiter := NewIPRateLimiter(rps, burst)

	r.Get("/healthz", handlers.HandleHealthz)
	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(RateLimitMiddleware(limiter))

		// Public reads
		r.Get("/rankings/{rankingID}", handlers.HandleGetRankingView)
		r.Get("/rankings/{rankingID}/items/{rapperID}/chart", handlers.HandlePositionChart)
		r.Get("/rankings/{rankingID}/export", handlers.HandleExportStandings)
		r.Get("/rappers", handlers.HandleListRappers)
		r.Get("/rappers/{rapperID}", handlers.HandleGetRapper)

		// Member-only writes
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(jwtService))
			r.Post("/rankings/{rankingID}/votes", handlers.HandleSubmitVote)
			r.Post("/rappers/{rapperID}/sync", handlers.HandleRequestSync)
		})
	})

	return r
}
