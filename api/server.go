/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request, also attached to engine log entries
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. Metrics:    Prometheus request count and latency per route
  5. CORS:       Cross-origin requests for frontend (cookies allowed)

ROUTE GROUPS:
  /api/frequencies      Known codes
  /api/periods/*        Engine operations
  /api/ranges/*         Report range for the view range
  /api/session/*        Custom range
  /api/preferences      Stored settings
  /api/reports/*        Period-over-period totals
  /metrics              Prometheus scrape endpoint

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	origins := h.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(h.instrument)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/frequencies", h.ListFrequencies)

		// Period routes
		r.Route("/periods", func(r chi.Router) {
			r.Get("/start", h.StartOfPeriod)
			r.Get("/end", h.EndOfPeriod)
			r.Get("/end-of-x", h.EndOfX)
			r.Get("/add", h.AddPeriod)
			r.Get("/subtract", h.SubtractPeriod)
			r.Get("/show", h.ShowPeriod)
			r.Get("/blocks", h.BlockPeriods)
			r.Get("/list", h.ListPeriods)
			r.Get("/format", h.Formats)
		})

		// Range routes
		r.Route("/ranges", func(r chi.Router) {
			r.Get("/current", h.CurrentRange)
		})

		// Session routes
		r.Route("/session", func(r chi.Router) {
			r.Get("/range", h.GetSessionRange)
			r.Put("/range", h.SetSessionRange)
			r.Delete("/range", h.ClearSessionRange)
		})

		// Preference routes
		r.Get("/preferences", h.GetPreferences)
		r.Put("/preferences", h.SavePreferences)
		r.Delete("/preferences", h.DeletePreferences)

		// Report routes
		r.Route("/reports", func(r chi.Router) {
			r.Post("/blocks", h.BlockReport)
		})
	})

	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics.Handler())
	}

	return r
}

// instrument records request count and latency under the matched route
// pattern, so /api/periods/start?date=... is one series.
func (h *Handler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Metrics == nil {
			next.ServeHTTP(w, r)
			return
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		h.Metrics.Requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		h.Metrics.RequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
