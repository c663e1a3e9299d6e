package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ayush/company-research/backend/internal/plan"
	"github.com/ayush/company-research/backend/internal/research"
)

// limiter returns the rate-limit middleware for a route scope.
type limiter func(scope string) func(http.Handler) http.Handler

func noLimit(string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler { return next }
}

func newRouter(origins []string, researchHandler *research.Handler, planHandler *plan.Handler, limit limiter) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/research", func(r chi.Router) {
			r.Post("/", researchHandler.Create)
			r.Get("/", researchHandler.List)
			r.Get("/{id}", researchHandler.Get)
		})
		r.With(limit("search")).Post("/search", researchHandler.Search)

		r.With(limit("plan")).Post("/generate-plan", planHandler.Generate)
		r.With(limit("chat")).Post("/chat", planHandler.Chat)
		r.Get("/historical/financials", planHandler.Financials)
		r.Post("/parse-plan", planHandler.Parse)
		r.Post("/parse-analysis", planHandler.ParseAnalysis)
	})

	return r
}
