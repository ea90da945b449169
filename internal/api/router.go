// Package api wires the HTTP surface of the service.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/dkruglov/pennyflow/internal/api/handlers"
	"github.com/dkruglov/pennyflow/internal/api/middleware"
)

// Handlers is everything the router needs. Fields must all be non-nil.
type Handlers struct {
	Imports      *handlers.ImportsHandler
	Transactions *handlers.TransactionsHandler
	Categorize   *handlers.CategorizeHandler
	Rules        *handlers.RulesHandler
	Categories   *handlers.CategoriesHandler
	Jobs         *handlers.JobsHandler
}

// NewRouter builds the chi router with the standard middleware chain.
func NewRouter(h Handlers, log zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/imports", h.Imports.UploadCSV)
		r.Get("/imports/{run_id}", func(w http.ResponseWriter, req *http.Request) {
			h.Imports.GetImportRun(w, req, chi.URLParam(req, "run_id"))
		})

		r.Get("/transactions", h.Transactions.ListTransactions)
		r.Put("/transactions/{transaction_id}/category", func(w http.ResponseWriter, req *http.Request) {
			h.Transactions.UpdateCategory(w, req, chi.URLParam(req, "transaction_id"))
		})
		r.Post("/transactions/recategorize", h.Transactions.BulkRecategorize)

		r.Post("/categorize", h.Categorize.CategorizeBatch)

		r.Get("/rules", h.Rules.ListRules)
		r.Delete("/rules/{rule_id}", func(w http.ResponseWriter, req *http.Request) {
			h.Rules.DeleteRule(w, req, chi.URLParam(req, "rule_id"))
		})

		r.Get("/categories", h.Categories.ListCategories)

		r.Get("/jobs", h.Jobs.ListJobs)
		r.Get("/jobs/{job_id}", func(w http.ResponseWriter, req *http.Request) {
			h.Jobs.GetJob(w, req, chi.URLParam(req, "job_id"))
		})
	})

	return r
}
