// Package api exposes the repository, directory and ledger call surface
// over HTTP for the UI layer.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/subscry/subscry/internal/participants"
	"github.com/subscry/subscry/internal/subscriptions"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(repo *subscriptions.Repository, dir *participants.Directory) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	subHandler := NewSubscriptionHandler(repo)
	partHandler := NewParticipantHandler(dir)
	ledgerHandler := NewLedgerHandler(repo, dir)
	backupHandler := NewBackupHandler(repo)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/subscriptions", func(r chi.Router) {
			r.Post("/", subHandler.Create)
			r.Get("/", subHandler.List)
			r.Get("/{id}", subHandler.Get)
			r.Patch("/{id}", subHandler.Update)
			r.Delete("/{id}", subHandler.Delete)
			r.Post("/{id}/pay", subHandler.MarkAsPaid)
		})

		r.Route("/participants", func(r chi.Router) {
			r.Get("/", partHandler.List)
			r.Post("/", partHandler.Create)
			r.Patch("/{id}", partHandler.Update)
			r.Delete("/{id}", partHandler.Delete)
			r.Post("/{id}/me", partHandler.SetAsMe)
			r.Put("/{id}/subscriptions/{subscriptionID}", partHandler.AddLink)
			r.Delete("/{id}/subscriptions/{subscriptionID}", partHandler.RemoveLink)
		})

		r.Route("/ledger", func(r chi.Router) {
			r.Get("/totals", ledgerHandler.Totals)
			r.Post("/migrate", ledgerHandler.Migrate)
		})

		r.Get("/backup", backupHandler.Export)
		r.Post("/backup", backupHandler.Import)
	})

	return r
}
