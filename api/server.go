/*
server.go - Router construction

PURPOSE:
  Wires the HTTP handlers into a chi router with the standard middleware
  stack (request IDs, logging, panic recovery) and CORS for browser
  frontends.

SEE ALSO:
  - handlers.go: Endpoint implementations
  - cmd/server/main.go: Server lifecycle
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds the full API surface on top of the given handler.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.Cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Actor"},
		ExposedHeaders:   []string{"X-Total-Count"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/clients", func(r chi.Router) {
			r.Get("/", h.ListClients)
			r.Post("/", h.CreateClient)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetClient)
				r.Patch("/", h.UpdateClient)
				r.Delete("/", h.DeleteClient)
				r.Get("/status", h.ClientStatus)
				r.Get("/payments", h.ClientPayments)
				r.Get("/attendance", h.ClientAttendance)
			})
		})

		r.Route("/payments", func(r chi.Router) {
			r.Get("/", h.ListPayments)
			r.Post("/", h.CreatePayment)
			r.Get("/{id}", h.GetPayment)
			r.Delete("/{id}", h.DeletePayment)
		})

		r.Post("/attendance", h.Checkin)

		r.Route("/reports", func(r chi.Router) {
			r.Get("/revenue", h.RevenueSeries)
			r.Get("/revenue/kpis", h.RevenueKPIs)
			r.Get("/revenue/breakdown", h.RevenueBreakdown)
			r.Get("/attendance", h.AttendanceSeries)
			r.Get("/new_clients", h.NewClientsSeries)
		})
	})

	return r
}
