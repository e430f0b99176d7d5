package http

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/health", h.Health)
	r.Get("/ws", h.Hub.HandleWS)

	r.Route("/api", func(r chi.Router) {
		r.Route("/workspaces/{id}", func(r chi.Router) {
			r.Post("/confidence", h.CalculateConfidence)

			r.Get("/thresholds", h.GetThresholds)
			r.Put("/thresholds", h.PutThresholds)

			r.Get("/escalation-config", h.GetEscalationConfig)
			r.Put("/escalation-config", h.PutEscalationConfig)

			r.Post("/approvals", h.CreateApproval)
			r.Get("/approvals", h.ListApprovals)
		})

		r.Get("/approvals/{id}", h.GetApproval)
		r.Get("/approvals/{id}/audit", h.GetApprovalAudit)

		r.Post("/escalations/scan", h.TriggerScan)
	})
}
