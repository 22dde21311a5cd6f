package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig carries the authentication settings the caller middleware
// needs.
type RouterConfig struct {
	JWTSigningKey     string
	TrustCallerHeader bool
}

// NewRouter wires all public endpoints. Reads are open; every mutating route
// and owner-scoped read goes through the caller middleware.
func NewRouter(h *Handler, cfg RouterConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Get("/records/search", h.handleSearch)
	r.Get("/records/count", h.handleCount)
	r.Get("/records/{id}", h.handleGetRecord)
	r.Get("/records/{id}/locked", h.handleIsLocked)
	r.Get("/records/{id}/memorial", h.handleGetMemorial)
	r.Get("/identity/bindings", h.handleLookupBinding)
	r.Get("/roles/check", h.handleCheckRole)
	r.Get("/audit/events", h.handleAuditEvents)

	r.Group(func(r chi.Router) {
		r.Use(RequireCaller([]byte(cfg.JWTSigningKey), cfg.TrustCallerHeader, logger))

		r.Post("/records", h.handleCreateRecord)
		r.Post("/records/identity", h.handleCreateIdentityRecord)
		r.Post("/records/{id}/verify", h.handleVerify)
		r.Post("/records/{id}/transfer", h.handleTransfer)
		r.Put("/records/{id}/memorial", h.handleAttachMemorial)
		r.Post("/identity/bindings", h.handleBind)
		r.Post("/roles/grant", h.handleGrantRole)
		r.Post("/roles/revoke", h.handleRevokeRole)
	})

	return r
}
