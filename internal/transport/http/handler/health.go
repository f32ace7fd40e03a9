package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type readinessChecker interface {
	Ready(ctx context.Context) error
}

// HealthHandler answers liveness ("ping") and readiness ("ready") checks.
type HealthHandler struct {
	checker readinessChecker
}

// NewHealthHandler takes the store check used by "ready"; nil makes "ready"
// behave like "ping".
func NewHealthHandler(checker readinessChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "action") {
	case "ping":
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "pong"})
	case "ready":
		if h.checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
			defer cancel()
			if err := h.checker.Ready(ctx); err != nil {
				httpError(w, err)
				return
			}
		}
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "ready"})
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}
