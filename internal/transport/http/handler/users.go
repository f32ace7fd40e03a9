package handler

import (
	"context"
	"net/http"

	"github.com/event-notify/internal/application/user"
	"github.com/event-notify/internal/domain"
	"github.com/go-chi/chi/v5"
)

type preferenceSetter interface {
	SetEnabled(ctx context.Context, userID string, enabled bool) (*domain.User, error)
}

// UserHandler handles profile endpoints.
type UserHandler struct {
	svc   user.Service
	prefs preferenceSetter
}

func NewUserHandler(svc user.Service, prefs preferenceSetter) *UserHandler {
	return &UserHandler{svc: svc, prefs: prefs}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if !decodeValid(w, r, &req) {
		return
	}
	u, err := h.svc.Register(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	u, err := h.svc.Get(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// SetPushToken stores the caller's device push token.
func (h *UserHandler) SetPushToken(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req domain.UpdatePushTokenRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if err := h.svc.SetPushToken(r.Context(), claims.UserID, req.Token); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "push token saved"})
}

func (h *UserHandler) SetPreferences(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req domain.UpdatePreferencesRequest
	if !decodeValid(w, r, &req) {
		return
	}
	u, err := h.prefs.SetEnabled(r.Context(), claims.UserID, *req.NotificationsEnabled)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// SetRole is admin-only; it promotes or demotes another user.
func (h *UserHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role string `json:"role" validate:"required"`
	}
	if !decodeValid(w, r, &req) {
		return
	}
	u, err := h.svc.SetRole(r.Context(), chi.URLParam(r, "id"), req.Role)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
