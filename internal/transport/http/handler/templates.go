package handler

import (
	"net/http"

	"github.com/event-notify/internal/application/template"
	"github.com/event-notify/internal/domain"
	"github.com/go-chi/chi/v5"
)

// TemplateHandler serves admin management of notification templates.
type TemplateHandler struct {
	svc template.Service
}

func NewTemplateHandler(svc template.Service) *TemplateHandler {
	return &TemplateHandler{svc: svc}
}

// List supports ?q= matched against name, type and title.
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		httpError(w, err)
		return
	}
	if list == nil {
		list = []domain.NotificationTemplate{}
	}
	writeJSON(w, http.StatusOK, ListEnvelope[domain.NotificationTemplate]{Data: list, Count: len(list)})
}

func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req domain.CreateTemplateRequest
	if !decodeValid(w, r, &req) {
		return
	}
	t, err := h.svc.Create(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateTemplateRequest
	if !decodeValid(w, r, &req) {
		return
	}
	t, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// SetActive switches a template on or off.
func (h *TemplateHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	var req domain.SetTemplateActiveRequest
	if !decodeValid(w, r, &req) {
		return
	}
	t, err := h.svc.SetActive(r.Context(), chi.URLParam(r, "id"), *req.Active)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "template deleted"})
}
