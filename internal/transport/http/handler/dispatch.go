package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/event-notify/internal/application/dispatch"
	"github.com/event-notify/internal/domain"
)

type dispatcher interface {
	Dispatch(ctx context.Context, req dispatch.Request) error
	BulkDispatch(ctx context.Context, recipientIDs []string, msg dispatch.Message) dispatch.BulkResult
	BulkBudget(n int) time.Duration
}

// bulkResponseSlack covers request decoding and writing the aggregate.
const bulkResponseSlack = 5 * time.Second

type templateResolver interface {
	Resolve(ctx context.Context, templateID string) (*domain.NotificationTemplate, error)
}

type profileReader interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

// DispatchHandler lets organizers notify one or many recipients. The caller is
// recorded as the sender.
type DispatchHandler struct {
	d         dispatcher
	profiles  profileReader
	templates templateResolver
}

func NewDispatchHandler(d dispatcher, profiles profileReader, templates templateResolver) *DispatchHandler {
	return &DispatchHandler{d: d, profiles: profiles, templates: templates}
}

// bulkRequest is capped at 1000 recipients per call; larger audiences are
// split by the caller.
type bulkRequest struct {
	RecipientIDs []string `json:"recipient_ids" validate:"max=1000,dive,required"`
	dispatch.Message
}

func (h *DispatchHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req dispatch.Request
	if !decodeValid(w, r, &req) {
		return
	}
	if err := h.applyTemplate(r.Context(), &req.Message); err != nil {
		httpError(w, err)
		return
	}
	h.stampSender(r.Context(), claims.UserID, &req.Message)
	if err := h.d.Dispatch(r.Context(), req); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, MessageEnvelope{Message: "dispatched"})
}

// Bulk returns once every recipient has been processed. The server write
// timeout is extended to cover the whole run.
func (h *DispatchHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req bulkRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if err := h.applyTemplate(r.Context(), &req.Message); err != nil {
		httpError(w, err)
		return
	}
	deadline := time.Now().Add(h.d.BulkBudget(len(req.RecipientIDs)) + bulkResponseSlack)
	if err := http.NewResponseController(w).SetWriteDeadline(deadline); err != nil && !errors.Is(err, http.ErrNotSupported) {
		slog.Warn("could not extend write deadline for bulk dispatch", "err", err)
	}
	h.stampSender(r.Context(), claims.UserID, &req.Message)
	writeJSON(w, http.StatusOK, h.d.BulkDispatch(r.Context(), req.RecipientIDs, req.Message))
}

// applyTemplate fills type, title and message from the referenced template.
// Fields the caller set explicitly are kept.
func (h *DispatchHandler) applyTemplate(ctx context.Context, msg *dispatch.Message) error {
	if msg.TemplateID == nil {
		return nil
	}
	t, err := h.templates.Resolve(ctx, *msg.TemplateID)
	if err != nil {
		return err
	}
	if msg.Type == "" {
		msg.Type = t.Type
	}
	if msg.Title == "" {
		msg.Title = t.Title
	}
	if msg.Message == "" {
		msg.Message = t.Message
	}
	return nil
}

func (h *DispatchHandler) stampSender(ctx context.Context, userID string, msg *dispatch.Message) {
	msg.SenderID = userID
	if u, err := h.profiles.Get(ctx, userID); err == nil {
		msg.SenderName = u.Name
	}
}
