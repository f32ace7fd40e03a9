package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/event-notify/internal/domain"
)

type auditLister interface {
	List(ctx context.Context, f domain.LogFilter) ([]domain.NotificationLog, error)
}

// AuditHandler serves the admin view of the notification audit trail.
type AuditHandler struct {
	logs auditLister
}

func NewAuditHandler(logs auditLister) *AuditHandler {
	return &AuditHandler{logs: logs}
}

// List supports ?q= (sender name, recipient name or title), ?recipient_id=,
// ?status= and ?limit=.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := domain.LogFilter{
		RecipientID: q.Get("recipient_id"),
		Status:      q.Get("status"),
		Query:       q.Get("q"),
	}
	switch f.Status {
	case "", domain.LogStatusSent, domain.LogStatusBlocked, domain.LogStatusFailed:
	default:
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 1000 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		f.Limit = n
	}
	logs, err := h.logs.List(r.Context(), f)
	if err != nil {
		httpError(w, err)
		return
	}
	if logs == nil {
		logs = []domain.NotificationLog{}
	}
	writeJSON(w, http.StatusOK, ListEnvelope[domain.NotificationLog]{Data: logs, Count: len(logs)})
}
