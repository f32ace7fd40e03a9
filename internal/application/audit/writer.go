package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/event-notify/internal/domain"
	"github.com/event-notify/internal/pkg/id"
	"github.com/event-notify/internal/pkg/metrics"
)

type logStore interface {
	Append(ctx context.Context, l *domain.NotificationLog) error
	List(ctx context.Context, f domain.LogFilter) ([]domain.NotificationLog, error)
}

// Writer appends one audit entry per dispatch attempt. Appends are best effort:
// a failed write is logged and counted, never returned.
type Writer struct {
	store logStore
	now   func() time.Time
}

func NewWriter(store logStore) *Writer {
	return &Writer{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// Record assigns the log id and timestamp, fills the system sender and unknown
// recipient defaults, and appends the entry.
func (w *Writer) Record(ctx context.Context, entry domain.NotificationLog) {
	entry.LogID = id.New()
	entry.Timestamp = w.now()
	if entry.SenderID == "" {
		entry.SenderID = domain.SystemSenderID
	}
	if entry.SenderName == "" {
		entry.SenderName = domain.SystemSenderName
	}
	if entry.RecipientName == "" {
		entry.RecipientName = domain.UnknownRecipient
	}
	if err := w.store.Append(ctx, &entry); err != nil {
		metrics.AuditWriteFailures.Inc()
		slog.Error("failed to append notification log",
			"log_id", entry.LogID, "recipient_id", entry.RecipientID, "status", entry.Status, "err", err)
	}
}

// List returns audit entries newest first. Limit defaults to 100.
func (w *Writer) List(ctx context.Context, f domain.LogFilter) ([]domain.NotificationLog, error) {
	if f.Limit < 1 {
		f.Limit = 100
	}
	return w.store.List(ctx, f)
}
