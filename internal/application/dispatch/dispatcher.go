package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/event-notify/internal/application/preference"
	"github.com/event-notify/internal/domain"
	"github.com/event-notify/internal/pkg/id"
	"github.com/event-notify/internal/pkg/metrics"
)

const (
	defaultPushTimeout    = 10 * time.Second
	defaultMaxConcurrency = 16
	defaultWaveBudget     = 3 * time.Second
)

// Message is the content shared by every recipient of a dispatch.
type Message struct {
	SenderID   string  `json:"-"`
	SenderName string  `json:"-"`
	EventID    *string `json:"event_id"`
	EventName  *string `json:"event_name"`
	TemplateID *string `json:"template_id,omitempty"`
	Type       string  `json:"type" validate:"required_without=TemplateID,omitempty,slug"`
	Title      string  `json:"title" validate:"required_without=TemplateID,max=200"`
	Message    string  `json:"message" validate:"required_without=TemplateID,max=2000"`
	Important  bool    `json:"important"`
}

// Request addresses a Message to one recipient.
type Request struct {
	RecipientID string `json:"recipient_id" validate:"required"`
	Message
}

type admissionGate interface {
	Allow(ctx context.Context, recipientID string) preference.Decision
}

type recordStore interface {
	Put(ctx context.Context, n *domain.Notification) error
}

type auditWriter interface {
	Record(ctx context.Context, entry domain.NotificationLog)
}

type pushDeliverer interface {
	Deliver(ctx context.Context, recipientID, title, message string, eventID *string)
}

type Deps struct {
	Gate    admissionGate
	Records recordStore
	Audit   auditWriter
	Push    pushDeliverer

	PushTimeout    time.Duration
	MaxConcurrency int
	// WaveBudget is the time allowed for one wave of MaxConcurrency
	// concurrent dispatches in a bulk send.
	WaveBudget time.Duration
}

// Dispatcher runs the single-recipient pipeline (gate, record, audit, push) and
// fans it out for bulk sends.
type Dispatcher struct {
	gate    admissionGate
	records recordStore
	audit   auditWriter
	push    pushDeliverer

	pushTimeout    time.Duration
	maxConcurrency int
	waveBudget     time.Duration
	now            func() time.Time

	inflight sync.WaitGroup
}

func New(deps Deps) *Dispatcher {
	d := &Dispatcher{
		gate:           deps.Gate,
		records:        deps.Records,
		audit:          deps.Audit,
		push:           deps.Push,
		pushTimeout:    deps.PushTimeout,
		maxConcurrency: deps.MaxConcurrency,
		waveBudget:     deps.WaveBudget,
		now:            func() time.Time { return time.Now().UTC() },
	}
	if d.pushTimeout <= 0 {
		d.pushTimeout = defaultPushTimeout
	}
	if d.maxConcurrency < 1 {
		d.maxConcurrency = defaultMaxConcurrency
	}
	if d.waveBudget <= 0 {
		d.waveBudget = defaultWaveBudget
	}
	return d
}

// BulkBudget is how long a BulkDispatch over n recipients may take: one wave
// budget per MaxConcurrency recipients.
func (d *Dispatcher) BulkBudget(n int) time.Duration {
	waves := max(1, (n+d.maxConcurrency-1)/d.maxConcurrency)
	return time.Duration(waves) * d.waveBudget
}

// Dispatch notifies one recipient. It returns nil when the notification was
// recorded or the recipient opted out, and an error only when the record could
// not be persisted. Exactly one audit entry is written per call. Once started a
// dispatch is not cancelled by ctx.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) error {
	ctx = context.WithoutCancel(ctx)
	entry := domain.NotificationLog{
		SenderID:    req.SenderID,
		SenderName:  req.SenderName,
		RecipientID: req.RecipientID,
		EventID:     req.EventID,
		EventName:   req.EventName,
		Type:        req.Type,
		Title:       req.Title,
		Message:     req.Message.Message,
	}

	decision := d.gate.Allow(ctx, req.RecipientID)
	if decision.Profile != nil {
		entry.RecipientName = decision.Profile.Name
	}
	if !decision.Allowed {
		entry.Status = domain.LogStatusBlocked
		d.finish(ctx, entry)
		slog.Info("notification blocked by user preference", "recipient_id", req.RecipientID, "type", req.Type)
		return nil
	}

	n := &domain.Notification{
		NotificationID: id.New(),
		UserID:         req.RecipientID,
		EventID:        req.EventID,
		EventName:      req.EventName,
		Type:           req.Type,
		Title:          req.Title,
		Message:        req.Message.Message,
		Important:      req.Important,
		CreatedAt:      d.now(),
	}
	if err := d.records.Put(ctx, n); err != nil {
		entry.Status = domain.LogStatusFailed
		d.finish(ctx, entry)
		slog.Error("failed to create notification", "recipient_id", req.RecipientID, "err", err)
		return fmt.Errorf("create notification: %w", err)
	}

	entry.Status = domain.LogStatusSent
	entry.NotificationID = &n.NotificationID
	d.finish(ctx, entry)
	d.deliver(ctx, n)
	return nil
}

func (d *Dispatcher) finish(ctx context.Context, entry domain.NotificationLog) {
	d.audit.Record(ctx, entry)
	metrics.Dispatches.WithLabelValues(entry.Status).Inc()
}

// deliver pushes the notification in the background. The caller's outcome is
// already decided; push errors are handled inside the push client.
func (d *Dispatcher) deliver(ctx context.Context, n *domain.Notification) {
	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()
		pctx, cancel := context.WithTimeout(ctx, d.pushTimeout)
		defer cancel()
		d.push.Deliver(pctx, n.UserID, n.Title, n.Message, n.EventID)
	}()
}

// Wait blocks until every background push delivery started so far has returned.
func (d *Dispatcher) Wait() {
	d.inflight.Wait()
}
