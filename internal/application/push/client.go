package push

import (
	"context"
	"errors"
	"log/slog"

	"github.com/event-notify/internal/domain"
	"github.com/event-notify/internal/pkg/metrics"
)

// Message is the payload sent to a relay.
type Message = domain.PushMessage

// Relay is an external push delivery channel (FCM, SNS mobile push).
type Relay interface {
	Send(ctx context.Context, msg Message) error
}

type tokenReader interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

// Client looks up a recipient's push token and hands the message to the relay.
// Nothing it does is returned as an error: a missing token is an expected skip
// and relay failures are logged.
type Client struct {
	profiles tokenReader
	relay    Relay
}

// NewClient builds a push client. A nil relay disables delivery.
func NewClient(profiles tokenReader, relay Relay) *Client {
	return &Client{profiles: profiles, relay: relay}
}

func (c *Client) Deliver(ctx context.Context, recipientID, title, message string, eventID *string) {
	log := slog.With("recipient_id", recipientID)
	if c.relay == nil {
		metrics.PushDeliveries.WithLabelValues("disabled").Inc()
		log.Debug("push relay disabled, skipping")
		return
	}
	u, err := c.profiles.Get(ctx, recipientID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.PushDeliveries.WithLabelValues("no_token").Inc()
			log.Info("no profile for recipient, skipping push")
			return
		}
		metrics.PushDeliveries.WithLabelValues("lookup_error").Inc()
		log.Warn("push token lookup failed", "err", err)
		return
	}
	token := u.Token()
	if token == "" {
		metrics.PushDeliveries.WithLabelValues("no_token").Inc()
		log.Info("recipient has no push token, skipping push")
		return
	}
	msg := Message{Token: token, Title: title, Message: message}
	if eventID != nil {
		msg.EventID = *eventID
	}
	if err := c.relay.Send(ctx, msg); err != nil {
		metrics.PushDeliveries.WithLabelValues("relay_error").Inc()
		log.Error("push relay send failed", "err", err)
		return
	}
	metrics.PushDeliveries.WithLabelValues("delivered").Inc()
	log.Debug("push delivered")
}
