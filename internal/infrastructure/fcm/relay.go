package fcm

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/event-notify/internal/config"
	"github.com/event-notify/internal/domain"
	"google.golang.org/api/option"
)

// sender is the subset of *messaging.Client the relay needs.
type sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// Relay delivers push messages through Firebase Cloud Messaging.
type Relay struct {
	client sender
}

func NewRelay(ctx context.Context, cfg *config.Config) (*Relay, error) {
	if cfg.FirebaseCredentialsPath == "" {
		return nil, errors.New("FIREBASE_CREDENTIALS_PATH is not set")
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(cfg.FirebaseCredentialsPath))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init messaging client: %w", err)
	}
	return &Relay{client: client}, nil
}

func (r *Relay) Send(ctx context.Context, msg domain.PushMessage) error {
	if _, err := r.client.Send(ctx, buildMessage(msg)); err != nil {
		return fmt.Errorf("fcm send: %w", err)
	}
	return nil
}

// buildMessage carries the payload both as data (read by the app when it is in
// the foreground) and as a notification block (shown by the OS otherwise).
func buildMessage(msg domain.PushMessage) *messaging.Message {
	return &messaging.Message{
		Token: msg.Token,
		Data: map[string]string{
			"title":   msg.Title,
			"message": msg.Message,
			"eventId": msg.EventID,
		},
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Message,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "event_notifications",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}
}
