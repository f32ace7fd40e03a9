package domain

import "time"

// Notification is one message addressed to one recipient. The recipient owns it;
// the dispatcher only creates it.
type Notification struct {
	NotificationID string    `json:"id" dynamodbav:"notification_id"`
	UserID         string    `json:"user_id" dynamodbav:"user_id"`
	EventID        *string   `json:"event_id,omitempty" dynamodbav:"event_id,omitempty"`
	EventName      *string   `json:"event_name,omitempty" dynamodbav:"event_name,omitempty"`
	Type           string    `json:"type" dynamodbav:"type"`
	Title          string    `json:"title" dynamodbav:"title"`
	Message        string    `json:"message" dynamodbav:"message"`
	Read           bool      `json:"read" dynamodbav:"read"`
	Important      bool      `json:"important" dynamodbav:"important"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
}

// Well-known notification types. Type is free-form; these are the ones the
// event flows emit.
const (
	NotificationTypeSelection    = "selection"
	NotificationTypeReminder     = "reminder"
	NotificationTypeWaitlist     = "waitlist"
	NotificationTypeCancellation = "cancellation"
	NotificationTypeBroadcast    = "broadcast"
)
