package domain

import "time"

// Delivery outcomes recorded on a NotificationLog.
const (
	LogStatusSent    = "sent"
	LogStatusBlocked = "blocked_user_preference"
	LogStatusFailed  = "failed"
)

// System sender identity used when no human sender is attached to a dispatch.
const (
	SystemSenderID   = "system"
	SystemSenderName = "System"
	UnknownRecipient = "Unknown"
)

// NotificationLog is the immutable audit record of one dispatch attempt.
// NotificationID is nil when no notification record was created.
type NotificationLog struct {
	LogID          string    `json:"id" dynamodbav:"log_id"`
	NotificationID *string   `json:"notification_id,omitempty" dynamodbav:"notification_id,omitempty"`
	SenderID       string    `json:"sender_id" dynamodbav:"sender_id"`
	SenderName     string    `json:"sender_name" dynamodbav:"sender_name"`
	RecipientID    string    `json:"recipient_id" dynamodbav:"recipient_id"`
	RecipientName  string    `json:"recipient_name" dynamodbav:"recipient_name"`
	EventID        *string   `json:"event_id,omitempty" dynamodbav:"event_id,omitempty"`
	EventName      *string   `json:"event_name,omitempty" dynamodbav:"event_name,omitempty"`
	Type           string    `json:"type" dynamodbav:"type"`
	Title          string    `json:"title" dynamodbav:"title"`
	Message        string    `json:"message" dynamodbav:"message"`
	Timestamp      time.Time `json:"timestamp" dynamodbav:"timestamp"`
	Status         string    `json:"status" dynamodbav:"status"`
}

// LogFilter narrows an audit log listing. Empty fields match everything.
// Query is matched case-insensitively against sender name, recipient name and title.
type LogFilter struct {
	RecipientID string
	Status      string
	Query       string
	Limit       int
}
