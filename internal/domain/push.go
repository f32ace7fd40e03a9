package domain

// PushMessage is the fixed payload handed to a push relay. EventID is "" when
// the notification is not tied to an event.
type PushMessage struct {
	Token   string `json:"token"`
	Title   string `json:"title"`
	Message string `json:"message"`
	EventID string `json:"eventId"`
}
