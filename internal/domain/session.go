package domain

import "time"

// Session is one login of a user. The bearer issued at login names it, and
// logging out disables it for good; disabled sessions are kept for auditing.
type Session struct {
	SessionID string    `json:"id" dynamodbav:"session_id"`
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	Enable    bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
	User      *User     `json:"user,omitempty" dynamodbav:"-"`
}

// Active reports whether bearers issued for the session are still honoured.
func (s *Session) Active() bool { return s != nil && s.Enable }
