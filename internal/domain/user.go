package domain

import "time"

// User is the profile the notification pipeline reads: opt-out flag, push token
// and display name.
type User struct {
	UserID       string `json:"id" dynamodbav:"user_id"`
	Username     string `json:"username" dynamodbav:"username"`
	Email        string `json:"email" dynamodbav:"email"`
	Name         string `json:"name" dynamodbav:"name"`
	PasswordHash string `json:"-" dynamodbav:"password_hash"`
	Role         string `json:"role" dynamodbav:"role"`
	// NotificationsEnabled is nil when the user never set a preference; only an
	// explicit false blocks delivery.
	NotificationsEnabled *bool     `json:"notifications_enabled,omitempty" dynamodbav:"notifications_enabled,omitempty"`
	PushToken            *string   `json:"-" dynamodbav:"push_token,omitempty"`
	Enable               bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt            time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt            time.Time `json:"updated" dynamodbav:"updated_at"`
}

// OptedOut reports whether the user explicitly disabled notifications.
func (u *User) OptedOut() bool {
	return u.NotificationsEnabled != nil && !*u.NotificationsEnabled
}

// Token returns the stored push token, or "" when none is set.
func (u *User) Token() string {
	if u.PushToken == nil {
		return ""
	}
	return *u.PushToken
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
}

type UpdatePreferencesRequest struct {
	NotificationsEnabled *bool `json:"notifications_enabled" validate:"required"`
}

type UpdatePushTokenRequest struct {
	Token string `json:"token" validate:"required"`
}
