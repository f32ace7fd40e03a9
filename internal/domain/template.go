package domain

import "time"

// NotificationTemplate is a reusable, admin-managed message body. Only active
// templates can be referenced by a dispatch.
type NotificationTemplate struct {
	TemplateID string    `json:"id" dynamodbav:"template_id"`
	Name       string    `json:"name" dynamodbav:"name"`
	Type       string    `json:"type" dynamodbav:"type"`
	Title      string    `json:"title" dynamodbav:"title"`
	Message    string    `json:"message" dynamodbav:"message"`
	Active     bool      `json:"active" dynamodbav:"active"`
	CreatedBy  string    `json:"created_by" dynamodbav:"created_by"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time `json:"updated" dynamodbav:"updated_at"`
}

// CreateTemplateRequest creates a template. Active defaults to true.
type CreateTemplateRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Type    string `json:"type" validate:"required,slug"`
	Title   string `json:"title" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=2000"`
	Active  *bool  `json:"active"`
}

// UpdateTemplateRequest edits a template. Nil fields are left unchanged; blank
// strings are rejected by the service.
type UpdateTemplateRequest struct {
	Name    *string `json:"name" validate:"omitempty,max=100"`
	Type    *string `json:"type" validate:"omitempty,slug"`
	Title   *string `json:"title" validate:"omitempty,max=200"`
	Message *string `json:"message" validate:"omitempty,max=2000"`
}

// SetTemplateActiveRequest switches a template on or off.
type SetTemplateActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}
