package http

import (
	"github.com/event-notify/internal/application/audit"
	"github.com/event-notify/internal/application/dispatch"
	"github.com/event-notify/internal/application/preference"
	"github.com/event-notify/internal/infrastructure/dynamo"
	jwtinfra "github.com/event-notify/internal/infrastructure/jwt"
)

// Deps holds the repositories and pipeline components the router wires into
// handlers. The dispatcher is built by the caller so it can be drained on shutdown.
type Deps struct {
	UserRepo         *dynamo.UserRepo
	SessionRepo      *dynamo.SessionRepo
	NotificationRepo *dynamo.NotificationRepo
	TemplateRepo     *dynamo.TemplateRepo
	Dispatcher       *dispatch.Dispatcher
	Audit            *audit.Writer
	Gate             *preference.Gate
	JWTProvider      *jwtinfra.Provider
	Health           *dynamo.HealthCheck
}
