package preference

import (
	"context"
	"errors"
	"log/slog"

	"github.com/event-notify/internal/domain"
)

type profileStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	SetNotificationsEnabled(ctx context.Context, userID string, enabled bool) error
}

// Decision is the outcome of an admission check. Profile is nil when the
// profile does not exist or could not be read.
type Decision struct {
	Allowed bool
	Profile *domain.User
}

// Gate decides whether a recipient may receive notifications. It fails open:
// a profile read error admits the recipient.
type Gate struct {
	profiles profileStore
}

func NewGate(profiles profileStore) *Gate {
	return &Gate{profiles: profiles}
}

func (g *Gate) Allow(ctx context.Context, recipientID string) Decision {
	u, err := g.profiles.Get(ctx, recipientID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			slog.Warn("preference lookup failed, allowing send", "recipient_id", recipientID, "err", err)
		}
		return Decision{Allowed: true}
	}
	return Decision{Allowed: !u.OptedOut(), Profile: u}
}

// SetEnabled stores the user's opt-in flag.
func (g *Gate) SetEnabled(ctx context.Context, userID string, enabled bool) (*domain.User, error) {
	if err := g.profiles.SetNotificationsEnabled(ctx, userID, enabled); err != nil {
		return nil, err
	}
	return g.profiles.Get(ctx, userID)
}
