package pushtoken

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.uber.org/multierr"
)

// CacheKey is the single local slot holding a token not yet written to the profile.
const CacheKey = "cached_push_token"

// Session reports the user of the active session, if any.
type Session interface {
	CurrentUserID(ctx context.Context) (string, bool)
}

// ProfileWriter stores a push token on the user's profile.
type ProfileWriter interface {
	SetPushToken(ctx context.Context, userID, token string) error
}

// Cache is a local persistent key/value store.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Manager keeps a device's push token in step with the profile store. A token
// that cannot be written yet is parked in the cache and moved on the next
// reconcile.
type Manager struct {
	mu       sync.Mutex
	session  Session
	profiles ProfileWriter
	cache    Cache
}

func NewManager(session Session, profiles ProfileWriter, cache Cache) *Manager {
	return &Manager{session: session, profiles: profiles, cache: cache}
}

// OnTokenIssued handles a token rotation. The token is cached first so a failed
// profile write never loses it, and written to the profile when a session is
// active. It fails only when the token ends up in neither place.
func (m *Manager) OnTokenIssued(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var cacheErr error
	if err := m.cache.Set(ctx, CacheKey, token); err != nil {
		slog.Warn("failed to cache push token", "err", err)
		cacheErr = fmt.Errorf("cache push token: %w", err)
	}
	userID, ok := m.session.CurrentUserID(ctx)
	if !ok {
		if cacheErr == nil {
			slog.Info("no active session, push token cached")
		}
		return cacheErr
	}
	flushErr := m.flush(ctx, userID, token)
	if flushErr == nil || cacheErr == nil {
		// saved to the profile, or parked in the cache for the next reconcile
		return nil
	}
	return multierr.Combine(cacheErr, flushErr)
}

// ReconcileOnSessionStart moves a cached token to the profile. It reports
// whether a profile write happened; with nothing cached it is a no-op.
func (m *Manager) ReconcileOnSessionStart(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	userID, ok := m.session.CurrentUserID(ctx)
	if !ok {
		return false, nil
	}
	token, found, err := m.cache.Get(ctx, CacheKey)
	if err != nil {
		return false, fmt.Errorf("read cached push token: %w", err)
	}
	if !found || token == "" {
		return false, nil
	}
	if err := m.flush(ctx, userID, token); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Manager) flush(ctx context.Context, userID, token string) error {
	if err := m.profiles.SetPushToken(ctx, userID, token); err != nil {
		slog.Warn("push token write failed, keeping cached copy", "user_id", userID, "err", err)
		return fmt.Errorf("save push token: %w", err)
	}
	if err := m.cache.Delete(ctx, CacheKey); err != nil {
		// profile already holds the token; the next reconcile rewrites it
		slog.Warn("failed to clear cached push token", "user_id", userID, "err", err)
	}
	slog.Info("push token saved to profile", "user_id", userID)
	return nil
}
