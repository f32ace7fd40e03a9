package notification

import (
	"context"
	"fmt"

	"github.com/event-notify/internal/domain"
)

// Service exposes a recipient's notifications. Every operation that names a
// notification id checks that it belongs to userID.
type Service interface {
	List(ctx context.Context, userID string, read *bool) ([]domain.Notification, error)
	Get(ctx context.Context, notificationID, userID string) (*domain.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkAsRead(ctx context.Context, notificationID, userID string) error
	MarkAllAsRead(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, notificationID, userID string) error
	DeleteAll(ctx context.Context, userID string) (int, error)
}

type notificationStore interface {
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID string, read *bool) ([]domain.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkAsRead(ctx context.Context, notificationID string) error
	MarkAllAsRead(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, notificationID string) error
	DeleteAllByUser(ctx context.Context, userID string) (int, error)
}

type service struct {
	repo notificationStore
}

func NewService(repo notificationStore) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, userID string, read *bool) ([]domain.Notification, error) {
	return s.repo.ListByUser(ctx, userID, read)
}

func (s *service) Get(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	return s.owned(ctx, notificationID, userID)
}

func (s *service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *service) MarkAsRead(ctx context.Context, notificationID, userID string) error {
	n, err := s.owned(ctx, notificationID, userID)
	if err != nil {
		return err
	}
	if n.Read {
		return nil
	}
	return s.repo.MarkAsRead(ctx, notificationID)
}

// MarkAllAsRead returns the number of notifications that changed state.
func (s *service) MarkAllAsRead(ctx context.Context, userID string) (int, error) {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *service) Delete(ctx context.Context, notificationID, userID string) error {
	if _, err := s.owned(ctx, notificationID, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, notificationID)
}

func (s *service) DeleteAll(ctx context.Context, userID string) (int, error) {
	return s.repo.DeleteAllByUser(ctx, userID)
}

func (s *service) owned(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	n, err := s.repo.Get(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, fmt.Errorf("forbidden: %w", domain.ErrForbidden)
	}
	return n, nil
}
