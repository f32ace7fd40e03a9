package template

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/event-notify/internal/domain"
	"github.com/event-notify/internal/pkg/id"
)

// Service manages notification templates on behalf of admins and resolves
// them for dispatch.
type Service interface {
	Create(ctx context.Context, createdBy string, req domain.CreateTemplateRequest) (*domain.NotificationTemplate, error)
	Get(ctx context.Context, templateID string) (*domain.NotificationTemplate, error)
	List(ctx context.Context, q string) ([]domain.NotificationTemplate, error)
	Update(ctx context.Context, templateID string, req domain.UpdateTemplateRequest) (*domain.NotificationTemplate, error)
	SetActive(ctx context.Context, templateID string, active bool) (*domain.NotificationTemplate, error)
	Delete(ctx context.Context, templateID string) error
	Resolve(ctx context.Context, templateID string) (*domain.NotificationTemplate, error)
}

type templateStore interface {
	Put(ctx context.Context, t *domain.NotificationTemplate) error
	Replace(ctx context.Context, t *domain.NotificationTemplate) error
	Get(ctx context.Context, templateID string) (*domain.NotificationTemplate, error)
	SetActive(ctx context.Context, templateID string, active bool) (*domain.NotificationTemplate, error)
	Delete(ctx context.Context, templateID string) error
	List(ctx context.Context, q string) ([]domain.NotificationTemplate, error)
}

type service struct {
	repo templateStore
}

func NewService(repo templateStore) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, createdBy string, req domain.CreateTemplateRequest) (*domain.NotificationTemplate, error) {
	now := time.Now().UTC()
	t := &domain.NotificationTemplate{
		TemplateID: id.New(),
		Name:       strings.TrimSpace(req.Name),
		Type:       req.Type,
		Title:      strings.TrimSpace(req.Title),
		Message:    strings.TrimSpace(req.Message),
		Active:     req.Active == nil || *req.Active,
		CreatedBy:  createdBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if t.Name == "" || t.Title == "" || t.Message == "" {
		return nil, fmt.Errorf("name, title and message must not be blank: %w", domain.ErrBadRequest)
	}
	if err := s.repo.Put(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) Get(ctx context.Context, templateID string) (*domain.NotificationTemplate, error) {
	return s.repo.Get(ctx, templateID)
}

func (s *service) List(ctx context.Context, q string) ([]domain.NotificationTemplate, error) {
	return s.repo.List(ctx, strings.TrimSpace(q))
}

// Update applies the non-nil fields of req. The active flag is changed only
// through SetActive.
func (s *service) Update(ctx context.Context, templateID string, req domain.UpdateTemplateRequest) (*domain.NotificationTemplate, error) {
	t, err := s.repo.Get(ctx, templateID)
	if err != nil {
		return nil, err
	}
	for _, f := range []struct {
		name string
		in   *string
		dst  *string
	}{
		{"name", req.Name, &t.Name},
		{"type", req.Type, &t.Type},
		{"title", req.Title, &t.Title},
		{"message", req.Message, &t.Message},
	} {
		if f.in == nil {
			continue
		}
		v := strings.TrimSpace(*f.in)
		if v == "" {
			return nil, fmt.Errorf("%s must not be blank: %w", f.name, domain.ErrBadRequest)
		}
		*f.dst = v
	}
	t.UpdatedAt = time.Now().UTC()
	if err := s.repo.Replace(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) SetActive(ctx context.Context, templateID string, active bool) (*domain.NotificationTemplate, error) {
	return s.repo.SetActive(ctx, templateID, active)
}

func (s *service) Delete(ctx context.Context, templateID string) error {
	return s.repo.Delete(ctx, templateID)
}

// Resolve returns an active template for use in a dispatch. A missing or
// inactive template is a bad request from the sender's point of view.
func (s *service) Resolve(ctx context.Context, templateID string) (*domain.NotificationTemplate, error) {
	t, err := s.repo.Get(ctx, templateID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("unknown template %s: %w", templateID, domain.ErrBadRequest)
		}
		return nil, err
	}
	if !t.Active {
		return nil, fmt.Errorf("template %s is inactive: %w", templateID, domain.ErrBadRequest)
	}
	return t, nil
}
