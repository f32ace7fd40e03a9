package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/event-notify/internal/domain"
	"github.com/event-notify/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	SetPushToken(ctx context.Context, userID, token string) error
	SetRole(ctx context.Context, userID, role string) (*domain.User, error)
}

type userStore interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	SetPushToken(ctx context.Context, userID, token string) error
	SetRole(ctx context.Context, userID, role string) error
}

type service struct {
	repo userStore
}

func NewService(repo userStore) Service {
	return &service{repo: repo}
}

// Register creates an entrant account. Notification preference is left unset,
// which the preference gate treats as opted in.
func (s *service) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := taken(s.repo.GetByUsername(ctx, req.Username)); err != nil {
		return nil, fmt.Errorf("username %q: %w", req.Username, err)
	}
	if err := taken(s.repo.GetByEmail(ctx, req.Email)); err != nil {
		return nil, fmt.Errorf("email %q: %w", req.Email, err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Username:     req.Username,
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		Role:         domain.RoleEntrant,
		Enable:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Put(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// taken turns a uniqueness lookup into nil when the value is free.
func taken(_ *domain.User, err error) error {
	switch {
	case err == nil:
		return domain.ErrConflict
	case errors.Is(err, domain.ErrNotFound):
		return nil
	default:
		return err
	}
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

func (s *service) SetPushToken(ctx context.Context, userID, token string) error {
	return s.repo.SetPushToken(ctx, userID, token)
}

func (s *service) SetRole(ctx context.Context, userID, role string) (*domain.User, error) {
	if !domain.ValidRole(role) {
		return nil, fmt.Errorf("invalid role: %w", domain.ErrBadRequest)
	}
	if err := s.repo.SetRole(ctx, userID, role); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID)
}
