package session

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

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Bearer  string
	Session *domain.Session
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error)
}

type userStore interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Disable(ctx context.Context, sessionID string) error
}

type jwtSigner interface {
	Sign(userID, role, sessionID string) (string, error)
}

type service struct {
	sessionRepo sessionStore
	userRepo    userStore
	jwtProvider jwtSigner
}

func NewService(sessionRepo sessionStore, userRepo userStore, jwtProvider jwtSigner) Service {
	return &service{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		jwtProvider: jwtProvider,
	}
}

// Login accepts a username or an email address.
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	login := strings.TrimSpace(req.Username)
	u, err := s.userRepo.GetByUsername(ctx, login)
	if errors.Is(err, domain.ErrNotFound) {
		u, err = s.userRepo.GetByEmail(ctx, strings.ToLower(login))
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	case err != nil:
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if !u.Enable {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	now := time.Now().UTC()
	sess := &domain.Session{
		SessionID: id.New(),
		UserID:    u.UserID,
		Enable:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessionRepo.Put(ctx, sess); err != nil {
		return nil, err
	}
	bearer, err := s.jwtProvider.Sign(u.UserID, u.Role, sess.SessionID)
	if err != nil {
		return nil, err
	}
	sess.User = u
	return &LoginResult{Bearer: bearer, Session: sess}, nil
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	return s.sessionRepo.Disable(ctx, sessionID)
}

func (s *service) GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Enable {
		return nil, fmt.Errorf("session expired: %w", domain.ErrUnauthorized)
	}
	u, err := s.userRepo.Get(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	sess.User = u
	return sess, nil
}
