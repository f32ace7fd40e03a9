package user

import (
	"context"
	"errors"
	"testing"

	"github.com/event-notify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) SetPushToken(ctx context.Context, userID, token string) error {
	return m.Called(ctx, userID, token).Error(0)
}
func (m *mockUserStore) SetRole(ctx context.Context, userID, role string) error {
	return m.Called(ctx, userID, role).Error(0)
}

// --- helpers ---

func baseReq() domain.CreateUserRequest {
	return domain.CreateUserRequest{
		Username: "alice",
		Password: "password123",
		Email:    "alice@example.com",
		Name:     "Alice Smith",
	}
}

// --- Register tests ---

func TestRegister_UsernameConflict(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "alice").Return(&domain.User{}, nil)

	_, err := NewService(us).Register(context.Background(), baseReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	us.AssertExpectations(t)
}

func TestRegister_EmailConflict(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "alice").Return(nil, domain.ErrNotFound)
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(&domain.User{}, nil)

	_, err := NewService(us).Register(context.Background(), baseReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestRegister_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "alice").Return(nil, domain.ErrNotFound)
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, domain.ErrNotFound)
	us.On("Put", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	u, err := NewService(us).Register(context.Background(), baseReq())

	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "Alice Smith", u.Name)
	assert.Equal(t, domain.RoleEntrant, u.Role)
	assert.True(t, u.Enable)
	assert.Nil(t, u.NotificationsEnabled)
	assert.False(t, u.OptedOut())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("password123")))
	us.AssertExpectations(t)
}

// --- SetRole tests ---

func TestSetRole_Invalid(t *testing.T) {
	us := &mockUserStore{}
	_, err := NewService(us).SetRole(context.Background(), "u1", "superuser")

	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	us.AssertNotCalled(t, "SetRole", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetRole_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	us.On("SetRole", mock.Anything, "u1", domain.RoleOrganizer).Return(nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Role: domain.RoleOrganizer}, nil)

	u, err := NewService(us).SetRole(context.Background(), "u1", domain.RoleOrganizer)

	require.NoError(t, err)
	assert.Equal(t, domain.RoleOrganizer, u.Role)
}

func TestSetPushToken_PropagatesNotFound(t *testing.T) {
	us := &mockUserStore{}
	us.On("SetPushToken", mock.Anything, "ghost", "T1").Return(domain.ErrNotFound)

	err := NewService(us).SetPushToken(context.Background(), "ghost", "T1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegister_LookupFailureIsNotAFreeName(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "alice").Return(nil, errors.New("throttled"))
	svc := NewService(us)

	_, err := svc.Register(context.Background(), domain.CreateUserRequest{
		Username: "alice", Email: "alice@example.com", Password: "secret123", Name: "Alice",
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrConflict)
	us.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestRegister_NormalizesEmail(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "alice").Return(nil, domain.ErrNotFound)
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, domain.ErrNotFound)
	us.On("Put", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)
	svc := NewService(us)

	u, err := svc.Register(context.Background(), domain.CreateUserRequest{
		Username: " alice ", Email: " Alice@Example.COM", Password: "secret123", Name: "Alice",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, "alice", u.Username)
}
