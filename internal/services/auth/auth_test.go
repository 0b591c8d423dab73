package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/subpanel/subscription-admin/internal/apperrors"
	"github.com/subpanel/subscription-admin/internal/lib/jwt"
	"github.com/subpanel/subscription-admin/internal/lib/password"
	"github.com/subpanel/subscription-admin/internal/models"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) RegisterStaff(ctx context.Context, account models.StaffAccount) (string, error) {
	args := m.Called(ctx, account)
	return args.String(0), args.Error(1)
}

func (m *RepoMock) GetStaffByUsername(ctx context.Context, username string) (*models.StaffAccount, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StaffAccount), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRegister(t *testing.T) {
	repo := new(RepoMock)
	repo.On("RegisterStaff", mock.Anything, mock.MatchedBy(func(a models.StaffAccount) bool {
		return a.Username == "operator" && a.Role == "admin" &&
			password.CompareHash(a.PasswordHash, "secret123") == nil
	})).Return("uid-1", nil)

	svc := New(newNoopLogger(), repo, jwt.NewMaker("test-secret", time.Hour))
	uid, err := svc.Register(context.Background(), "operator", "op@example.com", "secret123", "admin")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", uid)
}

func TestRegisterStorageFails(t *testing.T) {
	repo := new(RepoMock)
	repo.On("RegisterStaff", mock.Anything, mock.Anything).
		Return("", errors.New("duplicate key"))

	svc := New(newNoopLogger(), repo, jwt.NewMaker("test-secret", time.Hour))
	_, err := svc.Register(context.Background(), "operator", "op@example.com", "secret123", "admin")
	assert.ErrorIs(t, err, apperrors.ErrRemoteWrite)
}

func TestLogin(t *testing.T) {
	hash, err := password.GetHash("secret123")
	require.NoError(t, err)

	repo := new(RepoMock)
	repo.On("GetStaffByUsername", mock.Anything, "operator").Return(&models.StaffAccount{
		UID: "uid-1", Username: "operator", PasswordHash: hash, Role: "admin",
	}, nil)

	maker := jwt.NewMaker("test-secret", time.Hour)
	svc := New(newNoopLogger(), repo, maker)
	token, err := svc.Login(context.Background(), "operator", "secret123")
	require.NoError(t, err)

	claims, err := maker.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "operator", claims.Username)
	assert.Equal(t, "admin", claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := password.GetHash("secret123")
	require.NoError(t, err)

	repo := new(RepoMock)
	repo.On("GetStaffByUsername", mock.Anything, "operator").Return(&models.StaffAccount{
		Username: "operator", PasswordHash: hash,
	}, nil)

	svc := New(newNoopLogger(), repo, jwt.NewMaker("test-secret", time.Hour))
	_, err = svc.Login(context.Background(), "operator", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownUsername(t *testing.T) {
	repo := new(RepoMock)
	repo.On("GetStaffByUsername", mock.Anything, "ghost").Return(nil, apperrors.ErrNotFound)

	svc := New(newNoopLogger(), repo, jwt.NewMaker("test-secret", time.Hour))
	_, err := svc.Login(context.Background(), "ghost", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
}
