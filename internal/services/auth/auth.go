// Package auth реализует регистрацию и вход сотрудников панели.
// Пароли хранятся bcrypt-хэшами, сессии выдаются JWT-токенами.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/subpanel/subscription-admin/internal/apperrors"
	"github.com/subpanel/subscription-admin/internal/lib/jwt"
	"github.com/subpanel/subscription-admin/internal/lib/password"
	"github.com/subpanel/subscription-admin/internal/lib/sl"
	"github.com/subpanel/subscription-admin/internal/models"
)

// ErrInvalidCredentials возвращается при неверном username или пароле.
// Обработчик отвечает одинаково в обоих случаях, чтобы не раскрывать,
// какая часть пары неверна.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Repository описывает операции хранилища учётных записей сотрудников.
type Repository interface {
	RegisterStaff(ctx context.Context, account models.StaffAccount) (string, error)
	GetStaffByUsername(ctx context.Context, username string) (*models.StaffAccount, error)
}

// Service выполняет регистрацию и вход сотрудников.
type Service struct {
	log   *slog.Logger
	repo  Repository
	maker jwt.Maker
}

// New создает сервис аутентификации сотрудников.
func New(log *slog.Logger, repo Repository, maker jwt.Maker) *Service {
	return &Service{log: log, repo: repo, maker: maker}
}

// Register заводит учётную запись сотрудника и возвращает её UID.
func (s *Service) Register(ctx context.Context, username, email, pass, role string) (string, error) {
	const op = "auth.Register"
	log := s.log.With(slog.String("op", op))

	hash, err := password.GetHash(pass)
	if err != nil {
		log.Error("failed to hash password", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	uid, err := s.repo.RegisterStaff(ctx, models.StaffAccount{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		log.Error("failed to register staff account", sl.Err(err))
		return "", fmt.Errorf("%s: %w: %w", op, apperrors.ErrRemoteWrite, err)
	}

	log.Info("staff account registered", slog.String("username", username))
	return uid, nil
}

// Login проверяет пару username и пароль и возвращает JWT токен сессии.
func (s *Service) Login(ctx context.Context, username, pass string) (string, error) {
	const op = "auth.Login"
	log := s.log.With(slog.String("op", op))

	account, err := s.repo.GetStaffByUsername(ctx, username)
	if errors.Is(err, apperrors.ErrNotFound) {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		log.Error("failed to fetch staff account", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err = password.CompareHash(account.PasswordHash, pass); err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := s.maker.GenerateToken(account.Username, account.Role)
	if err != nil {
		log.Error("failed to generate token", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("staff logged in", slog.String("username", username))
	return token, nil
}
