package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/subpanel/subscription-admin/internal/apperrors"
	"github.com/subpanel/subscription-admin/internal/models"
)

// RegisterStaff сохраняет новую учётную запись сотрудника и возвращает её UID.
func (s *Storage) RegisterStaff(ctx context.Context, account models.StaffAccount) (string, error) {
	const op = "storage.RegisterStaff"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO staff_accounts (username, email, password_hash, role)
			  VALUES ($1, $2, $3, $4)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		account.Username, account.Email, account.PasswordHash, account.Role).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetStaffByUsername возвращает учётную запись сотрудника по username.
func (s *Storage) GetStaffByUsername(ctx context.Context, username string) (*models.StaffAccount, error) {
	const op = "storage.GetStaffByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, username, email, password_hash, role, created_at
			  FROM staff_accounts
			  WHERE username = $1`
	a := &models.StaffAccount{}
	err := s.DB.QueryRowContext(ctx, query, username).Scan(
		&a.UID, &a.Username, &a.Email, &a.PasswordHash, &a.Role, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}
