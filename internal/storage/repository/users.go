package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/subpanel/subscription-admin/internal/apperrors"
	"github.com/subpanel/subscription-admin/internal/models"
)

const userColumns = `id, uid, full_name, email, username, mobile_number, device_id,
	      password_hash, created_at, status, subscription_id,
	      subscription_start_date, subscription_end_date, expiration_date, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	var mobile, device, subscriptionID sql.NullString
	var subStart, subEnd, expiration, updatedAt sql.NullTime
	if err := row.Scan(&u.ID, &u.UID, &u.FullName, &u.Email, &u.Username,
		&mobile, &device, &u.PasswordHash, &u.CreatedAt, &u.Status,
		&subscriptionID, &subStart, &subEnd, &expiration, &updatedAt); err != nil {
		return nil, err
	}
	u.MobileNumber = mobile.String
	u.DeviceID = device.String
	u.SubscriptionID = subscriptionID.String
	if subStart.Valid {
		u.SubscriptionStartDate = &subStart.Time
	}
	if subEnd.Valid {
		u.SubscriptionEndDate = &subEnd.Time
	}
	if expiration.Valid {
		u.ExpirationDate = &expiration.Time
	}
	if updatedAt.Valid {
		u.UpdatedAt = &updatedAt.Time
	}
	return u, nil
}

// ListUsers возвращает всех пользователей, отсортированных по полному имени.
func (s *Storage) ListUsers(ctx context.Context) ([]models.User, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  ORDER BY full_name`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetUser возвращает пользователя по ключу документа.
func (s *Storage) GetUser(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE id = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// CreateUser сохраняет новый документ пользователя. Ключ документа
// выбирает вызывающая сторона (username заглавными буквами).
func (s *Storage) CreateUser(ctx context.Context, user models.User) error {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (id, uid, full_name, email, username, mobile_number,
			      device_id, password_hash, created_at, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := s.DB.ExecContext(ctx, query,
		user.ID, user.UID, user.FullName, user.Email, user.Username,
		user.MobileNumber, user.DeviceID, user.PasswordHash, user.CreatedAt, user.Status)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateUserSubscription записывает денормализованные поля подписки
// на документ пользователя. Поле expiration_date намеренно дублирует
// subscription_end_date. Запись без условной проверки версии:
// последняя запись побеждает.
func (s *Storage) UpdateUserSubscription(ctx context.Context, id, planID string, startDate, endDate time.Time) (int64, error) {
	const op = "storage.UpdateUserSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET subscription_id = $1,
			      subscription_start_date = $2,
			      subscription_end_date = $3,
			      expiration_date = $3,
			      status = $4
			  WHERE id = $5`
	res, err := s.DB.ExecContext(ctx, query, planID, startDate, endDate, models.StatusActive, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// UpdateUserStatus обновляет статус аккаунта и отметку updated_at.
func (s *Storage) UpdateUserStatus(ctx context.Context, id, status string, updatedAt time.Time) error {
	const op = "storage.UpdateUserStatus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET status = $1,
			      updated_at = $2
			  WHERE id = $3`
	_, err := s.DB.ExecContext(ctx, query, status, updatedAt, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ClearDeviceID отвязывает устройство пользователя.
func (s *Storage) ClearDeviceID(ctx context.Context, id string, updatedAt time.Time) error {
	const op = "storage.ClearDeviceID"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET device_id = '',
			      updated_at = $1
			  WHERE id = $2`
	_, err := s.DB.ExecContext(ctx, query, updatedAt, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteUser безусловно удаляет документ пользователя. Записи истории
// подписок не трогаются — каскадной очистки нет.
func (s *Storage) DeleteUser(ctx context.Context, id string) (int64, error) {
	const op = "storage.DeleteUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
