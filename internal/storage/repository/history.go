package repository

import (
	"context"
	"fmt"

	"github.com/subpanel/subscription-admin/internal/models"
)

// ListSubscriptionHistory возвращает все записи истории подписок
// в порядке их создания. Записи не дедуплицируются и не фильтруются:
// разрешение "текущей" подписки — задача join-движка на стороне чтения.
func (s *Storage) ListSubscriptionHistory(ctx context.Context) ([]models.HistoryRecord, error) {
	const op = "storage.ListSubscriptionHistory"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, plan_id, start_date, end_date, status, created_at
			  FROM subscription_history
			  ORDER BY created_at`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.HistoryRecord
	for rows.Next() {
		var r models.HistoryRecord
		if err = rows.Scan(&r.ID, &r.UserID, &r.PlanID, &r.StartDate,
			&r.EndDate, &r.Status, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// AppendSubscriptionHistory добавляет новую запись истории.
// Записи иммутабельны: обновлений и удалений у этой таблицы нет.
func (s *Storage) AppendSubscriptionHistory(ctx context.Context, rec models.HistoryRecord) error {
	const op = "storage.AppendSubscriptionHistory"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscription_history (id, user_id, plan_id, start_date,
			      end_date, status, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.DB.ExecContext(ctx, query,
		rec.ID, rec.UserID, rec.PlanID, rec.StartDate, rec.EndDate, rec.Status, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
