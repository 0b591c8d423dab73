package repository

import (
	"context"
	"fmt"

	"github.com/subpanel/subscription-admin/internal/models"
)

// ListPlans возвращает каталог тарифных планов. Управление планами —
// отдельная поверхность, здесь каталог только читается.
func (s *Storage) ListPlans(ctx context.Context) ([]models.Plan, error) {
	const op = "storage.ListPlans"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, plan_name, duration, price
			  FROM plans
			  ORDER BY plan_name`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Plan
	for rows.Next() {
		var p models.Plan
		if err = rows.Scan(&p.ID, &p.Name, &p.Duration, &p.Price); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
