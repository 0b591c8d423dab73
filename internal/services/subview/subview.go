// Package subview реализует join-движок стороны чтения: восстановление
// "текущей подписки" пользователя из независимо выбранных наборов —
// истории подписок и каталога планов.
//
// История не дедуплицируется: назначение новой подписки не закрывает
// прежние записи, поэтому у пользователя может быть несколько записей
// со статусом active одновременно. По умолчанию действует легаси-правило
// "первая активная запись в порядке выборки"; флаг pickMostRecent
// переключает выбор на самую свежую активную запись.
package subview

import (
	"github.com/subpanel/subscription-admin/internal/lib/dates"
	"github.com/subpanel/subscription-admin/internal/models"
)

// BuildPlanIndex строит индекс каталога планов по идентификатору.
func BuildPlanIndex(plans []models.Plan) map[string]models.Plan {
	index := make(map[string]models.Plan, len(plans))
	for _, p := range plans {
		index[p.ID] = p
	}
	return index
}

// BuildHistoryIndex группирует записи истории по пользователю,
// сохраняя порядок выборки.
func BuildHistoryIndex(records []models.HistoryRecord) map[string][]models.HistoryRecord {
	index := make(map[string][]models.HistoryRecord)
	for _, r := range records {
		index[r.UserID] = append(index[r.UserID], r)
	}
	return index
}

// ResolveCurrent возвращает текущую действующую подписку пользователя
// или nil, если подписки нет. nil возвращается и при "висячей" ссылке
// на план, которого нет в каталоге: отсутствующий план трактуется как
// отсутствие подписки, а не как ошибка.
func ResolveCurrent(userID string, historyByUser map[string][]models.HistoryRecord,
	plansByID map[string]models.Plan, pickMostRecent bool) *models.SubscriptionView {
	records := historyByUser[userID]
	if len(records) == 0 {
		return nil
	}

	var active *models.HistoryRecord
	for i := range records {
		if records[i].Status != models.StatusActive {
			continue
		}
		if active == nil {
			active = &records[i]
			if !pickMostRecent {
				break
			}
			continue
		}
		if records[i].CreatedAt.After(active.CreatedAt) {
			active = &records[i]
		}
	}
	if active == nil {
		return nil
	}

	plan, ok := plansByID[active.PlanID]
	if !ok {
		return nil
	}

	return &models.SubscriptionView{
		RecordID:  active.ID,
		PlanID:    active.PlanID,
		PlanName:  plan.Name,
		Price:     plan.Price,
		Status:    active.Status,
		StartDate: dates.FormatHuman(active.CreatedAt),
	}
}
