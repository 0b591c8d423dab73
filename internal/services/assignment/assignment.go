// Package assignment реализует воркфлоу назначения подписки: две зависимые
// записи без транзакции. Сначала обновляются денормализованные поля на
// документе пользователя, затем добавляется запись истории. Если вторая
// запись не прошла, операция возвращает ошибку частичного выполнения,
// по которой оператор делает ручную сверку.
package assignment

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/subpanel/subscription-admin/internal/apperrors"
	"github.com/subpanel/subscription-admin/internal/cache"
	"github.com/subpanel/subscription-admin/internal/lib/dates"
	"github.com/subpanel/subscription-admin/internal/lib/rabbitmq"
	"github.com/subpanel/subscription-admin/internal/lib/sl"
	"github.com/subpanel/subscription-admin/internal/models"
)

// Repository описывает операции хранилища, нужные воркфлоу назначения.
type Repository interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	ListPlans(ctx context.Context) ([]models.Plan, error)
	UpdateUserSubscription(ctx context.Context, id, planID string, startDate, endDate time.Time) (int64, error)
	AppendSubscriptionHistory(ctx context.Context, rec models.HistoryRecord) error
}

// Invalidator сбрасывает кешированные коллекции после записи.
type Invalidator interface {
	Invalidate(key string) error
}

// EventPublisher публикует события панели.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

var assignmentsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "admin_panel_subscription_assignments_total",
	Help: "Количество успешных назначений подписок.",
})

// Service выполняет назначение подписки пользователю.
type Service struct {
	log    *slog.Logger
	repo   Repository
	cache  Invalidator
	events EventPublisher
	now    func() time.Time
}

// New создает сервис назначения подписок.
func New(log *slog.Logger, repo Repository, cache Invalidator, events EventPublisher) *Service {
	return &Service{
		log:    log,
		repo:   repo,
		cache:  cache,
		events: events,
		now:    time.Now,
	}
}

// Assign назначает план пользователю. Идентификатор пользователя
// разрешается по цепочке: username, затем ключ документа, затем вход
// как есть. План с неизвестным идентификатором не прерывает операцию:
// записывается указанный идентификатор, а срок берется по умолчанию.
func (s *Service) Assign(ctx context.Context, req models.DummyAssign) (*models.AssignmentResult, error) {
	const op = "assignment.Assign"
	log := s.log.With(slog.String("op", op))

	userKey := strings.TrimSpace(req.User)
	planID := strings.TrimSpace(req.PlanID)
	if userKey == "" {
		return nil, fmt.Errorf("%s: %w", op, apperrors.Validation("user is required"))
	}
	if planID == "" {
		return nil, fmt.Errorf("%s: %w", op, apperrors.Validation("plan id is required"))
	}

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		return nil, fmt.Errorf("%s: %w: %w", op, apperrors.ErrRemoteRead, err)
	}
	docID := resolveUser(users, userKey)

	plans, err := s.repo.ListPlans(ctx)
	if err != nil {
		log.Error("failed to list plans", sl.Err(err))
		return nil, fmt.Errorf("%s: %w: %w", op, apperrors.ErrRemoteRead, err)
	}
	months := 1
	for _, p := range plans {
		if p.ID == planID {
			months = parseMonths(p.Duration)
			break
		}
	}

	start := s.now().UTC()
	end := dates.AddMonths(start, months)

	count, err := s.repo.UpdateUserSubscription(ctx, docID, planID, start, end)
	if err != nil {
		log.Error("failed to update user subscription", sl.Err(err))
		return nil, fmt.Errorf("%s: %w: %w", op, apperrors.ErrRemoteWrite, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%s: user %s: %w", op, docID, apperrors.ErrNotFound)
	}

	rec := models.HistoryRecord{
		ID:        uuid.NewString(),
		UserID:    docID,
		PlanID:    planID,
		StartDate: start,
		EndDate:   dates.TruncateToDate(end),
		Status:    models.StatusActive,
		CreatedAt: start,
	}
	if err = s.repo.AppendSubscriptionHistory(ctx, rec); err != nil {
		log.Error("history append failed after user update", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, &apperrors.PartialCompletionError{
			Completed: "user record update",
			Failed:    "history append",
			Err:       err,
		})
	}

	s.invalidate(log, cache.KeyUsers)
	s.invalidate(log, cache.KeyHistory)
	if err = s.events.Publish(rabbitmq.KeyAssigned, rec); err != nil {
		log.Warn("failed to publish assignment event", sl.Err(err))
	}
	assignmentsTotal.Inc()
	log.Info("subscription assigned",
		slog.String("user_id", docID),
		slog.String("plan_id", planID),
		slog.Int("months", months))

	return &models.AssignmentResult{
		UserID:    docID,
		PlanID:    planID,
		StartDate: start,
		EndDate:   end,
		RecordID:  rec.ID,
		Months:    months,
	}, nil
}

// resolveUser разрешает вход оператора в ключ документа: сначала по
// username, затем по самому ключу; если совпадений нет, вход
// используется как есть.
func resolveUser(users []models.User, key string) string {
	for _, u := range users {
		if u.Username == key {
			return u.ID
		}
	}
	for _, u := range users {
		if u.ID == key {
			return u.ID
		}
	}
	return key
}

// parseMonths извлекает ведущее число из строки срока плана,
// например "3 months". Нечитаемый или нулевой срок трактуется
// как один месяц.
func parseMonths(duration string) int {
	digits := strings.TrimSpace(duration)
	end := 0
	for end < len(digits) && digits[end] >= '0' && digits[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(digits[:end])
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

func (s *Service) invalidate(log *slog.Logger, key string) {
	if err := s.cache.Invalidate(key); err != nil {
		log.Warn("failed to invalidate cache", slog.String("key", key), sl.Err(err))
	}
}
