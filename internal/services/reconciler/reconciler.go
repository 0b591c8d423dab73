// Package reconciler реализует фоновую сверку данных подписок.
// Назначение подписки пишет в два места без транзакции, поэтому
// денормализованные поля на пользователе и записи истории могут
// разойтись. Сверка периодически сравнивает оба набора и публикует
// находки в очередь для уведомления операторов.
package reconciler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/subpanel/subscription-admin/internal/apperrors"
	"github.com/subpanel/subscription-admin/internal/lib/rabbitmq"
	"github.com/subpanel/subscription-admin/internal/lib/sl"
	"github.com/subpanel/subscription-admin/internal/models"
)

// Коды находок сверки.
const (
	IssueFieldMismatch  = "denormalized-field-mismatch"
	IssueMissingHistory = "missing-history"
	IssuePlanMismatch   = "plan-mismatch"
	IssueOrphanHistory  = "orphan-history"
)

// Repository описывает операции хранилища, нужные сверке.
// Сверка читает хранилище напрямую, минуя кеш.
type Repository interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	ListSubscriptionHistory(ctx context.Context) ([]models.HistoryRecord, error)
}

// EventPublisher публикует находки сверки.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

// Service периодически сверяет пользователей с историей подписок.
type Service struct {
	log      *slog.Logger
	repo     Repository
	events   EventPublisher
	interval time.Duration
	now      func() time.Time
}

// New создает сервис сверки.
func New(log *slog.Logger, repo Repository, events EventPublisher, interval time.Duration) *Service {
	return &Service{
		log:      log,
		repo:     repo,
		events:   events,
		interval: interval,
		now:      time.Now,
	}
}

// Run выполняет сверку сразу и затем по расписанию до отмены контекста.
func (s *Service) Run(ctx context.Context) {
	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Service) runOnce(ctx context.Context) {
	findings, err := s.ReconcileOnce(ctx)
	if err != nil {
		s.log.Error("reconciliation run failed", sl.Err(err))
		return
	}
	s.log.Info("reconciliation run finished", slog.Int("findings", len(findings)))
}

// ReconcileOnce выполняет один проход сверки и публикует каждую находку.
func (s *Service) ReconcileOnce(ctx context.Context) ([]models.ReconciliationFinding, error) {
	const op = "reconciler.ReconcileOnce"

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, apperrors.ErrRemoteRead, err)
	}
	history, err := s.repo.ListSubscriptionHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, apperrors.ErrRemoteRead, err)
	}

	findings := Compare(users, history, s.now().UTC())
	for _, f := range findings {
		if err := s.events.Publish(rabbitmq.KeyReconciliation, f); err != nil {
			s.log.Warn("failed to publish finding",
				slog.String("user_id", f.UserID), sl.Err(err))
		}
	}
	return findings, nil
}

// Compare сравнивает денормализованные поля пользователей с историей
// подписок и возвращает найденные расхождения.
func Compare(users []models.User, history []models.HistoryRecord, at time.Time) []models.ReconciliationFinding {
	latestByUser := make(map[string]models.HistoryRecord)
	countByUser := make(map[string]int)
	for _, r := range history {
		countByUser[r.UserID]++
		if latest, ok := latestByUser[r.UserID]; !ok || r.CreatedAt.After(latest.CreatedAt) {
			latestByUser[r.UserID] = r
		}
	}

	knownUsers := make(map[string]bool, len(users))
	var findings []models.ReconciliationFinding
	add := func(userID, issue, detail string) {
		findings = append(findings, models.ReconciliationFinding{
			UserID:  userID,
			Issue:   issue,
			Detail:  detail,
			FoundAt: at,
		})
	}

	for _, u := range users {
		knownUsers[u.ID] = true

		if !timesEqual(u.SubscriptionEndDate, u.ExpirationDate) {
			add(u.ID, IssueFieldMismatch,
				"subscription end date and expiration date disagree")
		}
		if u.SubscriptionID == "" {
			continue
		}
		if countByUser[u.ID] == 0 {
			add(u.ID, IssueMissingHistory,
				fmt.Sprintf("user references plan %s but has no history records", u.SubscriptionID))
			continue
		}
		if latest := latestByUser[u.ID]; latest.PlanID != u.SubscriptionID {
			add(u.ID, IssuePlanMismatch,
				fmt.Sprintf("user references plan %s but latest history record has plan %s",
					u.SubscriptionID, latest.PlanID))
		}
	}

	for _, r := range history {
		if !knownUsers[r.UserID] {
			add(r.UserID, IssueOrphanHistory,
				fmt.Sprintf("history record %s references unknown user", r.ID))
		}
	}
	return findings
}

func timesEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
