// Package directory реализует справочник пользователей: чтение каталога
// планов, списка пользователей и истории подписок с кешированием,
// создание аккаунтов и операции жизненного цикла. Создание и удаление
// пользователя — две зависимые записи без транзакции: аккаунт у внешнего
// провайдера и документ в хранилище.
package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/subpanel/subscription-admin/internal/apperrors"
	"github.com/subpanel/subscription-admin/internal/cache"
	"github.com/subpanel/subscription-admin/internal/lib/dates"
	"github.com/subpanel/subscription-admin/internal/lib/password"
	"github.com/subpanel/subscription-admin/internal/lib/rabbitmq"
	"github.com/subpanel/subscription-admin/internal/lib/sl"
	"github.com/subpanel/subscription-admin/internal/models"
	"github.com/subpanel/subscription-admin/internal/services/subview"
)

const cacheTTL = 5 * time.Minute

// Repository описывает операции хранилища, нужные справочнику.
type Repository interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	CreateUser(ctx context.Context, user models.User) error
	UpdateUserStatus(ctx context.Context, id, status string, updatedAt time.Time) error
	ClearDeviceID(ctx context.Context, id string, updatedAt time.Time) error
	DeleteUser(ctx context.Context, id string) (int64, error)
	ListPlans(ctx context.Context) ([]models.Plan, error)
	ListSubscriptionHistory(ctx context.Context) ([]models.HistoryRecord, error)
}

// CacheStore кеширует коллекции на стороне чтения.
type CacheStore interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// AccountProvider управляет аккаунтами у внешнего провайдера аутентификации.
type AccountProvider interface {
	CreateAccount(ctx context.Context, email, password string) (string, error)
	DeleteAccount(ctx context.Context, uid string) error
}

// EventPublisher публикует события панели.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

// LifecycleEvent публикуется после операций жизненного цикла пользователя.
type LifecycleEvent struct {
	UserID string    `json:"userId"`
	Action string    `json:"action"`
	At     time.Time `json:"at"`
}

// Service выполняет операции справочника пользователей.
type Service struct {
	log            *slog.Logger
	repo           Repository
	cache          CacheStore
	provider       AccountProvider
	events         EventPublisher
	pickMostRecent bool
	now            func() time.Time
}

// New создает сервис справочника. pickMostRecent переключает выбор
// текущей подписки с первой активной записи на самую свежую.
func New(log *slog.Logger, repo Repository, cache CacheStore, provider AccountProvider,
	events EventPublisher, pickMostRecent bool) *Service {
	return &Service{
		log:            log,
		repo:           repo,
		cache:          cache,
		provider:       provider,
		events:         events,
		pickMostRecent: pickMostRecent,
		now:            time.Now,
	}
}

// List возвращает пользователей вместе с их текущими подписками,
// восстановленными из истории и каталога планов.
func (s *Service) List(ctx context.Context) ([]models.UserWithSubscription, error) {
	const op = "directory.List"

	users, err := s.listUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, apperrors.ErrRemoteRead, err)
	}
	plans, err := s.Plans(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	history, err := s.History(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	plansByID := subview.BuildPlanIndex(plans)
	historyByUser := subview.BuildHistoryIndex(history)

	result := make([]models.UserWithSubscription, 0, len(users))
	for _, u := range users {
		result = append(result, models.UserWithSubscription{
			User:         u,
			Subscription: subview.ResolveCurrent(u.ID, historyByUser, plansByID, s.pickMostRecent),
		})
	}
	return result, nil
}

// Plans возвращает каталог тарифных планов.
func (s *Service) Plans(ctx context.Context) ([]models.Plan, error) {
	const op = "directory.Plans"

	var plans []models.Plan
	if found, err := s.cache.Get(cache.KeyPlans, &plans); err == nil && found {
		return plans, nil
	} else if err != nil {
		s.log.Warn("cache read failed", sl.Err(err))
	}

	plans, err := s.repo.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, apperrors.ErrRemoteRead, err)
	}
	if err = s.cache.Set(cache.KeyPlans, plans, cacheTTL); err != nil {
		s.log.Warn("cache write failed", sl.Err(err))
	}
	return plans, nil
}

// History возвращает все записи истории подписок в порядке создания.
func (s *Service) History(ctx context.Context) ([]models.HistoryRecord, error) {
	const op = "directory.History"

	var records []models.HistoryRecord
	if found, err := s.cache.Get(cache.KeyHistory, &records); err == nil && found {
		return records, nil
	} else if err != nil {
		s.log.Warn("cache read failed", sl.Err(err))
	}

	records, err := s.repo.ListSubscriptionHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, apperrors.ErrRemoteRead, err)
	}
	if err = s.cache.Set(cache.KeyHistory, records, cacheTTL); err != nil {
		s.log.Warn("cache write failed", sl.Err(err))
	}
	return records, nil
}

func (s *Service) listUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if found, err := s.cache.Get(cache.KeyUsers, &users); err == nil && found {
		return users, nil
	} else if err != nil {
		s.log.Warn("cache read failed", sl.Err(err))
	}

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if err = s.cache.Set(cache.KeyUsers, users, cacheTTL); err != nil {
		s.log.Warn("cache write failed", sl.Err(err))
	}
	return users, nil
}

// Create заводит пользователя: сначала аккаунт у провайдера, затем
// документ в хранилище. Ключ документа — username заглавными буквами.
// Если документ записать не удалось, аккаунт у провайдера уже существует,
// и операция возвращает ошибку частичного выполнения.
func (s *Service) Create(ctx context.Context, req models.DummyCreateUser) (*models.User, error) {
	const op = "directory.Create"
	log := s.log.With(slog.String("op", op))

	uid, err := s.provider.CreateAccount(ctx, req.Email, req.Password)
	if err != nil {
		log.Error("provider account creation failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w: %w", op, apperrors.ErrRemoteWrite, err)
	}

	user := models.User{
		ID:           strings.ToUpper(req.Username),
		UID:          uid,
		FullName:     req.FullName,
		Email:        req.Email,
		Username:     req.Username,
		MobileNumber: req.MobileNumber,
		DeviceID:     req.DeviceID,
		PasswordHash: password.Digest(req.Password),
		CreatedAt:    dates.TruncateToDate(s.now().UTC()),
		Status:       models.StatusActive,
	}
	if err = s.repo.CreateUser(ctx, user); err != nil {
		log.Error("user record write failed after provider account creation", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, &apperrors.PartialCompletionError{
			Completed: "provider account creation",
			Failed:    "user record write",
			Err:       err,
		})
	}

	s.invalidateUsers()
	s.publishLifecycle(user.ID, "created")
	log.Info("user created", slog.String("user_id", user.ID))
	return &user, nil
}

// Activate переводит аккаунт в статус active.
func (s *Service) Activate(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, models.StatusActive)
}

// Deactivate переводит аккаунт в статус inactive. Денормализованные
// поля подписки и история при этом не трогаются.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, models.StatusInactive)
}

func (s *Service) setStatus(ctx context.Context, id, status string) error {
	const op = "directory.setStatus"

	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%s: %w", op, apperrors.Validation("user id is required"))
	}
	if _, err := s.repo.GetUser(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.UpdateUserStatus(ctx, id, status, s.now().UTC()); err != nil {
		return fmt.Errorf("%s: %w: %w", op, apperrors.ErrRemoteWrite, err)
	}

	s.invalidateUsers()
	s.publishLifecycle(id, "status:"+status)
	s.log.Info("user status updated", slog.String("user_id", id), slog.String("status", status))
	return nil
}

// UnlinkDevice отвязывает устройство пользователя, чтобы он мог войти
// с нового.
func (s *Service) UnlinkDevice(ctx context.Context, id string) error {
	const op = "directory.UnlinkDevice"

	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%s: %w", op, apperrors.Validation("user id is required"))
	}
	if _, err := s.repo.GetUser(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.ClearDeviceID(ctx, id, s.now().UTC()); err != nil {
		return fmt.Errorf("%s: %w: %w", op, apperrors.ErrRemoteWrite, err)
	}

	s.invalidateUsers()
	s.publishLifecycle(id, "device-unlinked")
	s.log.Info("device unlinked", slog.String("user_id", id))
	return nil
}

// Delete удаляет аккаунт у провайдера и документ пользователя. Записи
// истории подписок не удаляются. Удаление несуществующего пользователя
// успешно и ничего не делает.
func (s *Service) Delete(ctx context.Context, id string) error {
	const op = "directory.Delete"
	log := s.log.With(slog.String("op", op))

	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%s: %w", op, apperrors.Validation("user id is required"))
	}

	user, err := s.repo.GetUser(ctx, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		log.Info("user already absent", slog.String("user_id", id))
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, apperrors.ErrRemoteRead, err)
	}

	if user.UID != "" {
		if err = s.provider.DeleteAccount(ctx, user.UID); err != nil {
			log.Error("provider account deletion failed", sl.Err(err))
			return fmt.Errorf("%s: %w: %w", op, apperrors.ErrRemoteWrite, err)
		}
	}
	if _, err = s.repo.DeleteUser(ctx, id); err != nil {
		log.Error("user record delete failed after provider account deletion", sl.Err(err))
		return fmt.Errorf("%s: %w", op, &apperrors.PartialCompletionError{
			Completed: "provider account deletion",
			Failed:    "user record delete",
			Err:       err,
		})
	}

	s.invalidateUsers()
	s.publishLifecycle(id, "deleted")
	log.Info("user deleted", slog.String("user_id", id))
	return nil
}

func (s *Service) invalidateUsers() {
	if err := s.cache.Invalidate(cache.KeyUsers); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", cache.KeyUsers), sl.Err(err))
	}
}

func (s *Service) publishLifecycle(userID, action string) {
	event := LifecycleEvent{UserID: userID, Action: action, At: s.now().UTC()}
	if err := s.events.Publish(rabbitmq.KeyLifecycle, event); err != nil {
		s.log.Warn("failed to publish lifecycle event", sl.Err(err))
	}
}
