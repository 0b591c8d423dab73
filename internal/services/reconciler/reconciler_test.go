package reconciler

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
	"github.com/subpanel/subscription-admin/internal/models"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *RepoMock) ListSubscriptionHistory(ctx context.Context) ([]models.HistoryRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HistoryRecord), args.Error(1)
}

type EventsMock struct {
	mock.Mock
}

func (m *EventsMock) Publish(routingKey string, message any) error {
	args := m.Called(routingKey, message)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func issues(findings []models.ReconciliationFinding) map[string][]string {
	result := make(map[string][]string)
	for _, f := range findings {
		result[f.UserID] = append(result[f.UserID], f.Issue)
	}
	return result
}

func TestCompare(t *testing.T) {
	now := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	other := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)

	users := []models.User{
		// Согласованный пользователь, находок быть не должно.
		{ID: "CLEAN", SubscriptionID: "basic",
			SubscriptionEndDate: &end, ExpirationDate: &end},
		// Поля окончания расходятся.
		{ID: "SKEWED", SubscriptionID: "basic",
			SubscriptionEndDate: &end, ExpirationDate: &other},
		// Поле окончания есть, дубликата нет.
		{ID: "HALF", SubscriptionID: "basic",
			SubscriptionEndDate: &end, ExpirationDate: nil},
		// Ссылка на план без единой записи истории.
		{ID: "NOHIST", SubscriptionID: "premium",
			SubscriptionEndDate: &end, ExpirationDate: &end},
		// Последняя запись истории про другой план.
		{ID: "STALE", SubscriptionID: "premium",
			SubscriptionEndDate: &end, ExpirationDate: &end},
		// Пользователь без подписки вовсе.
		{ID: "EMPTY"},
	}
	history := []models.HistoryRecord{
		{ID: "r1", UserID: "CLEAN", PlanID: "basic", CreatedAt: now},
		{ID: "r2", UserID: "SKEWED", PlanID: "basic", CreatedAt: now},
		{ID: "r3", UserID: "HALF", PlanID: "basic", CreatedAt: now},
		{ID: "r4", UserID: "STALE", PlanID: "basic", CreatedAt: now},
		{ID: "r5", UserID: "STALE", PlanID: "old-plan", CreatedAt: now.Add(time.Hour)},
		{ID: "r6", UserID: "GHOST", PlanID: "basic", CreatedAt: now},
	}

	findings := Compare(users, history, now)
	byUser := issues(findings)

	assert.NotContains(t, byUser, "CLEAN")
	assert.NotContains(t, byUser, "EMPTY")
	assert.Equal(t, []string{IssueFieldMismatch}, byUser["SKEWED"])
	assert.Equal(t, []string{IssueFieldMismatch}, byUser["HALF"])
	assert.Equal(t, []string{IssueMissingHistory}, byUser["NOHIST"])
	assert.Equal(t, []string{IssuePlanMismatch}, byUser["STALE"])
	assert.Equal(t, []string{IssueOrphanHistory}, byUser["GHOST"])

	for _, f := range findings {
		assert.Equal(t, now, f.FoundAt)
	}
}

func TestReconcileOncePublishesFindings(t *testing.T) {
	end := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	repo := new(RepoMock)
	repo.On("ListUsers", mock.Anything).Return([]models.User{
		{ID: "SKEWED", SubscriptionEndDate: &end, ExpirationDate: nil},
	}, nil)
	repo.On("ListSubscriptionHistory", mock.Anything).Return([]models.HistoryRecord{}, nil)

	events := new(EventsMock)
	events.On("Publish", "reconciliation.finding", mock.MatchedBy(func(f models.ReconciliationFinding) bool {
		return f.UserID == "SKEWED" && f.Issue == IssueFieldMismatch
	})).Return(nil)

	svc := New(newNoopLogger(), repo, events, time.Hour)
	findings, err := svc.ReconcileOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, findings, 1)
	events.AssertExpectations(t)
}

func TestReconcileOnceReadFails(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListUsers", mock.Anything).Return(nil, errors.New("connection refused"))

	svc := New(newNoopLogger(), repo, new(EventsMock), time.Hour)
	_, err := svc.ReconcileOnce(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrRemoteRead)
}

func TestReconcileOncePublishFailureDoesNotFail(t *testing.T) {
	end := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	repo := new(RepoMock)
	repo.On("ListUsers", mock.Anything).Return([]models.User{
		{ID: "SKEWED", SubscriptionEndDate: &end, ExpirationDate: nil},
	}, nil)
	repo.On("ListSubscriptionHistory", mock.Anything).Return([]models.HistoryRecord{}, nil)

	events := new(EventsMock)
	events.On("Publish", mock.Anything, mock.Anything).Return(errors.New("amqp closed"))

	svc := New(newNoopLogger(), repo, events, time.Hour)
	findings, err := svc.ReconcileOnce(context.Background())
	require.NoError(t, err)
	assert.Len(t, findings, 1)
}
