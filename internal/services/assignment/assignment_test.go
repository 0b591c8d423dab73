package assignment

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
	"github.com/subpanel/subscription-admin/internal/cache"
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

func (m *RepoMock) ListPlans(ctx context.Context) ([]models.Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Plan), args.Error(1)
}

func (m *RepoMock) UpdateUserSubscription(ctx context.Context, id, planID string, startDate, endDate time.Time) (int64, error) {
	args := m.Called(ctx, id, planID, startDate, endDate)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) AppendSubscriptionHistory(ctx context.Context, rec models.HistoryRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

type CacheMock struct {
	mock.Mock
}

func (m *CacheMock) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
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

func newService(repo *RepoMock, c *CacheMock, events *EventsMock, now time.Time) *Service {
	svc := New(newNoopLogger(), repo, c, events)
	svc.now = func() time.Time { return now }
	return svc
}

func testUsers() []models.User {
	return []models.User{
		{ID: "ALICE", Username: "alice", FullName: "Alice Smith"},
		{ID: "BOB", Username: "bob", FullName: "Bob Jones"},
	}
}

func testPlans() []models.Plan {
	return []models.Plan{
		{ID: "basic", Name: "Basic", Duration: "1 month", Price: 199},
		{ID: "quarterly", Name: "Quarterly", Duration: "3 months", Price: 499},
	}
}

func TestAssignValidation(t *testing.T) {
	repo := new(RepoMock)
	svc := newService(repo, new(CacheMock), new(EventsMock), time.Now())

	_, err := svc.Assign(context.Background(), models.DummyAssign{User: "", PlanID: "basic"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Assign(context.Background(), models.DummyAssign{User: "alice", PlanID: "  "})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	repo.AssertNotCalled(t, "ListUsers", mock.Anything)
}

func TestAssignListUsersFails(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListUsers", mock.Anything).Return(nil, errors.New("connection refused"))
	svc := newService(repo, new(CacheMock), new(EventsMock), time.Now())

	_, err := svc.Assign(context.Background(), models.DummyAssign{User: "alice", PlanID: "basic"})
	assert.ErrorIs(t, err, apperrors.ErrRemoteRead)
	repo.AssertNotCalled(t, "UpdateUserSubscription", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAssignClampsEndOfMonth(t *testing.T) {
	now := time.Date(2024, time.January, 31, 15, 4, 5, 0, time.UTC)
	wantEnd := time.Date(2024, time.April, 30, 15, 4, 5, 0, time.UTC)

	repo := new(RepoMock)
	repo.On("ListUsers", mock.Anything).Return(testUsers(), nil)
	repo.On("ListPlans", mock.Anything).Return(testPlans(), nil)
	repo.On("UpdateUserSubscription", mock.Anything, "ALICE", "quarterly", now, wantEnd).
		Return(int64(1), nil)
	repo.On("AppendSubscriptionHistory", mock.Anything, mock.MatchedBy(func(rec models.HistoryRecord) bool {
		return rec.UserID == "ALICE" && rec.PlanID == "quarterly" &&
			rec.EndDate == "2024-04-30" && rec.Status == models.StatusActive &&
			rec.StartDate.Equal(now) && rec.CreatedAt.Equal(now) && rec.ID != ""
	})).Return(nil)

	c := new(CacheMock)
	c.On("Invalidate", cache.KeyUsers).Return(nil)
	c.On("Invalidate", cache.KeyHistory).Return(nil)
	events := new(EventsMock)
	events.On("Publish", "subscription.assigned", mock.Anything).Return(nil)

	svc := newService(repo, c, events, now)
	res, err := svc.Assign(context.Background(), models.DummyAssign{User: "alice", PlanID: "quarterly"})
	require.NoError(t, err)
	assert.Equal(t, "ALICE", res.UserID)
	assert.Equal(t, 3, res.Months)
	assert.Equal(t, wantEnd, res.EndDate)
	repo.AssertExpectations(t)
	c.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestAssignResolvesByDocumentKeyAndLiteral(t *testing.T) {
	now := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "document key", input: "BOB", want: "BOB"},
		{name: "unknown input used as is", input: "GHOST", want: "GHOST"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(RepoMock)
			repo.On("ListUsers", mock.Anything).Return(testUsers(), nil)
			repo.On("ListPlans", mock.Anything).Return(testPlans(), nil)
			repo.On("UpdateUserSubscription", mock.Anything, tc.want, "basic", mock.Anything, mock.Anything).
				Return(int64(1), nil)
			repo.On("AppendSubscriptionHistory", mock.Anything, mock.Anything).Return(nil)

			c := new(CacheMock)
			c.On("Invalidate", mock.Anything).Return(nil)
			events := new(EventsMock)
			events.On("Publish", mock.Anything, mock.Anything).Return(nil)

			svc := newService(repo, c, events, now)
			res, err := svc.Assign(context.Background(), models.DummyAssign{User: tc.input, PlanID: "basic"})
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.UserID)
		})
	}
}

func TestAssignUnknownPlanDefaultsToOneMonth(t *testing.T) {
	now := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, time.July, 10, 0, 0, 0, 0, time.UTC)

	repo := new(RepoMock)
	repo.On("ListUsers", mock.Anything).Return(testUsers(), nil)
	repo.On("ListPlans", mock.Anything).Return(testPlans(), nil)
	repo.On("UpdateUserSubscription", mock.Anything, "ALICE", "retired-plan", now, wantEnd).
		Return(int64(1), nil)
	repo.On("AppendSubscriptionHistory", mock.Anything, mock.Anything).Return(nil)

	c := new(CacheMock)
	c.On("Invalidate", mock.Anything).Return(nil)
	events := new(EventsMock)
	events.On("Publish", mock.Anything, mock.Anything).Return(nil)

	svc := newService(repo, c, events, now)
	res, err := svc.Assign(context.Background(), models.DummyAssign{User: "alice", PlanID: "retired-plan"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Months)
	assert.Equal(t, "retired-plan", res.PlanID)
}

func TestAssignUserMissing(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListUsers", mock.Anything).Return(testUsers(), nil)
	repo.On("ListPlans", mock.Anything).Return(testPlans(), nil)
	repo.On("UpdateUserSubscription", mock.Anything, "GHOST", "basic", mock.Anything, mock.Anything).
		Return(int64(0), nil)

	svc := newService(repo, new(CacheMock), new(EventsMock), time.Now())
	_, err := svc.Assign(context.Background(), models.DummyAssign{User: "GHOST", PlanID: "basic"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertNotCalled(t, "AppendSubscriptionHistory", mock.Anything, mock.Anything)
}

func TestAssignUserUpdateFails(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListUsers", mock.Anything).Return(testUsers(), nil)
	repo.On("ListPlans", mock.Anything).Return(testPlans(), nil)
	repo.On("UpdateUserSubscription", mock.Anything, "ALICE", "basic", mock.Anything, mock.Anything).
		Return(int64(0), errors.New("write timeout"))

	svc := newService(repo, new(CacheMock), new(EventsMock), time.Now())
	_, err := svc.Assign(context.Background(), models.DummyAssign{User: "alice", PlanID: "basic"})
	assert.ErrorIs(t, err, apperrors.ErrRemoteWrite)
	repo.AssertNotCalled(t, "AppendSubscriptionHistory", mock.Anything, mock.Anything)
}

func TestAssignPartialCompletion(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListUsers", mock.Anything).Return(testUsers(), nil)
	repo.On("ListPlans", mock.Anything).Return(testPlans(), nil)
	repo.On("UpdateUserSubscription", mock.Anything, "ALICE", "basic", mock.Anything, mock.Anything).
		Return(int64(1), nil)
	repo.On("AppendSubscriptionHistory", mock.Anything, mock.Anything).
		Return(errors.New("insert failed"))

	svc := newService(repo, new(CacheMock), new(EventsMock), time.Now())
	_, err := svc.Assign(context.Background(), models.DummyAssign{User: "alice", PlanID: "basic"})
	require.Error(t, err)

	var partial *apperrors.PartialCompletionError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, "user record update", partial.Completed)
	assert.Equal(t, "history append", partial.Failed)
}

func TestAssignPublishFailureDoesNotFail(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListUsers", mock.Anything).Return(testUsers(), nil)
	repo.On("ListPlans", mock.Anything).Return(testPlans(), nil)
	repo.On("UpdateUserSubscription", mock.Anything, "ALICE", "basic", mock.Anything, mock.Anything).
		Return(int64(1), nil)
	repo.On("AppendSubscriptionHistory", mock.Anything, mock.Anything).Return(nil)

	c := new(CacheMock)
	c.On("Invalidate", mock.Anything).Return(errors.New("redis down"))
	events := new(EventsMock)
	events.On("Publish", mock.Anything, mock.Anything).Return(errors.New("amqp closed"))

	svc := newService(repo, c, events, time.Now())
	_, err := svc.Assign(context.Background(), models.DummyAssign{User: "alice", PlanID: "basic"})
	assert.NoError(t, err)
}

func TestParseMonths(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"1 month", 1},
		{"3 months", 3},
		{"12", 12},
		{"", 1},
		{"forever", 1},
		{"0 months", 1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, parseMonths(tc.in), tc.in)
	}
}
