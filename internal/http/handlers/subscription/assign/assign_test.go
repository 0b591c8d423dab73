package assign

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/subpanel/subscription-admin/internal/apperrors"
	"github.com/subpanel/subscription-admin/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Assign(ctx context.Context, req models.DummyAssign) (*models.AssignmentResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AssignmentResult), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func doRequest(t *testing.T, svc *ServiceMock, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/admin/subscriptions/assign",
		bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	New(newNoopLogger(), svc).ServeHTTP(rr, req)
	return rr
}

func TestAssignHandler(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Assign", mock.Anything, models.DummyAssign{User: "alice", PlanID: "basic"}).
		Return(&models.AssignmentResult{
			UserID:    "ALICE",
			PlanID:    "basic",
			StartDate: time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
			RecordID:  "rec-1",
			Months:    1,
		}, nil)

	rr := doRequest(t, svc, `{"user": "alice", "plan_id": "basic"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Status string                  `json:"status"`
		Data   models.AssignmentResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "OK", resp.Status)
	assert.Equal(t, "ALICE", resp.Data.UserID)
	assert.Equal(t, "rec-1", resp.Data.RecordID)
}

func TestAssignHandlerMissingFields(t *testing.T) {
	svc := new(ServiceMock)
	rr := doRequest(t, svc, `{"user": "alice"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "field PlanID is a required field")
	svc.AssertNotCalled(t, "Assign", mock.Anything, mock.Anything)
}

func TestAssignHandlerBrokenBody(t *testing.T) {
	svc := new(ServiceMock)
	rr := doRequest(t, svc, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAssignHandlerUserNotFound(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Assign", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("op: user GHOST: %w", apperrors.ErrNotFound))

	rr := doRequest(t, svc, `{"user": "GHOST", "plan_id": "basic"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAssignHandlerPartialCompletion(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Assign", mock.Anything, mock.Anything).Return(nil, &apperrors.PartialCompletionError{
		Completed: "user record update",
		Failed:    "history append",
		Err:       errors.New("insert failed"),
	})

	rr := doRequest(t, svc, `{"user": "alice", "plan_id": "basic"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "user record update")
	assert.Contains(t, rr.Body.String(), "history append")
}
