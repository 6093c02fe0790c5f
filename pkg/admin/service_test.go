package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cofrinho/cofrinho/internal/utils"
	"github.com/cofrinho/cofrinho/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var adminCtx = user.WithUser(context.Background(), user.User{Id: 1, Uid: "admin-1", Role: user.RoleAdmin})
var userCtx = user.WithUser(context.Background(), user.User{Id: 2, Uid: "user-2", Role: user.RoleUser})

var repoStub = NewRepositoryStub()
var clock *utils.MockClock
var service *ServiceImpl

func setup(t *testing.T) func() {
	clock = &utils.MockClock{FixedNow: at("2025-03-10T15:00:00Z")}
	service = NewService(repoStub, clock)
	return func() {
		t.Log("Teardown after test")
		repoStub.Cleanup()
	}
}

func TestServiceImpl_GetStats(t *testing.T) {
	t.Run("should compute stats for admins", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		repoStub.Accounts = []Account{
			{Id: 1, IsActive: true, LastLoginAt: ptr(at("2025-03-10T08:00:00Z")), CreatedAt: at("2025-03-10T07:00:00Z")},
			{Id: 2, IsActive: true, LastLoginAt: ptr(at("2025-01-01T08:00:00Z")), CreatedAt: at("2024-12-01T07:00:00Z")},
		}
		repoStub.Items = 3

		// when
		stats, err := service.GetStats(adminCtx)

		// then
		require.NoError(t, err)
		assert.Equal(t, 2, stats.TotalUsers)
		assert.Equal(t, 1, stats.ActiveUsers)
		assert.Equal(t, 3, stats.TotalItems)
		assert.Equal(t, 1, stats.Signups[SignupDays-1].Count)
	})

	t.Run("should follow the clock", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		repoStub.Accounts = []Account{
			{Id: 1, IsActive: true, LastLoginAt: ptr(at("2025-03-10T08:00:00Z")), CreatedAt: at("2025-03-10T07:00:00Z")},
		}
		clock.SetNow(at("2025-04-20T00:00:00Z"))

		// when
		stats, err := service.GetStats(adminCtx)

		// then
		require.NoError(t, err)
		assert.Equal(t, 0, stats.ActiveUsers)
		for _, s := range stats.Signups {
			assert.Equal(t, 0, s.Count)
		}
	})

	t.Run("should forbid regular users", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.GetStats(userCtx)

		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("should fail without user", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.GetStats(context.Background())

		assert.ErrorIs(t, err, user.ErrNoUser)
	})

	t.Run("should wrap repository errors", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		failure := errors.New("db down")
		repoStub.Err = failure

		// when
		_, err := service.GetStats(adminCtx)

		// then
		assert.ErrorIs(t, err, failure)
	})
}

func TestHandler_GetStats(t *testing.T) {
	t.Run("should return stats as json", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		repoStub.Accounts = []Account{{Id: 1, CreatedAt: at("2025-03-09T10:00:00Z")}}
		handler := NewHandler(service)
		req := httptest.NewRequest("GET", "/api/admin/stats", nil).WithContext(adminCtx)
		rr := httptest.NewRecorder()

		// when
		handler.GetStats(rr, req)

		// then
		require.Equal(t, http.StatusOK, rr.Code)
		var dto StatsDTO
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&dto))
		assert.Equal(t, 1, dto.TotalUsers)
		require.Len(t, dto.Signups, SignupDays)
		assert.Equal(t, "2025-03-04", dto.Signups[0].Day)
		assert.Equal(t, "2025-03-09", dto.Signups[5].Day)
		assert.Equal(t, 1, dto.Signups[5].Count)
	})

	t.Run("should return 403 for regular users", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		handler := NewHandler(service)
		req := httptest.NewRequest("GET", "/api/admin/stats", nil).WithContext(userCtx)
		rr := httptest.NewRecorder()

		handler.GetStats(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}
