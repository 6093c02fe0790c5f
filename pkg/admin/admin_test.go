package admin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr(t time.Time) *time.Time {
	return &t
}

func TestComputeStats(t *testing.T) {
	now := at("2025-03-10T15:00:00Z")

	t.Run("should count active users within thirty days", func(t *testing.T) {
		// given
		accounts := []Account{
			{Id: 1, IsActive: true, LastLoginAt: ptr(at("2025-03-09T10:00:00Z")), CreatedAt: at("2024-01-01T00:00:00Z")},
			{Id: 2, IsActive: true, LastLoginAt: ptr(at("2025-02-08T15:00:00Z")), CreatedAt: at("2024-01-01T00:00:00Z")},
			{Id: 3, IsActive: true, LastLoginAt: ptr(at("2025-02-01T00:00:00Z")), CreatedAt: at("2024-01-01T00:00:00Z")},
			{Id: 4, IsActive: false, LastLoginAt: ptr(at("2025-03-10T14:00:00Z")), CreatedAt: at("2024-01-01T00:00:00Z")},
			{Id: 5, IsActive: true, CreatedAt: at("2024-01-01T00:00:00Z")},
		}

		// when
		stats := ComputeStats(accounts, 12, now)

		// then
		assert.Equal(t, 5, stats.TotalUsers)
		assert.Equal(t, 2, stats.ActiveUsers)
		assert.Equal(t, 12, stats.TotalItems)
	})

	t.Run("should bucket signups of the last seven days oldest first", func(t *testing.T) {
		// given
		accounts := []Account{
			{Id: 1, CreatedAt: at("2025-03-03T23:59:59Z")},
			{Id: 2, CreatedAt: at("2025-03-04T00:00:00Z")},
			{Id: 3, CreatedAt: at("2025-03-04T18:30:00Z")},
			{Id: 4, CreatedAt: at("2025-03-07T09:00:00Z")},
			{Id: 5, CreatedAt: at("2025-03-10T14:59:00Z")},
		}

		// when
		stats := ComputeStats(accounts, 0, now)

		// then
		require.Len(t, stats.Signups, SignupDays)
		assert.Equal(t, at("2025-03-04T00:00:00Z"), stats.Signups[0].Day)
		assert.Equal(t, at("2025-03-10T00:00:00Z"), stats.Signups[6].Day)
		counts := make([]int, 0, SignupDays)
		for _, s := range stats.Signups {
			counts = append(counts, s.Count)
		}
		assert.Equal(t, []int{2, 0, 0, 1, 0, 0, 1}, counts)
	})

	t.Run("should return empty buckets without accounts", func(t *testing.T) {
		stats := ComputeStats(nil, 0, now)

		assert.Equal(t, 0, stats.TotalUsers)
		assert.Len(t, stats.Signups, SignupDays)
	})
}
