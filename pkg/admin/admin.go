package admin

import "time"

const (
	ActiveWindow = 30 * 24 * time.Hour
	SignupDays   = 7
)

// Account is the slice of a user row the dashboard needs.
type Account struct {
	Id          int
	IsActive    bool
	LastLoginAt *time.Time
	CreatedAt   time.Time
}

type DailySignups struct {
	Day   time.Time
	Count int
}

type Stats struct {
	TotalUsers  int
	ActiveUsers int
	TotalItems  int
	// Signups covers the last SignupDays days including today, oldest first.
	Signups []DailySignups
}

// ComputeStats derives dashboard numbers from the account list. Days are UTC calendar days.
func ComputeStats(accounts []Account, totalItems int, now time.Time) Stats {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	first := today.AddDate(0, 0, -(SignupDays - 1))

	signups := make([]DailySignups, SignupDays)
	for i := range signups {
		signups[i].Day = first.AddDate(0, 0, i)
	}

	active := 0
	for _, a := range accounts {
		if a.IsActive && a.LastLoginAt != nil && now.Sub(*a.LastLoginAt) <= ActiveWindow {
			active++
		}
		created := a.CreatedAt.UTC()
		if created.Before(first) || !created.Before(today.AddDate(0, 0, 1)) {
			continue
		}
		day := int(created.Sub(first) / (24 * time.Hour))
		signups[day].Count++
	}

	return Stats{
		TotalUsers:  len(accounts),
		ActiveUsers: active,
		TotalItems:  totalItems,
		Signups:     signups,
	}
}
