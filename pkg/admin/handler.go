package admin

import (
	"errors"
	"net/http"

	"github.com/cofrinho/cofrinho/internal/rest"
	"github.com/cofrinho/cofrinho/pkg/user"
	log "github.com/sirupsen/logrus"
)

type StatsDTO struct {
	TotalUsers  int               `json:"totalUsers"`
	ActiveUsers int               `json:"activeUsers"`
	TotalItems  int               `json:"totalItems"`
	Signups     []DailySignupsDTO `json:"signups"`
}

type DailySignupsDTO struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetStats godoc
// @Summary Get platform statistics
// @Description Users, active users, items and signups over the last seven days
// @Tags Admin
// @Produce json
// @Success 200 {object} StatsDTO
// @Failure 403 {object} rest.ErrorResponse "Admin role required"
// @Router /api/admin/stats [get]
// @Security BearerAuth
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	log.Debug("Getting admin stats")

	stats, err := h.service.GetStats(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNoUser), errors.Is(err, ErrForbidden):
			rest.WriteError(w, http.StatusForbidden, "Forbidden", err.Error())
		default:
			log.Errorf("failed to get admin stats: %v", err)
			rest.WriteError(w, http.StatusInternalServerError, "Failed to get stats", "")
		}
		return
	}

	signups := make([]DailySignupsDTO, 0, len(stats.Signups))
	for _, s := range stats.Signups {
		signups = append(signups, DailySignupsDTO{Day: s.Day.Format("2006-01-02"), Count: s.Count})
	}
	rest.WriteJSON(w, http.StatusOK, StatsDTO{
		TotalUsers:  stats.TotalUsers,
		ActiveUsers: stats.ActiveUsers,
		TotalItems:  stats.TotalItems,
		Signups:     signups,
	})
}
