package notification

import (
	"net/http"
	"time"

	"github.com/cofrinho/cofrinho/internal/rest"
	"github.com/cofrinho/cofrinho/pkg/user"
)

type NotificationDTO struct {
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type Handler struct {
	inbox *Inbox
}

func NewHandler(inbox *Inbox) *Handler {
	return &Handler{inbox: inbox}
}

// List godoc
// @Summary Drain pending notifications
// @Description Returns the notifications collected since the last call, oldest first
// @Tags Notification
// @Produce json
// @Success 200 {array} NotificationDTO
// @Failure 403 {object} rest.ErrorResponse "User not found"
// @Router /api/notifications [get]
// @Security BearerAuth
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userId, err := user.CurrentId(r.Context())
	if err != nil {
		rest.WriteError(w, http.StatusForbidden, "User not found", "")
		return
	}

	pending := h.inbox.Drain(userId)
	dtos := make([]NotificationDTO, 0, len(pending))
	for _, n := range pending {
		dtos = append(dtos, NotificationDTO{
			Kind:      n.Kind,
			Title:     n.Title,
			Message:   n.Message,
			CreatedAt: n.CreatedAt,
		})
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}
