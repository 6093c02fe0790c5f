package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/cofrinho/cofrinho/internal/rest"
	"github.com/cofrinho/cofrinho/pkg/storage"
	log "github.com/sirupsen/logrus"
)

type UserDTO struct {
	Uid         string     `json:"uid"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	AvatarUrl   string     `json:"avatarUrl,omitempty"`
	Role        Role       `json:"role"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type ProfileDTO struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Handler struct {
	userService Service
}

func NewHandler(userService Service) *Handler {
	return &Handler{
		userService: userService,
	}
}

// CurrentUser godoc
// @Summary Get current user
// @Description Retrieve the currently authenticated user's information
// @Tags User
// @Produce json
// @Success 200 {object} UserDTO
// @Failure 403 {object} rest.ErrorResponse "User not found"
// @Router /api/user/current [get]
// @Security BearerAuth
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	log.Trace("Getting current user")

	currentUser, err := h.userService.GetCurrentUser(r.Context())
	if err != nil {
		writeUserError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, userToDTO(currentUser))
}

// UpdateProfile godoc
// @Summary Update current user
// @Description Change name and email of the currently authenticated user
// @Tags User
// @Accept json
// @Produce json
// @Param profile body ProfileDTO true "Profile"
// @Success 200 {object} UserDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 409 {object} rest.ErrorResponse "Email already registered"
// @Router /api/user/current [put]
// @Security BearerAuth
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	log.Trace("Updating user profile")

	var profile ProfileDTO
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	updated, err := h.userService.UpdateProfile(r.Context(), profile.Name, profile.Email)
	if err != nil {
		writeUserError(w, err)
		return
	}
	log.Debugf("Updated profile of user %s", updated.Uid)
	rest.WriteJSON(w, http.StatusOK, userToDTO(updated))
}

// UploadAvatar godoc
// @Summary Upload avatar
// @Description Upload a profile image (max 5 MB) for the current user
// @Tags User
// @Accept multipart/form-data
// @Produce json
// @Param avatar formData file true "Avatar image"
// @Success 200 {object} UserDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid file"
// @Failure 413 {object} rest.ErrorResponse "File too large"
// @Router /api/user/current/avatar [put]
// @Security BearerAuth
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	log.Trace("Uploading avatar")

	upload, err := storage.ReadImageUpload(w, r, "avatar")
	if err != nil {
		rest.WriteUploadError(w, err)
		return
	}

	updated, err := h.userService.UploadAvatar(r.Context(), upload)
	if err != nil {
		writeUserError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, userToDTO(updated))
}

func writeUserError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNoUser):
		rest.WriteError(w, http.StatusForbidden, "User not found", "")
	case errors.Is(err, ErrUserNotFound):
		rest.WriteError(w, http.StatusNotFound, "User not found", "")
	case errors.Is(err, ErrUserDataInvalid):
		rest.WriteError(w, http.StatusBadRequest, "Invalid user data", err.Error())
	case errors.Is(err, ErrEmailTaken):
		rest.WriteError(w, http.StatusConflict, "Email already registered", "")
	default:
		log.Errorf("user request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Internal server error", "")
	}
}

func userToDTO(u User) UserDTO {
	return UserDTO{
		Uid:         u.Uid,
		Email:       u.Email,
		Name:        u.Name,
		AvatarUrl:   u.AvatarUrl,
		Role:        u.Role,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}
