package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/cofrinho/cofrinho/internal/rest"
	log "github.com/sirupsen/logrus"
)

type SignUpDTO struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type SignInDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionDTO struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserDTO   `json:"user"`
}

type AuthHandler struct {
	userService Service
}

func NewAuthHandler(userService Service) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// SignUp godoc
// @Summary Register a new account
// @Tags Auth
// @Accept json
// @Produce json
// @Param account body SignUpDTO true "Account"
// @Success 201 {object} UserDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 409 {object} rest.ErrorResponse "Email already registered"
// @Router /api/auth/signup [post]
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	log.Debug("Signing up")

	var body SignUpDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	created, err := h.userService.SignUp(r.Context(), body.Email, body.Name, body.Password)
	if err != nil {
		writeUserError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, userToDTO(created))
}

// SignIn godoc
// @Summary Sign in with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body SignInDTO true "Credentials"
// @Success 200 {object} SessionDTO
// @Failure 401 {object} rest.ErrorResponse "Invalid credentials"
// @Router /api/auth/signin [post]
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	log.Debug("Signing in")

	var body SignInDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	session, err := h.userService.SignIn(r.Context(), body.Email, body.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			rest.WriteError(w, http.StatusUnauthorized, "Invalid email or password", "")
		case errors.Is(err, ErrInactiveUser):
			rest.WriteError(w, http.StatusForbidden, "Account is disabled", "")
		default:
			writeUserError(w, err)
		}
		return
	}

	rest.WriteJSON(w, http.StatusOK, SessionDTO{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      userToDTO(session.User),
	})
}

// SignOut godoc
// @Summary Sign out
// @Description Revoke the bearer token of the request
// @Tags Auth
// @Success 204
// @Failure 403 {object} rest.ErrorResponse "User not found"
// @Router /api/auth/signout [post]
// @Security BearerAuth
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	log.Debug("Signing out")

	if err := h.userService.SignOut(r.Context()); err != nil {
		writeUserError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
