package app

import (
	"errors"
	"net/http"
	"strings"

	"github.com/cofrinho/cofrinho/internal/auth"
	"github.com/cofrinho/cofrinho/internal/config"
	"github.com/cofrinho/cofrinho/internal/rest"
	"github.com/cofrinho/cofrinho/pkg/user"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies, cfg config.Application) {
	r.Use(metricsMiddleware)
	r.Use(authMiddleware(deps.UserService, cfg.Auth))
}

// authMiddleware puts the authenticated user into the request context. Requests without credentials
// pass through anonymously; services reject them where a user is required.
func authMiddleware(userService user.Service, cfg config.Auth) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := req.Context()

			if header := req.Header.Get("Authorization"); header != "" {
				token, ok := strings.CutPrefix(header, "Bearer ")
				if !ok || token == "" {
					rest.WriteError(w, http.StatusUnauthorized, "Invalid authorization header", "")
					return
				}
				u, claims, err := userService.Authenticate(ctx, token)
				if err != nil {
					writeAuthError(w, err)
					return
				}
				log.Debugf("authenticated user %s", u.Uid)
				ctx = auth.WithClaims(user.WithUser(ctx, u), claims)
			} else if uid := req.Header.Get("X-User-Id"); uid != "" && cfg.TrustUserHeader {
				u, err := userService.GetUserByUid(ctx, uid)
				if err != nil {
					if errors.Is(err, user.ErrUserNotFound) {
						log.Debugf("user not found: %s", uid)
						rest.WriteError(w, http.StatusForbidden, "User not found", "")
						return
					}
					log.Errorf("failed to get user: %v", err)
					rest.WriteError(w, http.StatusInternalServerError, "Failed to get user", "")
					return
				}
				ctx = user.WithUser(ctx, u)
			}

			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrRevokedToken), errors.Is(err, user.ErrUserNotFound):
		rest.WriteError(w, http.StatusUnauthorized, "Invalid or expired token", "")
	case errors.Is(err, user.ErrInactiveUser):
		rest.WriteError(w, http.StatusForbidden, "User account is disabled", "")
	default:
		log.Errorf("failed to authenticate request: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to authenticate", "")
	}
}
