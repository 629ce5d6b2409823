package app

import (
	"encoding/json"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/apontei/apontei/internal/rest"
	"github.com/apontei/apontei/pkg/user"
)

// authMiddleware validates the Bearer token, loads the user and puts it on
// the request context. Inactive and deleted users are cut off here even if
// their token is still valid.
func authMiddleware(deps *TokenDeps) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w, "Missing bearer token")
				return
			}
			tokenString := strings.TrimPrefix(header, "Bearer ")

			claims, err := deps.Issuer.Validate(tokenString)
			if err != nil {
				log.Debugf("token validation failed: %v", err)
				unauthorized(w, "Invalid or expired token")
				return
			}

			u, err := deps.Users.FindByID(r.Context(), claims.UserID)
			if err != nil {
				unauthorized(w, "Invalid or expired token")
				return
			}
			if u.Status != user.StatusActive {
				unauthorized(w, "User is inactive")
				return
			}

			next.ServeHTTP(w, r.WithContext(user.WithUser(r.Context(), u)))
		})
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Debugf("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if err := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: message}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
