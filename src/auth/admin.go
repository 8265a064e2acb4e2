package auth

import (
	"net/http"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const adminTokenHeader = "X-Admin-Token"

// RequireAdminToken guards mutating endpoints with a shared admin token.
// tokenHash is a bcrypt hash so the plaintext never lives in config. With no
// hash configured the endpoint is disabled outright.
func RequireAdminToken(tokenHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenHash == "" {
				http.Error(w, "admin endpoints disabled", http.StatusServiceUnavailable)
				return
			}

			token := r.Header.Get(adminTokenHeader)
			if token == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if err := bcrypt.CompareHashAndPassword([]byte(tokenHash), []byte(token)); err != nil {
				logger.WithField("path", r.URL.Path).Warn("[auth] rejected admin token")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
