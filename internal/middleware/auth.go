package middleware

import (
	"net/http"

	"github.com/irah1999/cloud-flair/internal/utils"
)

// RequireMonitor guards monitoring endpoints with an HS256 bearer token.
// An empty secret leaves the endpoint open.
func RequireMonitor(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := utils.VerifyToken(r, secret); err != nil {
				utils.JSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
