package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

var (
	corsMethods = []string{"GET", "POST", "OPTIONS", "PUT", "DELETE"}
	corsHeaders = []string{"Content-Type", "Authorization", "X-Requested-With"}
)

// CORS opens the API to any origin. Every response advertises the full method
// and header lists, and every OPTIONS request is answered here with headers
// only. Actual requests pass through go-chi/cors for Vary and origin handling.
func CORS() func(http.Handler) http.Handler {
	actual := cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: corsMethods,
		AllowedHeaders: corsHeaders,
		MaxAge:         300,
	})

	methods := strings.Join(corsMethods, ", ")
	headers := strings.Join(corsHeaders, ", ")

	return func(next http.Handler) http.Handler {
		inner := actual(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", "*")
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)

			if r.Method == http.MethodOptions {
				h.Set("Access-Control-Max-Age", "300")
				w.WriteHeader(http.StatusOK)
				return
			}
			inner.ServeHTTP(w, r)
		})
	}
}
