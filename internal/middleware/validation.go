package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/irah1999/cloud-flair/internal/models"
	"github.com/irah1999/cloud-flair/internal/utils"
)

const maxBodyBytes = 1 << 20

type bodyKey struct{}

// Validator is implemented by request bodies that check their own fields.
type Validator interface {
	Validate() error
}

// DecodeJSON parses the request body into a T and runs its Validate method
// before calling next. Bad bodies are answered with 400.
func DecodeJSON[T any, PT interface {
	*T
	Validator
}]() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body := PT(new(T))
			if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(body); err != nil {
				utils.JSONError(w, http.StatusBadRequest, "Invalid JSON in request body")
				return
			}
			if err := body.Validate(); err != nil {
				utils.JSONError(w, http.StatusBadRequest, models.ValidationMessage(err))
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), bodyKey{}, body)))
		})
	}
}

// Body returns the value stored by DecodeJSON[T], or nil when the route has none.
func Body[T any](r *http.Request) *T {
	v, _ := r.Context().Value(bodyKey{}).(*T)
	return v
}
