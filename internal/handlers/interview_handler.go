package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/irah1999/cloud-flair/internal/lifecycle"
	"github.com/irah1999/cloud-flair/internal/middleware"
	"github.com/irah1999/cloud-flair/internal/models"
	"github.com/irah1999/cloud-flair/internal/utils"
)

const msgSubmitted = "Interview submitted successfully."

// InterviewService is the session lifecycle the HTTP layer drives.
type InterviewService interface {
	Join(ctx context.Context, code string) (*models.Interview, error)
	Submit(ctx context.Context, id uint, answers json.RawMessage, score int) error
	Details(ctx context.Context, code string) (*models.Interview, error)
}

type InterviewHandler struct {
	service InterviewService
	logger  *zap.Logger
}

func NewInterviewHandler(service InterviewService, logger *zap.Logger) *InterviewHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InterviewHandler{service: service, logger: logger}
}

// Join handles POST /api/join. The body is validated by middleware.DecodeJSON.
func (h *InterviewHandler) Join(w http.ResponseWriter, r *http.Request) {
	req := middleware.Body[models.JoinRequest](r)

	iv, err := h.service.Join(r.Context(), req.Code)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, iv)
}

// Submit handles POST /api/submit.
func (h *InterviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	req := middleware.Body[models.SubmitRequest](r)

	if err := h.service.Submit(r.Context(), req.ID, req.Answers, req.Score); err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, models.MessageResponse{Message: msgSubmitted})
}

// Details handles GET /api/details/{code}.
func (h *InterviewHandler) Details(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		utils.JSONError(w, http.StatusBadRequest, "code is required")
		return
	}

	iv, err := h.service.Details(r.Context(), code)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, iv)
}

func (h *InterviewHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var lerr *lifecycle.Error
	if !errors.As(err, &lerr) {
		h.logger.Error("unexpected lifecycle error", zap.String("path", r.URL.Path), zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	status := statusForKind(lerr.Kind)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("kind", string(lerr.Kind)),
			zap.Error(err))
	}
	utils.JSONError(w, status, lerr.Message)
}

func statusForKind(kind lifecycle.Kind) int {
	switch kind {
	case lifecycle.KindNotFound:
		return http.StatusNotFound
	case lifecycle.KindInvalidTransition:
		return http.StatusConflict
	default:
		// provider and store failures
		return http.StatusInternalServerError
	}
}
