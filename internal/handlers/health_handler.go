package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/irah1999/cloud-flair/internal/stream"
	"github.com/irah1999/cloud-flair/internal/utils"
)

const serviceName = "interview"

var errDatabaseNotInitialized = errors.New("database not initialized")

type ReadinessCheck struct {
	Status  string `json:"status"` // "ok" | "failed"
	Message string `json:"message,omitempty"`
}

type ReadinessResponse struct {
	Status  string                    `json:"status"` // "ready" | "not_ready"
	Service string                    `json:"service"`
	Checks  map[string]ReadinessCheck `json:"checks"`
}

type HealthHandler struct {
	db       *gorm.DB
	redis    *redis.Client // nil when the local locker is used
	provider stream.Provider
}

func NewHealthHandler(db *gorm.DB, rdb *redis.Client, provider stream.Provider) *HealthHandler {
	return &HealthHandler{db: db, redis: rdb, provider: provider}
}

func (handler *HealthHandler) HealthzHandler(writer http.ResponseWriter, request *http.Request) {
	utils.JSON(writer, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": serviceName,
	})
}

func (handler *HealthHandler) ReadyzHandler(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]ReadinessCheck)
	allChecksPass := true
	record := func(name string, err error) {
		if err != nil {
			checks[name] = ReadinessCheck{Status: "failed", Message: err.Error()}
			allChecksPass = false
			return
		}
		checks[name] = ReadinessCheck{Status: "ok"}
	}

	record("database", handler.pingDatabase(ctx))

	if handler.redis != nil {
		record("redis", handler.redis.Ping(ctx).Err())
	}

	if handler.provider == nil {
		checks["stream_provider"] = ReadinessCheck{Status: "failed", Message: "Stream provider not initialized"}
		allChecksPass = false
	} else {
		checks["stream_provider"] = ReadinessCheck{Status: "ok", Message: handler.provider.GetProviderName()}
	}

	response := ReadinessResponse{
		Service: serviceName,
		Checks:  checks,
	}
	if allChecksPass {
		response.Status = "ready"
		utils.JSON(writer, http.StatusOK, response)
	} else {
		response.Status = "not_ready"
		utils.JSON(writer, http.StatusServiceUnavailable, response)
	}
}

func (handler *HealthHandler) pingDatabase(ctx context.Context) error {
	if handler.db == nil {
		return errDatabaseNotInitialized
	}
	sqlDB, err := handler.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
