package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/irah1999/cloud-flair/internal/config"
	"github.com/irah1999/cloud-flair/internal/handlers"
	"github.com/irah1999/cloud-flair/internal/lifecycle"
	"github.com/irah1999/cloud-flair/internal/repositories"
	"github.com/irah1999/cloud-flair/internal/stream/cloudflare"
	"github.com/irah1999/cloud-flair/internal/testhelpers"
)

func TestNewLogger(t *testing.T) {
	for _, env := range []string{"development", "production"} {
		logger, err := newLogger(&config.Config{AppEnv: env})
		require.NoError(t, err)
		require.NotNil(t, logger)
	}
}

func TestInitLocker(t *testing.T) {
	locker, rdb := initLocker(&config.Config{}, zap.NewNop())
	assert.IsType(t, lifecycle.LocalLocker{}, locker)
	assert.Nil(t, rdb)

	mr := miniredis.RunT(t)
	locker, rdb = initLocker(&config.Config{RedisAddr: mr.Addr(), ProvisionLockTTL: 1, ProvisionLockWait: 1}, zap.NewNop())
	require.NotNil(t, rdb)
	t.Cleanup(func() { rdb.Close() })
	assert.IsType(t, &lifecycle.RedisLocker{}, locker)
}

func TestInitProvider(t *testing.T) {
	provider, err := initProvider(&config.Config{
		StreamProvider: "cloudflare",
		Cloudflare:     cloudflare.Config{AccountID: "acct", APIToken: "token"},
	})
	require.NoError(t, err)
	assert.Equal(t, "cloudflare", provider.GetProviderName())

	_, err = initProvider(&config.Config{StreamProvider: "cloudflare"})
	assert.Error(t, err, "missing credentials must fail")

	_, err = initProvider(&config.Config{StreamProvider: "mux"})
	assert.Error(t, err)
}

func TestBuildRouter(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	testhelpers.SeedInterview(t, db, "INT-1")

	provider, err := initProvider(&config.Config{
		StreamProvider: "cloudflare",
		Cloudflare:     cloudflare.Config{AccountID: "acct", APIToken: "token"},
	})
	require.NoError(t, err)

	ctrl := lifecycle.NewController(&repositories.InterviewRepository{DB: db}, provider, zap.NewNop(), lifecycle.Options{})
	router := buildRouter(&config.Config{},
		handlers.NewInterviewHandler(ctrl, zap.NewNop()),
		handlers.NewHealthHandler(db, nil, provider))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/join", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, rec.Body.Len())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/join", bytes.NewBufferString(`{"code":"MISSING"}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "interview_http_requests_total")
}
