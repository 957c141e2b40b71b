package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/irah1999/cloud-flair/internal/testhelpers"
)

func TestHealthzHandler(t *testing.T) {
	h := NewHealthHandler(nil, nil, nil)
	rec := httptest.NewRecorder()
	h.HealthzHandler(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody[map[string]string](t, rec)
	if body["status"] != "ok" || body["service"] != "interview" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestReadyzHandler(t *testing.T) {
	t.Run("ready without redis", func(t *testing.T) {
		h := NewHealthHandler(testhelpers.SetupTestDB(t), nil, &stubProvider{})
		rec := httptest.NewRecorder()
		h.ReadyzHandler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		body := decodeBody[ReadinessResponse](t, rec)
		if body.Status != "ready" {
			t.Fatalf("expected ready, got %s", body.Status)
		}
		if _, ok := body.Checks["redis"]; ok {
			t.Fatal("redis check should be skipped without a client")
		}
		if body.Checks["stream_provider"].Message != "stub" {
			t.Fatalf("unexpected provider check %+v", body.Checks["stream_provider"])
		}
	})

	t.Run("ready with redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { rdb.Close() })

		h := NewHealthHandler(testhelpers.SetupTestDB(t), rdb, &stubProvider{})
		rec := httptest.NewRecorder()
		h.ReadyzHandler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if decodeBody[ReadinessResponse](t, rec).Checks["redis"].Status != "ok" {
			t.Fatal("expected redis check to pass")
		}
	})

	t.Run("redis down", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
		t.Cleanup(func() { rdb.Close() })
		mr.Close()

		h := NewHealthHandler(testhelpers.SetupTestDB(t), rdb, &stubProvider{})
		rec := httptest.NewRecorder()
		h.ReadyzHandler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
		if decodeBody[ReadinessResponse](t, rec).Checks["redis"].Status != "failed" {
			t.Fatal("expected redis check to fail")
		}
	})

	t.Run("nothing initialized", func(t *testing.T) {
		h := NewHealthHandler(nil, nil, nil)
		rec := httptest.NewRecorder()
		h.ReadyzHandler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
		body := decodeBody[ReadinessResponse](t, rec)
		if body.Status != "not_ready" || body.Checks["database"].Status != "failed" {
			t.Fatalf("unexpected body %+v", body)
		}
	})
}
