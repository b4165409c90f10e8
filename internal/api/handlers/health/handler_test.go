package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-DetailingBooking/pkg/logger"
)

func TestLive(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler(logger.NewNop()).Live(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReady(t *testing.T) {
	ok := func(ctx context.Context) error { return nil }
	down := func(ctx context.Context) error { return errors.New("connection refused") }

	t.Run("all healthy", func(t *testing.T) {
		h := NewHandler(logger.NewNop()).WithCheck("database", ok).WithCheck("redis", ok)

		rec := httptest.NewRecorder()
		h.Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok","checks":{"database":"ok","redis":"ok"}}`, rec.Body.String())
	})

	t.Run("one dependency down", func(t *testing.T) {
		h := NewHandler(logger.NewNop()).WithCheck("database", down).WithCheck("redis", ok)

		rec := httptest.NewRecorder()
		h.Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.JSONEq(t, `{"status":"unavailable","checks":{"database":"unavailable","redis":"ok"}}`, rec.Body.String())
	})
}
