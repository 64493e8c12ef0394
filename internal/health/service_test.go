package health_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendhire/internal/health"
)

type stubChecker struct{ err error }

func (s stubChecker) HealthCheck(ctx context.Context) error { return s.err }

func probe(t *testing.T, app *fiber.App) (int, health.OverallHealth) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	var body health.OverallHealth
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestHandleHealth_ReadyGate(t *testing.T) {
	h := health.NewHandler(map[string]health.Checker{"redis": stubChecker{}})
	app := fiber.New()
	app.Get("/health", h.HandleHealth)

	status, body := probe(t, app)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "starting", body.OverallStatus)
	assert.False(t, body.Ready)

	// Readiness is flipped from a separate goroutine at startup, so the
	// handler must observe the new value on its next probe.
	done := make(chan struct{})
	go func() {
		h.SetReady()
		close(done)
	}()
	<-done

	status, body = probe(t, app)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body.OverallStatus)
	assert.True(t, body.Ready)
	assert.Equal(t, "ok", body.Components["redis"].Status)
}

func TestHandleHealth_FailingComponent(t *testing.T) {
	h := health.NewHandler(map[string]health.Checker{
		"redis":    stubChecker{},
		"postgres": stubChecker{err: fmt.Errorf("connection refused")},
	})
	h.SetReady()
	app := fiber.New()
	app.Get("/health", h.HandleHealth)

	status, body := probe(t, app)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "error", body.OverallStatus)
	assert.Equal(t, "ok", body.Components["redis"].Status)
	assert.Equal(t, "error", body.Components["postgres"].Status)
	assert.Contains(t, body.Components["postgres"].Error, "connection refused")
}
