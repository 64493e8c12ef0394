package health

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"trendhire/internal/logger"
)

// Checker is any dependency that can report its own health.
type Checker interface {
	HealthCheck(ctx context.Context) error
}

// Handler answers health probes with per-component status.
type Handler struct {
	log        *logger.Logger
	components map[string]Checker
	startTime  time.Time
	isReady    atomic.Bool
}

func NewHandler(components map[string]Checker) *Handler {
	return &Handler{
		log:        logger.New("HealthCheck"),
		components: components,
		startTime:  time.Now(),
	}
}

// SetReady marks the application as ready to receive traffic. Safe to call
// from a goroutine other than the one serving probes.
func (h *Handler) SetReady() {
	h.isReady.Store(true)
	h.log.LogInfof("application ready after %v", time.Since(h.startTime))
}

type ComponentStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type OverallHealth struct {
	OverallStatus string                     `json:"overall_status"`
	Timestamp     string                     `json:"timestamp"`
	Ready         bool                       `json:"ready"`
	UptimeSeconds int64                      `json:"uptime_seconds"`
	Components    map[string]ComponentStatus `json:"components"`
}

func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 8*time.Second)
	defer cancel()

	statuses := make(map[string]ComponentStatus)
	var wg sync.WaitGroup
	var mu sync.Mutex
	allOk := true

	for name, checker := range h.components {
		wg.Add(1)
		go func(name string, checker Checker) {
			defer wg.Done()
			status := ComponentStatus{Status: "ok"}
			if err := checker.HealthCheck(ctx); err != nil {
				status = ComponentStatus{Status: "error", Error: err.Error()}
				h.log.LogErrorf("health check failed for %s: %v", name, err)
			}
			mu.Lock()
			if status.Status != "ok" {
				allOk = false
			}
			statuses[name] = status
			mu.Unlock()
		}(name, checker)
	}
	wg.Wait()

	response := OverallHealth{
		Timestamp:     time.Now().UTC().Format(time.RFC3339Nano),
		Ready:         h.isReady.Load(),
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Components:    statuses,
	}

	if allOk && h.isReady.Load() {
		response.OverallStatus = "ok"
		return c.Status(http.StatusOK).JSON(response)
	}
	if !h.isReady.Load() {
		response.OverallStatus = "starting"
		return c.Status(http.StatusServiceUnavailable).JSON(response)
	}
	response.OverallStatus = "error"
	return c.Status(http.StatusServiceUnavailable).JSON(response)
}

func Limiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{"error": "Rate limit exceeded"})
		},
	})
}
