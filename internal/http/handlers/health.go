package handlers

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	readinessTimeout = 5 * time.Second
	healthTimeout    = 3 * time.Second
)

// Pinger is implemented by every store backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckFunc reports whether an optional dependency is reachable.
type CheckFunc func(ctx context.Context) error

// HealthHandler serves /health, /healthz and /readyz. Only the store decides
// readiness; extra checks are reported but never fail the probe.
type HealthHandler struct {
	store   Pinger
	driver  string
	version string
	started time.Time

	mu     sync.RWMutex
	extras map[string]CheckFunc
}

func NewHealthHandler(store Pinger, driver, version string) *HealthHandler {
	return &HealthHandler{
		store:   store,
		driver:  driver,
		version: version,
		started: time.Now(),
		extras:  make(map[string]CheckFunc),
	}
}

// AddCheck registers an informational check, e.g. the rate limiter's redis.
func (h *HealthHandler) AddCheck(name string, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.extras[name] = fn
}

type readinessResponse struct {
	Status    string            `json:"status"`
	Store     string            `json:"store"`
	Version   string            `json:"version,omitempty"`
	Uptime    string            `json:"uptime"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness pings the store and every extra check.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	res := readinessResponse{
		Status:    "healthy",
		Store:     h.driver,
		Version:   h.version,
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    map[string]string{"store": checkResult(h.store.Ping(ctx))},
	}

	for _, name := range h.extraNames() {
		h.mu.RLock()
		fn := h.extras[name]
		h.mu.RUnlock()
		res.Checks[name] = checkResult(fn(ctx))
	}

	code := http.StatusOK
	if res.Checks["store"] != "healthy" {
		res.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, res)
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "store unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.version})
}

func (h *HealthHandler) extraNames() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.extras))
	for name := range h.extras {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func checkResult(err error) string {
	if err != nil {
		return "unhealthy: " + err.Error()
	}
	return "healthy"
}
