package http

import (
	"net/http"
	"time"

	"kanban/internal/http/handlers"
	"kanban/internal/http/middleware"
	"kanban/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouteOptions carries the knobs RegisterRoutes needs from config.
type RouteOptions struct {
	RateLimiter    *middleware.RateLimiter
	AuthRateLimit  int
	AuthRateWindow time.Duration
	AllowedOrigin  string
}

func RegisterRoutes(r *gin.Engine, h *handlers.Handler, health *handlers.HealthHandler, hub *ws.Hub, opts RouteOptions) {
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Kanban Backend is running.")
	})

	r.GET("/health", health.Health)
	r.GET("/healthz", health.Liveness)
	r.GET("/readyz", health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.Use(opts.RateLimiter.Limit(opts.AuthRateLimit, opts.AuthRateWindow))
	{
		auth.POST("/signup", h.Signup)
		auth.POST("/login", h.Login)
		auth.POST("/google", h.Google)
	}

	authed := api.Group("")
	authed.Use(middleware.JWT(h.Tokens))
	{
		authed.GET("/me", h.Me)

		authed.GET("/tasks", h.ListTasks)
		authed.POST("/tasks", h.CreateTask)
		authed.PUT("/tasks/:id", h.UpdateTask)
		authed.DELETE("/tasks/:id", h.DeleteTask)
		authed.POST("/tasks/:id/share", h.ShareTask)
	}

	r.GET("/ws", h.WS(hub, opts.AllowedOrigin))
}

// NewRouter builds the engine with the standard middleware chain.
func NewRouter(h *handlers.Handler, health *handlers.HealthHandler, hub *ws.Hub, opts RouteOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(opts.AllowedOrigin))

	RegisterRoutes(r, h, health, hub, opts)
	return r
}
