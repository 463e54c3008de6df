package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kanban/internal/config"
	"kanban/internal/db"
	httpServer "kanban/internal/http"
	"kanban/internal/http/handlers"
	"kanban/internal/http/middleware"
	"kanban/internal/logger"
	"kanban/internal/repository"
	"kanban/internal/service"
	"kanban/internal/ws"
)

type userStore interface {
	service.UserStore
	Ping(ctx context.Context) error
}

type stores struct {
	users userStore
	tasks service.TaskStore
	close func()
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	st := openStores(cfg)
	defer st.close()

	tokens := service.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	auth := service.NewAuthService(st.users, tokens, service.NewGoogleVerifier(cfg.GoogleClientID))

	hub := ws.NewHub()
	tasks := service.NewTaskService(st.tasks, st.users, cfg.EnforceTaskOwnership)
	tasks.SetNotifier(hub)
	if !cfg.EnforceTaskOwnership {
		logger.Warn("task ownership is not enforced: any authenticated user may update, delete or share any task")
	}
	if cfg.GoogleClientID == "" {
		logger.Warn("GOOGLE_CLIENT_ID is not set, google login is disabled")
	}

	redisClient := middleware.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if redisClient != nil {
		defer redisClient.Close()
	}

	health := handlers.NewHealthHandler(st.users, cfg.StoreDriver, cfg.AppVersion)
	if redisClient != nil {
		health.AddCheck("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	r := httpServer.NewRouter(
		handlers.NewHandler(auth, tasks, tokens, st.users),
		health,
		hub,
		httpServer.RouteOptions{
			RateLimiter:    middleware.NewRateLimiter(redisClient, "rl:auth"),
			AuthRateLimit:  cfg.AuthRateLimit,
			AuthRateWindow: cfg.AuthRateWindow,
			AllowedOrigin:  cfg.AllowedOrigin,
		},
	)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "store", cfg.StoreDriver, "version", cfg.AppVersion)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// hijacked websocket connections are not tracked by Shutdown
	hub.Close()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}

func openStores(cfg *config.Config) stores {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool := db.Connect(cfg.DatabaseURL)
		return stores{
			users: repository.NewUserRepository(pool),
			tasks: repository.NewTaskRepository(pool),
			close: pool.Close,
		}

	case config.DriverMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		return stores{
			users: repository.NewMemoryUserRepository(),
			tasks: repository.NewMemoryTaskRepository(),
			close: func() {},
		}
	}

	client, database := db.ConnectMongo(cfg.MongoURI, cfg.MongoDatabase)
	users := repository.NewMongoUserRepository(database)
	tasks := repository.NewMongoTaskRepository(database)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := users.EnsureIndexes(ctx); err != nil {
		logger.Fatal("failed to create user indexes", "error", err)
	}
	if err := tasks.EnsureIndexes(ctx); err != nil {
		logger.Fatal("failed to create task indexes", "error", err)
	}

	return stores{
		users: users,
		tasks: tasks,
		close: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				logger.Error("mongo disconnect failed", "error", err)
			}
		},
	}
}
