package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"kanban/internal/config"
	"kanban/internal/db"
	"kanban/internal/domain"
	"kanban/internal/logger"
	"kanban/internal/repository"
	"kanban/internal/service"
)

// Creates (or reuses) a password user in the configured store and prints a
// bearer token for it.
func main() {
	username := flag.String("username", "testuser", "username")
	password := flag.String("password", "testpass", "password for a new user")
	flag.Parse()

	cfg := config.Load()
	logger.InitWriter(os.Stderr, cfg.LogLevel, false)
	ctx := context.Background()

	var users service.UserStore
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool := db.Connect(cfg.DatabaseURL)
		defer pool.Close()
		users = repository.NewUserRepository(pool)
	case config.DriverMongo:
		client, database := db.ConnectMongo(cfg.MongoURI, cfg.MongoDatabase)
		defer client.Disconnect(ctx)
		users = repository.NewMongoUserRepository(database)
	default:
		logger.Fatal("create_test_user needs a persistent store", "driver", cfg.StoreDriver)
	}

	tokens := service.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	auth := service.NewAuthService(users, tokens, service.NewGoogleVerifier(cfg.GoogleClientID))

	u, err := users.GetByUsername(ctx, *username)
	switch {
	case err == nil:
		logger.Info("user already exists", "id", u.ID, "username", u.Username)
	case errors.Is(err, domain.ErrUserNotFound):
		u, err = auth.Signup(ctx, *username, *password)
		if err != nil {
			logger.Fatal("create user failed", "error", err)
		}
		logger.Info("user created", "id", u.ID, "username", u.Username)
	default:
		logger.Fatal("lookup failed", "error", err)
	}

	token, err := tokens.Issue(u.ID, u.Username)
	if err != nil {
		logger.Fatal("failed to generate token", "error", err)
	}
	fmt.Fprintln(os.Stdout, token)
}
