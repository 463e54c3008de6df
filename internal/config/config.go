package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"kanban/internal/logger"

	"github.com/joho/godotenv"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	AppPort    string
	AppVersion string

	StoreDriver   string
	MongoURI      string
	MongoDatabase string
	DatabaseURL   string

	JWTSecret      string
	JWTTTL         time.Duration
	GoogleClientID string

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	AuthRateLimit  int
	AuthRateWindow time.Duration

	// EnforceTaskOwnership makes update, delete and share require the caller
	// to be one of the task owners.
	EnforceTaskOwnership bool

	AllowedOrigin string
	LogLevel      string
	LogJSON       bool
}

// Load reads .env (if present) and the environment. Missing required values
// terminate the process.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := FromEnv()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}

// FromEnv builds a Config from the current environment without touching .env.
func FromEnv() (*Config, error) {
	cfg := &Config{
		AppPort:              getEnv("APP_PORT", "5000"),
		AppVersion:           getEnv("APP_VERSION", "dev"),
		StoreDriver:          strings.ToLower(getEnv("STORE_DRIVER", DriverMongo)),
		MongoURI:             getEnv("MONGO_URI", "mongodb://localhost:27017/kanban"),
		MongoDatabase:        getEnv("MONGO_DATABASE", "kanban"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		JWTTTL:               time.Hour,
		GoogleClientID:       os.Getenv("GOOGLE_CLIENT_ID"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		AuthRateLimit:        20,
		AuthRateWindow:       time.Minute,
		EnforceTaskOwnership: true,
		AllowedOrigin:        os.Getenv("ALLOWED_ORIGIN"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogJSON:              os.Getenv("LOG_JSON") == "true",
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}

	switch cfg.StoreDriver {
	case DriverMongo, DriverMemory:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is not set")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	if v := os.Getenv("JWT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid JWT_TTL %q", v)
		}
		cfg.JWTTTL = d
	}

	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.RedisDB = n
		}
	}

	if v := os.Getenv("AUTH_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.AuthRateLimit = n
		}
	}

	if v := os.Getenv("AUTH_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.AuthRateWindow = time.Duration(n) * time.Second
		}
	}

	if v := os.Getenv("ENFORCE_TASK_OWNERSHIP"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid ENFORCE_TASK_OWNERSHIP %q", v)
		}
		cfg.EnforceTaskOwnership = b
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
