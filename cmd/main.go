package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Whateverdoa/vertical-slice-service/internals/auth"
	"github.com/Whateverdoa/vertical-slice-service/internals/events"
	"github.com/Whateverdoa/vertical-slice-service/internals/health"
	"github.com/Whateverdoa/vertical-slice-service/internals/storage/pgsql"
	"github.com/Whateverdoa/vertical-slice-service/internals/storage/redisstore"
	"github.com/Whateverdoa/vertical-slice-service/internals/users"
	"github.com/Whateverdoa/vertical-slice-service/pkg/config"
	"github.com/Whateverdoa/vertical-slice-service/pkg/middleware"
)

var serviceLogger *slog.Logger

func setupLogger() {
	level := slog.LevelInfo
	switch os.Getenv("LOG_LEVEL") {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARNING", "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}
	logJsonHandler := slog.NewJSONHandler(os.Stdout, opts)
	serviceLogger = slog.New(logJsonHandler)
	slog.SetDefault(serviceLogger)
}

func init() {
	setupLogger()
	slog.Debug("Logger initialized")

	config.SetupConfigs()
	slog.Debug("Config initialized")
}

func main() {
	slog.Debug("Starting server")

	ctx := context.Background()

	db := pgsql.CreatePGConnection(ctx)
	slog.Debug("DB pool created successfully")
	defer db.Close()

	rdb := redisstore.CreateRedisClient(ctx)
	slog.Debug("Redis client created successfully")
	defer rdb.Close()

	userStorage := &pgsql.PGUserStorage{DB: db}
	userCache := &redisstore.RedisUserCache{
		Client: rdb,
		TTL:    time.Duration(config.Cache.TTLSeconds) * time.Second,
	}
	sessionStore := &redisstore.RedisSessionStore{Client: rdb}

	bus := events.NewBus()

	userService := users.New(userStorage, userCache, bus)
	authService := auth.New(userStorage, sessionStore)
	healthService := health.New(map[string]health.Probe{
		"postgres": db.PingContext,
		"redis": func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		},
	})

	// Cross-slice wiring happens only here, through the bus
	bus.Subscribe(events.UserDeactivated, authService.HandleUserDeactivated)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(config.Service.AllowedOrigins))

	api := r.Group("/api/v1")

	userService.RegisterRoutes(api)
	authService.RegisterRoutes(api)
	healthService.RegisterRoutes(r)

	port := config.Service.Port
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = "8080"
	}

	slog.Info("Server started", "port", port)
	if err := r.Run(":" + port); err != nil {
		slog.Error("Failed to start server", "err", err)
		os.Exit(1)
	}
}
