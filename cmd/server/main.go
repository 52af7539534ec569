/**
 * @description
 * This is the main entry point for the API server. It initializes
 * configuration, the database connection, Redis, the RabbitMQ producer, the
 * repositories and services, and starts the HTTP server with graceful
 * shutdown.
 */
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/TempBiGmIkE/Creypinvest-master/internal/api"
	"github.com/TempBiGmIkE/Creypinvest-master/internal/app"
	"github.com/TempBiGmIkE/Creypinvest-master/internal/config"
	"github.com/TempBiGmIkE/Creypinvest-master/internal/store"
	"github.com/TempBiGmIkE/Creypinvest-master/pkg/rabbitmq"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Load a local .env when present; environment variables take precedence.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		logger.Error("JWT_SECRET must be configured")
		os.Exit(1)
	}

	ctx := context.Background()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Error("unable to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = 100
	poolConfig.MinConns = 20
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	// Disable prepared statement caching to prevent conflicts
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	logger.Info("database connection established")

	if err := store.Migrate(ctx, dbpool); err != nil {
		logger.Error("schema migration failed", "error", err)
		os.Exit(1)
	}

	// RabbitMQ is optional at startup; events degrade to the no-op fallback.
	var producer rabbitmq.Publisher
	eventProducer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL)
	if err != nil {
		logger.Warn("rabbitmq producer unavailable, using fallback", "error", err)
		producer = &rabbitmq.EventProducerFallback{}
	} else {
		defer eventProducer.Close()
		producer = eventProducer
		logger.Info("rabbitmq producer connected")
	}

	// Redis backs the per-user rate limits; missing Redis disables them.
	var limiter app.RateLimiter
	if strings.TrimSpace(cfg.RedisURL) != "" {
		redisOptions, parseErr := redis.ParseURL(cfg.RedisURL)
		if parseErr != nil {
			logger.Warn("redis url parse failed, rate limiting disabled", "error", parseErr)
		} else {
			redisClient := redis.NewClient(redisOptions)
			pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
			if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
				logger.Warn("redis ping failed, rate limiting disabled", "error", pingErr)
			} else {
				limiter = app.NewRedisRateLimiter(redisClient, cfg.RedisRateLimitPrefix)
				logger.Info("redis rate limiter connected")
			}
			cancelPing()
		}
	} else {
		logger.Warn("redis url missing, rate limiting disabled")
	}

	planRepo := store.NewPlanRepository(dbpool)
	subRepo := store.NewSubscriptionRepository(dbpool)
	accountRepo := store.NewAccountRepository(dbpool)

	planService := app.NewPlanService(planRepo, subRepo, logger)
	investmentService := app.NewInvestmentService(subRepo, planRepo, producer, cfg.EventExchange, logger)
	accountService := app.NewAccountService(accountRepo, producer, cfg.EventExchange, app.AccountServiceConfig{
		JWTSecret:         cfg.JWTSecret,
		JWTExpiry:         time.Duration(cfg.JWTExpiryHours) * time.Hour,
		BcryptCost:        cfg.BcryptCost,
		ReferralThreshold: cfg.ReferralDepositThreshold,
		WelcomeBonus:      cfg.ReferralWelcomeBonus,
	}, logger)

	handler := api.NewHandler(planService, investmentService, accountService, logger)
	router := api.NewRouter(handler, accountService, limiter, cfg, logger)

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		logger.Info("server starting", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	logger.Info("server stopped gracefully")
}
