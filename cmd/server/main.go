package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"fypms/internal/config"
	"fypms/internal/crypto"
	"fypms/internal/db"
	"fypms/internal/httpapi"
	"fypms/internal/model"
	"fypms/internal/repository"
)

const (
	defaultAdminEmail    = "admin@fyp.com"
	defaultAdminPassword = "admin123"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		logger.Fatal("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db connection failed", zap.Error(err))
	}
	defer pool.Close()

	store := repository.NewStore(pool)
	initializeAdmin(ctx, store, logger)

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			logger.Fatal("redis ping failed", zap.Error(err))
		}
		cancel()
		defer redisClient.Close()
	}

	server := httpapi.NewServer(cfg, store, redisClient, logger)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("fypms listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}

// initializeAdmin seeds the default admin account once. A failure here is
// recoverable through the normal admin flow, so it never aborts startup.
func initializeAdmin(ctx context.Context, store *repository.Store, logger *zap.Logger) {
	hash, err := crypto.HashPassword(defaultAdminPassword)
	if err != nil {
		logger.Error("admin bootstrap failed", zap.Error(err))
		return
	}

	now := time.Now().UTC()
	err = store.CreateAdminIfAbsent(ctx, model.Admin{
		ID:           uuid.NewString(),
		Email:        defaultAdminEmail,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		logger.Error("admin bootstrap failed", zap.Error(err))
		return
	}
	logger.Info("default admin ensured", zap.String("email", defaultAdminEmail))
}
