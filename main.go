package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MixtapeHQ/mixtape-backend/config"
	"github.com/MixtapeHQ/mixtape-backend/db"
	"github.com/MixtapeHQ/mixtape-backend/handlers"
	"github.com/MixtapeHQ/mixtape-backend/internal/store/postgres"
	"github.com/MixtapeHQ/mixtape-backend/logger"
	"github.com/MixtapeHQ/mixtape-backend/router"
	"github.com/MixtapeHQ/mixtape-backend/services"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	logger.InitLogger()
	defer logger.Close()
	log := logger.GetLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalw("Failed to load configuration", "error", err)
	}

	if err := db.RunMigrations(cfg.Database.URL()); err != nil {
		log.Fatalw("Failed to run migrations", "error", err)
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.ConnString())
	if err != nil {
		log.Fatalw("Failed to parse database config", "error", err)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatalw("Failed to connect to database", "error", err)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatalw("Failed to ping database", "error", err)
	}
	log.Info("Connected to database")

	redisOpts := &redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	if cfg.Redis.UseTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		// Rate limiting fails open, so Redis being down degrades rather
		// than blocks startup.
		log.Warnw("Redis unavailable at startup", "error", err)
	}

	pushTokenStore := postgres.NewPushTokenStore(pool)
	messageStore := postgres.NewMessageStore(pool)
	playlistStore := postgres.NewPlaylistStore(pool)
	userStore := postgres.NewUserStore(pool)

	pushService := services.NewExpoPushService(pushTokenStore, cfg.Push)

	workerPool := services.NewWorkerPool(cfg.WorkerPool)
	workerPool.Start()

	notificationService := services.NewNotificationService(pushService, workerPool)
	accessService := services.NewPlaylistAccessService(playlistStore, messageStore)

	engine := router.SetupRouter(router.Dependencies{
		Config:              cfg,
		RedisClient:         redisClient,
		PushTokenHandler:    handlers.NewPushTokenHandler(pushTokenStore),
		NotificationHandler: handlers.NewNotificationHandler(pushService),
		PlaylistHandler:     handlers.NewPlaylistHandler(accessService),
		MessageHandler: handlers.NewMessageHandler(
			messageStore, userStore, playlistStore, accessService, notificationService),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("Starting server", "port", cfg.Server.Port, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("Server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Server forced to shutdown", "error", err)
	}

	// Drain in-flight notification jobs before the process exits.
	poolCtx, poolCancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.WorkerPool.ShutdownTimeoutSeconds)*time.Second)
	defer poolCancel()
	if err := workerPool.Shutdown(poolCtx); err != nil {
		log.Warnw("Worker pool shutdown incomplete", "error", err)
	}

	log.Info("Server exited")
}
