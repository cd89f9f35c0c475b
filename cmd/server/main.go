package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lqviet/boardflow/internal/config"
	"github.com/lqviet/boardflow/internal/database"
	"github.com/lqviet/boardflow/internal/httpapi"
	"github.com/lqviet/boardflow/internal/logger"
	"github.com/lqviet/boardflow/internal/ratelimit"
)

func main() {
	_ = godotenv.Load()

	logger.Init()
	defer logger.Log.Sync()

	cfg, err := config.Load(".")
	if err != nil {
		logger.Log.Fatalw("load config", "err", err)
	}
	if cfg.Database.URL == "" {
		logger.Log.Fatal("database.url is required (BOARDFLOW_DATABASE_URL)")
	}

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database.URL)
	if err != nil {
		logger.Log.Fatalw("database connect", "err", err)
	}
	defer pool.Close()
	logger.Log.Info("connected to database")

	if err := database.Migrate(ctx, pool, cfg.Database.MigrationsDir); err != nil {
		logger.Log.Fatalw("database migrate", "err", err)
	}
	logger.Log.Info("migrations up to date")

	tokenSecret := []byte(cfg.Auth.TokenSecret)
	if len(tokenSecret) == 0 {
		logger.Log.Warn("auth.token_secret not set, using dev default")
		tokenSecret = []byte("dev-secret-change-in-production")
	}

	var limiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.NewInMemory(cfg.RateLimit.Limit, cfg.RateLimit.Window)
	}

	router := httpapi.NewRouter(pool, tokenSecret, limiter)

	srv := &http.Server{
		Addr:         cfg.Server.HTTPAddress,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Log.Infow("boardflow server listening", "addr", cfg.Server.HTTPAddress)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalw("http server error", "err", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("graceful shutdown failed", "err", err)
	}
}
