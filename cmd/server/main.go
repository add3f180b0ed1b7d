package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/securebdd/accounts-api/internal/api"
	"github.com/securebdd/accounts-api/internal/core/ports"
	"github.com/securebdd/accounts-api/internal/infrastructure/config"
	mongodb "github.com/securebdd/accounts-api/internal/infrastructure/db/mongo"
	redisdb "github.com/securebdd/accounts-api/internal/infrastructure/db/redis"
	"github.com/securebdd/accounts-api/internal/infrastructure/memory"
	"github.com/securebdd/accounts-api/pkg/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger is not up yet.
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	userRepo := mongodb.NewUserRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	// The failure tracker prefers Redis so lockouts are shared across
	// replicas; without Redis it degrades to the in-process tracker.
	var tracker ports.FailureTracker
	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, using in-process failure tracker")
		tracker = memory.NewFailureTracker(cfg.Lockout.MaxAttempts, cfg.Lockout.BlockDuration)
	} else {
		defer func() { _ = rdb.Close() }()
		tracker = redisdb.NewFailureTracker(rdb, cfg.Lockout.MaxAttempts, cfg.Lockout.BlockDuration)
	}

	e := api.NewRouter(db, rdb, tracker, cfg, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting accounts api")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
