// @title        Stairstreak Leaderboard API
// @version      1.0
// @description  Tap-in/tap-out stair session tracking with a live leaderboard.
// @BasePath     /
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/stairstreak/leaderboard-system/docs"
	"github.com/stairstreak/leaderboard-system/internal/api"
	"github.com/stairstreak/leaderboard-system/internal/core/ports"
	"github.com/stairstreak/leaderboard-system/internal/core/service"
	"github.com/stairstreak/leaderboard-system/internal/infrastructure/config"
	"github.com/stairstreak/leaderboard-system/internal/infrastructure/db/memstore"
	mongodb "github.com/stairstreak/leaderboard-system/internal/infrastructure/db/mongo"
	redisdb "github.com/stairstreak/leaderboard-system/internal/infrastructure/db/redis"
	"github.com/stairstreak/leaderboard-system/internal/infrastructure/devicestore"
	"github.com/stairstreak/leaderboard-system/internal/infrastructure/ratelimit"
	"github.com/stairstreak/leaderboard-system/internal/infrastructure/repository"
	"github.com/stairstreak/leaderboard-system/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := api.Dependencies{JWTSecret: cfg.JWTSecret}

	// The shared store falls back to process memory when Mongo is
	// unreachable so a single station keeps working offline.
	var store ports.Store
	mongoClient, mongoDB, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Warn().Err(err).Msg("mongo unavailable, using in-memory store")
		store = memstore.New()
	} else {
		deps.MongoClient = mongoClient
		store = mongodb.NewStore(mongoDB, log)
		defer func() {
			_ = mongoClient.Disconnect(context.Background())
		}()
	}

	var gate ports.CooldownGate
	if cfg.Redis.Addr != "" {
		redisClient, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		deps.RedisClient = redisClient
		gate = ratelimit.NewRedisGate(redisClient, cfg.RegistrationCooldown)
		defer redisClient.Close()
	} else {
		gate = ratelimit.NewMemoryGate(cfg.RegistrationCooldown)
	}

	vault, err := devicestore.Open(cfg.VaultPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open device vault")
	}
	deps.Vault = vault

	identities := repository.NewIdentityRepository(store)
	events := repository.NewTapEventRepository(store)
	sessions := repository.NewActiveSessionRepository(store)

	resolver := service.NewResolver(identities, vault, gate, cfg.DeviceID, cfg.JWTSecret, cfg.TokenTTL, log)
	if err := resolver.Init(ctx); err != nil {
		log.Warn().Err(err).Msg("identity cache warm-up failed, continuing cold")
	}
	defer resolver.Close()

	tracker := service.NewTracker(sessions, events, log)
	if err := tracker.Reconcile(ctx); err != nil {
		log.Warn().Err(err).Msg("session reconciliation failed")
	}

	view := service.NewView(events, sessions, identities, log)
	if err := view.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start leaderboard view")
	}

	deps.Auth = resolver
	deps.Tracker = tracker
	deps.View = view
	deps.Admin = service.NewAdmin(store, view, log)

	e := api.NewRouter(deps)

	go func() {
		log.Info().Str("port", cfg.Port).Str("device", cfg.DeviceID).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return
	}
	log.Info().Msg("server stopped")
}
