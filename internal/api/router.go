// Package api wires the HTTP surface: routing, request validation, metrics,
// and the translation of domain errors into HTTP responses.
package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/stairstreak/leaderboard-system/internal/api/handler"
	"github.com/stairstreak/leaderboard-system/internal/api/metrics"
	"github.com/stairstreak/leaderboard-system/internal/api/middleware"
	"github.com/stairstreak/leaderboard-system/internal/core/ports"
)

// Dependencies carries everything the router needs; backends may be nil
// when the corresponding infrastructure is not configured.
type Dependencies struct {
	Auth    ports.AuthService
	Tracker ports.TrackerService
	View    ports.LeaderboardService
	Admin   ports.AdminService

	MongoClient *mongo.Client
	RedisClient *redis.Client
	Vault       ports.DeviceVault

	JWTSecret string
}

// NewRouter assembles the echo engine with all routes and middleware.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = HTTPErrorHandler

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("stairstreak"))

	// Keep the board gauges fresh on every recompute.
	deps.View.SubscribeRender(func(snapshot ports.ViewSnapshot) {
		metrics.LeaderboardRecomputesTotal.Inc()
		metrics.ActiveSessions.Set(float64(len(snapshot.ActiveNow)))
		metrics.LeaderboardEntries.Set(float64(len(snapshot.Entries)))
	})

	authHandler := handler.NewAuthHandler(deps.Auth)
	tapHandler := handler.NewTapHandler(deps.Auth, deps.Tracker)
	boardHandler := handler.NewLeaderboardHandler(deps.View, deps.Tracker)
	adminHandler := handler.NewAdminHandler(deps.Admin)
	healthHandler := handler.NewHealthHandler(deps.MongoClient, deps.RedisClient, deps.Vault)

	e.GET("/health", healthHandler.Live)
	e.GET("/health/ready", healthHandler.Ready)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	v1 := e.Group("/v1")
	v1.POST("/taps", tapHandler.Tap)
	v1.GET("/leaderboard", boardHandler.Board)
	v1.GET("/leaderboard/stream", boardHandler.Stream)
	v1.GET("/sessions/active", boardHandler.Active)

	admin := e.Group("/admin", middleware.Auth(deps.JWTSecret))
	admin.POST("/clear", adminHandler.Clear)

	return e
}
