package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/stairstreak/leaderboard-system/internal/core/ports"
)

const probeTimeout = 2 * time.Second

// HealthHandler reports liveness and readiness. Any backend may be nil: the
// in-memory store needs no Mongo, and the cooldown gate may run without
// Redis.
type HealthHandler struct {
	mongo *mongo.Client
	redis *redis.Client
	vault ports.DeviceVault
}

func NewHealthHandler(mongoClient *mongo.Client, redisClient *redis.Client, vault ports.DeviceVault) *HealthHandler {
	return &HealthHandler{mongo: mongoClient, redis: redisClient, vault: vault}
}

// Live godoc
// @Summary      Liveness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  MessageResponse
// @Router       /health [get]
func (h *HealthHandler) Live(c echo.Context) error {
	return c.JSON(http.StatusOK, MessageResponse{Message: "ok"})
}

// Ready godoc
// @Summary      Readiness probe
// @Description  Pings every configured backend; reports 503 when any is unreachable.
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /health/ready [get]
func (h *HealthHandler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), probeTimeout)
	defer cancel()

	status := http.StatusOK
	checks := map[string]string{}

	if h.mongo != nil {
		if err := h.mongo.Ping(ctx, nil); err != nil {
			checks["mongo"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			checks["mongo"] = "ok"
		}
	}
	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			checks["redis"] = "ok"
		}
	}
	if h.vault != nil {
		if _, err := h.vault.MostRecent(); err != nil {
			checks["vault"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			checks["vault"] = "ok"
		}
	}

	return c.JSON(status, checks)
}
