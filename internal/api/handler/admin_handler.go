package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stairstreak/leaderboard-system/internal/api/metrics"
	"github.com/stairstreak/leaderboard-system/internal/core/ports"
	"github.com/stairstreak/leaderboard-system/pkg/logger"
)

// AdminHandler exposes maintenance endpoints; all routes behind it require
// a valid bearer token.
type AdminHandler struct {
	admin ports.AdminService
}

func NewAdminHandler(admin ports.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// Clear godoc
// @Summary      Clear all data
// @Description  Purges identities, tap events, and active sessions. Partial failure reports which collections cleared.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  MessageResponse
// @Failure      401  {object}  object{error=string}
// @Failure      500  {object}  object{error=string}
// @Router       /admin/clear [post]
func (h *AdminHandler) Clear(c echo.Context) error {
	actor, _ := c.Get("identity_name").(string)
	log := logger.Get()
	log.Warn().Str("actor", actor).Msg("administrative clear requested")

	if err := h.admin.ClearAll(c.Request().Context()); err != nil {
		metrics.AdminClearsTotal.WithLabelValues("partial_failure").Inc()
		return err
	}
	metrics.AdminClearsTotal.WithLabelValues("ok").Inc()

	return c.JSON(http.StatusOK, MessageResponse{Message: "all data cleared"})
}
