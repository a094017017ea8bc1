package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stairstreak/leaderboard-system/internal/api/metrics"
	"github.com/stairstreak/leaderboard-system/internal/core/domain"
	"github.com/stairstreak/leaderboard-system/internal/core/ports"
)

// TapHandler processes station taps: resolve the identity, then apply the
// start or stop transition.
type TapHandler struct {
	auth    ports.AuthService
	tracker ports.TrackerService
}

func NewTapHandler(auth ports.AuthService, tracker ports.TrackerService) *TapHandler {
	return &TapHandler{auth: auth, tracker: tracker}
}

// Tap godoc
// @Summary      Record a tap
// @Description  Resolves the identity (fast path or credentials) and applies the start/stop transition for the given station.
// @Tags         taps
// @Accept       json
// @Produce      json
// @Param        request  body      TapRequest  true  "tap payload"
// @Success      200      {object}  ports.TapResult
// @Failure      401      {object}  object{error=string}
// @Failure      422      {object}  object{error=string}
// @Router       /v1/taps [post]
func (h *TapHandler) Tap(c echo.Context) error {
	var req TapRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	method := "credentials"
	if req.Name == "" && req.PIN == "" {
		method = "fast_path"
	}

	identity, err := h.auth.Resolve(ctx, req.Name, req.PIN, boolOrTrue(req.AllowFastPath))
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues(method, authResult(err)).Inc()
		return err
	}
	metrics.AuthAttemptsTotal.WithLabelValues(method, "ok").Inc()

	var result *ports.TapResult
	switch domain.Station(req.Station) {
	case domain.StationStart:
		result, err = h.tracker.Start(ctx, identity)
	case domain.StationStop:
		result, err = h.tracker.Stop(ctx, identity)
	}
	if err != nil {
		return err
	}

	metrics.TapsProcessedTotal.WithLabelValues(req.Station, string(result.Action)).Inc()

	return c.JSON(http.StatusOK, result)
}

func authResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrNeedsCredentials):
		return "needs_credentials"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid"
	default:
		return "error"
	}
}
