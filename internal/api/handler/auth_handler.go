package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stairstreak/leaderboard-system/internal/api/metrics"
	"github.com/stairstreak/leaderboard-system/internal/core/ports"
)

// AuthHandler exposes registration and login.
type AuthHandler struct {
	auth ports.AuthService
}

func NewAuthHandler(auth ports.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register godoc
// @Summary      Register a new identity
// @Description  Creates an identity with a display name and PIN, optionally binding it to this device for fast-path taps.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      RegisterRequest  true  "registration payload"
// @Success      201      {object}  AuthResponse
// @Failure      400      {object}  object{error=string}
// @Failure      409      {object}  object{error=string}
// @Failure      429      {object}  object{error=string}
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	identity, err := h.auth.Register(c.Request().Context(), req.Name, req.PIN, boolOrTrue(req.BindFastPath))
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return err
	}
	metrics.RegistrationsTotal.WithLabelValues("ok").Inc()

	token, err := h.auth.Token(identity)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, AuthResponse{Token: token, Identity: identity})
}

// Login godoc
// @Summary      Resolve an identity
// @Description  Resolves an identity either through the device fast path (no credentials) or through name and PIN.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      LoginRequest  true  "login payload"
// @Success      200      {object}  AuthResponse
// @Failure      401      {object}  object{error=string}
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	method := "credentials"
	if req.Name == "" && req.PIN == "" {
		method = "fast_path"
	}

	identity, err := h.auth.Resolve(c.Request().Context(), req.Name, req.PIN, boolOrTrue(req.AllowFastPath))
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues(method, authResult(err)).Inc()
		return err
	}
	metrics.AuthAttemptsTotal.WithLabelValues(method, "ok").Inc()

	token, err := h.auth.Token(identity)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, AuthResponse{Token: token, Identity: identity})
}
