package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stairstreak/leaderboard-system/internal/core/domain"
	"github.com/stairstreak/leaderboard-system/pkg/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

// HTTPErrorHandler translates domain errors into HTTP responses so handlers
// can return service errors unwrapped.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "internal server error"

	var httpErr *echo.HTTPError
	var partial *domain.PartialClearError

	switch {
	case errors.As(err, &httpErr):
		status = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}
	case errors.Is(err, domain.ErrNeedsCredentials),
		errors.Is(err, domain.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, domain.ErrRateLimited):
		status = http.StatusTooManyRequests
		message = err.Error()
	case errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrWeakSecret):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, domain.ErrNameTaken):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, domain.ErrIdentityNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, domain.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
		message = err.Error()
	case errors.As(err, &partial):
		status = http.StatusInternalServerError
		message = partial.Error()
	}

	log := logger.Get()

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).
			Str("path", c.Request().URL.Path).
			Msg("request failed")
	}

	if err := c.JSON(status, errorResponse{Error: message}); err != nil {
		log.Error().Err(err).Msg("failed to write error response")
	}
}
