package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stairstreak/leaderboard-system/internal/core/ports"
)

// LeaderboardHandler serves the derived ranked view and the live
// server-sent-events stream display clients consume.
type LeaderboardHandler struct {
	view    ports.LeaderboardService
	tracker ports.TrackerService
}

func NewLeaderboardHandler(view ports.LeaderboardService, tracker ports.TrackerService) *LeaderboardHandler {
	return &LeaderboardHandler{view: view, tracker: tracker}
}

// Board godoc
// @Summary      Current leaderboard
// @Description  Returns the ranked leaderboard together with currently active sessions.
// @Tags         leaderboard
// @Produce      json
// @Success      200  {object}  ports.ViewSnapshot
// @Router       /v1/leaderboard [get]
func (h *LeaderboardHandler) Board(c echo.Context) error {
	return c.JSON(http.StatusOK, h.view.Snapshot())
}

// Active godoc
// @Summary      Active sessions
// @Description  Returns every currently running session with its live elapsed time.
// @Tags         leaderboard
// @Produce      json
// @Success      200  {array}  domain.ActiveSessionView
// @Router       /v1/sessions/active [get]
func (h *LeaderboardHandler) Active(c echo.Context) error {
	sessions, err := h.tracker.ActiveNow(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessions)
}

// Stream godoc
// @Summary      Live leaderboard stream
// @Description  Server-sent events stream; emits a full snapshot on connect and after every change.
// @Tags         leaderboard
// @Produce      text/event-stream
// @Success      200
// @Router       /v1/leaderboard/stream [get]
func (h *LeaderboardHandler) Stream(c echo.Context) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)

	updates := make(chan ports.ViewSnapshot, 8)
	unsubscribe := h.view.SubscribeRender(func(snapshot ports.ViewSnapshot) {
		select {
		case updates <- snapshot:
		default: // slow client, drop; the next snapshot is always complete
		}
	})
	defer unsubscribe()

	if err := writeEvent(res, h.view.Snapshot()); err != nil {
		return nil
	}

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case snapshot := <-updates:
			if err := writeEvent(res, snapshot); err != nil {
				return nil
			}
		}
	}
}

func writeEvent(res *echo.Response, snapshot ports.ViewSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(res, "data: %s\n\n", data); err != nil {
		return err
	}
	res.Flush()
	return nil
}
