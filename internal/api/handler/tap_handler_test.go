package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/stairstreak/leaderboard-system/internal/core/domain"
	"github.com/stairstreak/leaderboard-system/internal/core/ports"
)

type stubAuthService struct {
	identity   *domain.Identity
	resolveErr error
}

func (s *stubAuthService) Resolve(context.Context, string, string, bool) (*domain.Identity, error) {
	if s.resolveErr != nil {
		return nil, s.resolveErr
	}
	return s.identity, nil
}

func (s *stubAuthService) Register(context.Context, string, string, bool) (*domain.Identity, error) {
	return s.identity, nil
}

func (s *stubAuthService) Token(*domain.Identity) (string, error) { return "token", nil }

type stubTrackerService struct {
	started, stopped bool
}

func (s *stubTrackerService) Start(_ context.Context, identity *domain.Identity) (*ports.TapResult, error) {
	s.started = true
	return &ports.TapResult{Action: ports.ActionStarted, Identity: identity}, nil
}

func (s *stubTrackerService) Stop(_ context.Context, identity *domain.Identity) (*ports.TapResult, error) {
	s.stopped = true
	return &ports.TapResult{Action: ports.ActionStopped, Identity: identity, DurationSeconds: 90}, nil
}

func (s *stubTrackerService) ActiveNow(context.Context) ([]domain.ActiveSessionView, error) {
	return nil, nil
}

func (s *stubTrackerService) Reconcile(context.Context) error { return nil }

func performTap(t *testing.T, h *TapHandler, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/v1/taps", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, h.Tap(e.NewContext(req, rec))
}

func TestTapStartRoutesToTracker(t *testing.T) {
	tracker := &stubTrackerService{}
	h := NewTapHandler(&stubAuthService{identity: &domain.Identity{ID: "a", Name: "Alice"}}, tracker)

	rec, err := performTap(t, h, `{"station":"start"}`)
	if err != nil {
		t.Fatalf("tap: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !tracker.started || tracker.stopped {
		t.Errorf("expected only start called, started=%v stopped=%v", tracker.started, tracker.stopped)
	}

	var result ports.TapResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Action != ports.ActionStarted {
		t.Errorf("expected started action, got %s", result.Action)
	}
}

func TestTapStopRoutesToTracker(t *testing.T) {
	tracker := &stubTrackerService{}
	h := NewTapHandler(&stubAuthService{identity: &domain.Identity{ID: "a", Name: "Alice"}}, tracker)

	rec, err := performTap(t, h, `{"station":"stop"}`)
	if err != nil {
		t.Fatalf("tap: %v", err)
	}
	if rec.Code != http.StatusOK || !tracker.stopped {
		t.Errorf("expected stop handled, code=%d stopped=%v", rec.Code, tracker.stopped)
	}
}

func TestTapRejectsUnknownStation(t *testing.T) {
	h := NewTapHandler(&stubAuthService{identity: &domain.Identity{ID: "a"}}, &stubTrackerService{})

	_, tapErr := performTap(t, h, `{"station":"pause"}`)
	httpErr, ok := tapErr.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", tapErr)
	}
	if httpErr.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", httpErr.Code)
	}
}

func TestTapPropagatesResolutionFailure(t *testing.T) {
	h := NewTapHandler(&stubAuthService{resolveErr: domain.ErrNeedsCredentials}, &stubTrackerService{})

	_, err := performTap(t, h, `{"station":"start"}`)
	if err != domain.ErrNeedsCredentials {
		t.Fatalf("expected ErrNeedsCredentials passed through, got %v", err)
	}
}
