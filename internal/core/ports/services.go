package ports

import (
	"context"

	"github.com/stairstreak/leaderboard-system/internal/core/domain"
)

// TapAction classifies the outcome of a tap.
type TapAction string

const (
	ActionStarted        TapAction = "started"
	ActionAlreadyStarted TapAction = "already_started"
	ActionStopped        TapAction = "stopped"
	ActionNoSession      TapAction = "no_session"
)

// TapResult is the structured outcome of a start or stop transition.
type TapResult struct {
	Action          TapAction        `json:"action"`
	Identity        *domain.Identity `json:"identity"`
	DurationSeconds int64            `json:"duration_seconds,omitempty"`
	// Stale marks an already-running session older than the validity ceiling.
	// It still counts as active; no transition is timeout-triggered.
	Stale   bool   `json:"stale,omitempty"`
	Message string `json:"message"`
}

// AuthService resolves and registers identities.
type AuthService interface {
	// Resolve turns an ambient or supplied credential into an identity.
	// With empty name/secret and allowFastPath it tries the device binding
	// first and fails with domain.ErrNeedsCredentials when inconclusive.
	Resolve(ctx context.Context, name, secret string, allowFastPath bool) (*domain.Identity, error)
	Register(ctx context.Context, name, secret string, bindFastPath bool) (*domain.Identity, error)
	// Token issues a signed token for an already-resolved identity.
	Token(identity *domain.Identity) (string, error)
}

// TrackerService enforces the per-identity Idle -> Active -> Idle machine.
type TrackerService interface {
	Start(ctx context.Context, identity *domain.Identity) (*TapResult, error)
	Stop(ctx context.Context, identity *domain.Identity) (*TapResult, error)
	ActiveNow(ctx context.Context) ([]domain.ActiveSessionView, error)
	// Reconcile writes locally-fallback-recorded sessions through to the
	// store and removes duplicate active sessions. Run at startup and after
	// store recovery.
	Reconcile(ctx context.Context) error
}

// ViewSnapshot is what rendering collaborators receive on every change.
type ViewSnapshot struct {
	Entries   []domain.LeaderboardEntry  `json:"entries"`
	ActiveNow []domain.ActiveSessionView `json:"active_now"`
}

// LeaderboardService maintains the derived ranked view.
type LeaderboardService interface {
	Snapshot() ViewSnapshot
	Refresh(ctx context.Context) error
	// SubscribeRender registers a listener invoked with a fresh snapshot
	// whenever the leaderboard or the active-session set changes.
	SubscribeRender(onChange func(ViewSnapshot)) func()
	// Reset drops the cached view (used after an administrative clear).
	Reset()
}

// AdminService exposes maintenance operations.
type AdminService interface {
	// ClearAll purges all collections. Partial failure is reported as a
	// *domain.PartialClearError naming the collections that did clear.
	ClearAll(ctx context.Context) error
}
