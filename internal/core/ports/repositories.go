package ports

import (
	"context"
	"time"

	"github.com/stairstreak/leaderboard-system/internal/core/domain"
)

// IdentityRepository persists registered identities.
type IdentityRepository interface {
	Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error)
	All(ctx context.Context) ([]domain.Identity, error)
	TouchLastSeen(ctx context.Context, id string, at time.Time) error
	Subscribe(onChange func([]domain.Identity)) (func(), error)
}

// TapEventRepository persists the append-only tap log.
type TapEventRepository interface {
	Append(ctx context.Context, event domain.TapEvent) (string, error)
	All(ctx context.Context) ([]domain.TapEvent, error)
	Subscribe(onChange func([]domain.TapEvent)) (func(), error)
}

// ActiveSessionRepository persists currently running sessions.
type ActiveSessionRepository interface {
	Insert(ctx context.Context, session *domain.ActiveSession) (*domain.ActiveSession, error)
	// FindByIdentity returns every session held for the identity. Duplicates
	// are possible under the accepted race window; callers take the first.
	FindByIdentity(ctx context.Context, identityID string) ([]domain.ActiveSession, error)
	All(ctx context.Context) ([]domain.ActiveSession, error)
	Delete(ctx context.Context, id string) error
	Subscribe(onChange func([]domain.ActiveSession)) (func(), error)
}

// DeviceVault is the device-local credential binding store. It is never
// synchronized to the shared stores.
type DeviceVault interface {
	Put(binding domain.LocalCredentialBinding) error
	All() ([]domain.LocalCredentialBinding, error)
	// MostRecent returns the newest binding, or nil when the vault is empty.
	MostRecent() (*domain.LocalCredentialBinding, error)
}

// CooldownGate rate-limits registrations per device key.
type CooldownGate interface {
	// Allow reports whether the key is currently outside its cooldown window.
	Allow(ctx context.Context, key string) (bool, error)
	// Mark starts a new cooldown window for the key.
	Mark(ctx context.Context, key string) error
}
