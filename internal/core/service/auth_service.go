package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/stairstreak/leaderboard-system/internal/core/domain"
	"github.com/stairstreak/leaderboard-system/internal/core/ports"
)

const minSecretLength = 4

// Resolver implements hybrid identity resolution: a device-local fast-path
// binding that never carries the secret, with portable name+PIN credentials
// as the trust anchor on any new device. It keeps a read-through identity
// cache rebuilt from the store and kept fresh via the change feed; the store
// remains the source of truth.
type Resolver struct {
	identities ports.IdentityRepository
	vault      ports.DeviceVault
	cooldown   ports.CooldownGate
	deviceKey  string
	jwtSecret  string
	tokenTTL   time.Duration
	log        zerolog.Logger
	now        func() time.Time

	mu    sync.RWMutex
	byID  map[string]domain.Identity
	unsub func()
}

var _ ports.AuthService = (*Resolver)(nil)

func NewResolver(
	identities ports.IdentityRepository,
	vault ports.DeviceVault,
	cooldown ports.CooldownGate,
	deviceKey, jwtSecret string,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *Resolver {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Resolver{
		identities: identities,
		vault:      vault,
		cooldown:   cooldown,
		deviceKey:  deviceKey,
		jwtSecret:  jwtSecret,
		tokenTTL:   tokenTTL,
		log:        log,
		now:        time.Now,
		byID:       make(map[string]domain.Identity),
	}
}

// Init loads the identity cache and attaches to the change feed.
func (r *Resolver) Init(ctx context.Context) error {
	list, err := r.identities.All(ctx)
	if err != nil {
		return fmt.Errorf("load identities: %w", err)
	}
	r.replaceCache(list)

	unsub, err := r.identities.Subscribe(r.replaceCache)
	if err != nil {
		r.log.Warn().Err(err).Msg("identity change feed unavailable, cache reloads on miss only")
		return nil
	}
	r.unsub = unsub
	return nil
}

// Close detaches the change-feed subscription.
func (r *Resolver) Close() {
	if r.unsub != nil {
		r.unsub()
	}
}

// Resolve turns a credential into an identity.
//
// With no explicit credentials it tries the device fast path: the most
// recently created binding wins. A missing binding, or a binding whose
// identity no longer exists, fails with ErrNeedsCredentials — it never falls
// through to a different identity.
func (r *Resolver) Resolve(ctx context.Context, name, secret string, allowFastPath bool) (*domain.Identity, error) {
	name = strings.TrimSpace(name)

	if name == "" && secret == "" {
		if !allowFastPath {
			return nil, domain.ErrNeedsCredentials
		}
		binding, err := r.vault.MostRecent()
		if err != nil {
			r.log.Warn().Err(err).Msg("device vault read failed")
			return nil, domain.ErrNeedsCredentials
		}
		if binding == nil {
			return nil, domain.ErrNeedsCredentials
		}
		identity := r.lookupByID(ctx, binding.IdentityID)
		if identity == nil {
			r.log.Warn().Str("identity_id", binding.IdentityID).
				Msg("device binding points at a missing identity")
			return nil, domain.ErrNeedsCredentials
		}
		r.touch(ctx, identity)
		r.log.Debug().Str("identity", identity.Name).Msg("fast-path authentication")
		return identity, nil
	}

	if name == "" || secret == "" {
		return nil, domain.ErrNeedsCredentials
	}

	identity := r.lookupByName(ctx, name)
	if identity == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(identity.SecretHash), []byte(secret)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	r.touch(ctx, identity)
	return identity, nil
}

// Register creates a new identity and, best-effort, binds the fast path for
// this device. A failed binding never fails the registration.
func (r *Resolver) Register(ctx context.Context, name, secret string, bindFastPath bool) (*domain.Identity, error) {
	allowed, err := r.cooldown.Allow(ctx, r.deviceKey)
	if err != nil {
		r.log.Warn().Err(err).Msg("cooldown check failed, allowing registration")
	} else if !allowed {
		return nil, domain.ErrRateLimited
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, domain.ErrInvalidName
	}
	if len(secret) < minSecretLength {
		return nil, domain.ErrWeakSecret
	}
	if r.lookupByName(ctx, trimmed) != nil {
		return nil, domain.ErrNameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := r.now().UTC()
	created, err := r.identities.Create(ctx, &domain.Identity{
		Name:       trimmed,
		SecretHash: string(hash),
		LastSeenAt: now,
		CreatedAt:  now,
	})
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	r.cacheUpsert(*created)
	if markErr := r.cooldown.Mark(ctx, r.deviceKey); markErr != nil {
		r.log.Warn().Err(markErr).Msg("failed to start registration cooldown")
	}

	if bindFastPath {
		if bindErr := r.bindDevice(created, now); bindErr != nil {
			r.log.Warn().Err(bindErr).Str("identity", created.Name).
				Msg("fast-path binding skipped, PIN still works")
		}
	}

	r.log.Info().Str("identity", created.Name).Str("identity_id", created.ID).Msg("identity registered")
	return created, nil
}

// Token issues a signed token for a resolved identity.
func (r *Resolver) Token(identity *domain.Identity) (string, error) {
	claims := jwt.MapClaims{
		"identity_id": identity.ID,
		"name":        identity.Name,
		"exp":         r.now().Add(r.tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(r.jwtSecret))
}

func (r *Resolver) bindDevice(identity *domain.Identity, at time.Time) error {
	return r.vault.Put(domain.LocalCredentialBinding{
		Token:        "fp_" + uuid.NewString(),
		IdentityID:   identity.ID,
		IdentityName: identity.Name,
		SetupAt:      at,
	})
}

// touch updates last-seen on every successful authentication; a failed write
// is logged but never blocks resolution.
func (r *Resolver) touch(ctx context.Context, identity *domain.Identity) {
	identity.LastSeenAt = r.now().UTC()
	if err := r.identities.TouchLastSeen(ctx, identity.ID, identity.LastSeenAt); err != nil {
		r.log.Warn().Err(err).Str("identity", identity.Name).Msg("last-seen update failed")
	}
	r.cacheUpsert(*identity)
}

func (r *Resolver) replaceCache(list []domain.Identity) {
	byID := make(map[string]domain.Identity, len(list))
	for _, identity := range list {
		byID[identity.ID] = identity
	}
	r.mu.Lock()
	r.byID = byID
	r.mu.Unlock()
}

func (r *Resolver) cacheUpsert(identity domain.Identity) {
	r.mu.Lock()
	r.byID[identity.ID] = identity
	r.mu.Unlock()
}

// lookupByID reads through the cache: on a miss the cache is rebuilt from
// the store before giving up.
func (r *Resolver) lookupByID(ctx context.Context, id string) *domain.Identity {
	r.mu.RLock()
	identity, ok := r.byID[id]
	r.mu.RUnlock()
	if ok {
		clone := identity
		return &clone
	}

	if list, err := r.identities.All(ctx); err == nil {
		r.replaceCache(list)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if identity, ok := r.byID[id]; ok {
		clone := identity
		return &clone
	}
	return nil
}

func (r *Resolver) lookupByName(ctx context.Context, name string) *domain.Identity {
	key := domain.NameKey(name)
	if identity := r.findCached(key); identity != nil {
		return identity
	}

	if list, err := r.identities.All(ctx); err == nil {
		r.replaceCache(list)
	}
	return r.findCached(key)
}

func (r *Resolver) findCached(nameKey string) *domain.Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, identity := range r.byID {
		if domain.NameKey(identity.Name) == nameKey {
			clone := identity
			return &clone
		}
	}
	return nil
}
