package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/stairstreak/leaderboard-system/internal/core/domain"
	"github.com/stairstreak/leaderboard-system/internal/core/ports"
)

// IdentityRepository implements ports.IdentityRepository on the store port.
type IdentityRepository struct {
	store ports.Store
}

func NewIdentityRepository(store ports.Store) *IdentityRepository {
	return &IdentityRepository{store: store}
}

func (r *IdentityRepository) Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error) {
	id, err := r.store.Insert(ctx, ports.CollectionIdentities, ports.Record{
		"name":         identity.Name,
		"secret_hash":  identity.SecretHash,
		"last_seen_at": encodeTime(identity.LastSeenAt),
		"created_at":   encodeTime(identity.CreatedAt),
	})
	if err != nil {
		return nil, fmt.Errorf("insert identity: %w", err)
	}

	created := *identity
	created.ID = id
	return &created, nil
}

func (r *IdentityRepository) All(ctx context.Context) ([]domain.Identity, error) {
	recs, err := r.store.QueryAll(ctx, ports.CollectionIdentities)
	if err != nil {
		return nil, fmt.Errorf("query identities: %w", err)
	}
	return decodeIdentities(recs), nil
}

func (r *IdentityRepository) TouchLastSeen(ctx context.Context, id string, at time.Time) error {
	return r.store.Update(ctx, ports.CollectionIdentities, id, ports.Record{
		"last_seen_at": encodeTime(at),
	})
}

func (r *IdentityRepository) Subscribe(onChange func([]domain.Identity)) (func(), error) {
	return r.store.Subscribe(ports.CollectionIdentities, func(recs []ports.Record) {
		onChange(decodeIdentities(recs))
	})
}

func decodeIdentities(recs []ports.Record) []domain.Identity {
	identities := make([]domain.Identity, 0, len(recs))
	for _, rec := range recs {
		identities = append(identities, domain.Identity{
			ID:         rec.ID(),
			Name:       recString(rec, "name"),
			SecretHash: recString(rec, "secret_hash"),
			LastSeenAt: parseTime(rec["last_seen_at"]),
			CreatedAt:  parseTime(rec["created_at"]),
		})
	}
	return identities
}
