package repository

import (
	"context"
	"fmt"

	"github.com/stairstreak/leaderboard-system/internal/core/domain"
	"github.com/stairstreak/leaderboard-system/internal/core/ports"
)

// ActiveSessionRepository implements ports.ActiveSessionRepository on the
// store port.
type ActiveSessionRepository struct {
	store ports.Store
}

func NewActiveSessionRepository(store ports.Store) *ActiveSessionRepository {
	return &ActiveSessionRepository{store: store}
}

func (r *ActiveSessionRepository) Insert(ctx context.Context, session *domain.ActiveSession) (*domain.ActiveSession, error) {
	id, err := r.store.Insert(ctx, ports.CollectionActiveSessions, ports.Record{
		"identity_id":   session.IdentityID,
		"identity_name": session.IdentityName,
		"started_at":    encodeTime(session.StartedAt),
		"station":       string(domain.StationStart),
	})
	if err != nil {
		return nil, fmt.Errorf("insert active session: %w", err)
	}

	created := *session
	created.ID = id
	created.Station = domain.StationStart
	return &created, nil
}

func (r *ActiveSessionRepository) FindByIdentity(ctx context.Context, identityID string) ([]domain.ActiveSession, error) {
	recs, err := r.store.QueryWhere(ctx, ports.CollectionActiveSessions, "identity_id", identityID)
	if err != nil {
		return nil, fmt.Errorf("query active session: %w", err)
	}
	return decodeSessions(recs), nil
}

func (r *ActiveSessionRepository) All(ctx context.Context) ([]domain.ActiveSession, error) {
	recs, err := r.store.QueryAll(ctx, ports.CollectionActiveSessions)
	if err != nil {
		return nil, fmt.Errorf("query active sessions: %w", err)
	}
	return decodeSessions(recs), nil
}

func (r *ActiveSessionRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, ports.CollectionActiveSessions, id)
}

func (r *ActiveSessionRepository) Subscribe(onChange func([]domain.ActiveSession)) (func(), error) {
	return r.store.Subscribe(ports.CollectionActiveSessions, func(recs []ports.Record) {
		onChange(decodeSessions(recs))
	})
}

func decodeSessions(recs []ports.Record) []domain.ActiveSession {
	sessions := make([]domain.ActiveSession, 0, len(recs))
	for _, rec := range recs {
		sessions = append(sessions, domain.ActiveSession{
			ID:           rec.ID(),
			IdentityID:   recString(rec, "identity_id"),
			IdentityName: recString(rec, "identity_name"),
			StartedAt:    parseTime(rec["started_at"]),
			Station:      domain.Station(recString(rec, "station")),
		})
	}
	return sessions
}
