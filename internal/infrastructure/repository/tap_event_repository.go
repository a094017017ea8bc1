package repository

import (
	"context"
	"fmt"

	"github.com/stairstreak/leaderboard-system/internal/core/domain"
	"github.com/stairstreak/leaderboard-system/internal/core/ports"
)

// TapEventRepository implements ports.TapEventRepository on the store port.
// The tap log is append-only; this repository exposes no update or delete.
type TapEventRepository struct {
	store ports.Store
}

func NewTapEventRepository(store ports.Store) *TapEventRepository {
	return &TapEventRepository{store: store}
}

func (r *TapEventRepository) Append(ctx context.Context, event domain.TapEvent) (string, error) {
	env := event.Envelope()
	rec := ports.Record{
		"identity_id":   env.IdentityID,
		"identity_name": env.IdentityName,
		"station":       string(event.Station()),
		"timestamp":     encodeTime(env.Timestamp),
	}
	if stop, ok := event.(domain.StopEvent); ok {
		rec["duration_seconds"] = stop.DurationSeconds
	} else {
		rec["duration_seconds"] = int64(0)
	}

	id, err := r.store.Insert(ctx, ports.CollectionTapEvents, rec)
	if err != nil {
		return "", fmt.Errorf("append tap event: %w", err)
	}
	return id, nil
}

func (r *TapEventRepository) All(ctx context.Context) ([]domain.TapEvent, error) {
	recs, err := r.store.QueryAll(ctx, ports.CollectionTapEvents)
	if err != nil {
		return nil, fmt.Errorf("query tap events: %w", err)
	}
	return decodeTapEvents(recs), nil
}

func (r *TapEventRepository) Subscribe(onChange func([]domain.TapEvent)) (func(), error) {
	return r.store.Subscribe(ports.CollectionTapEvents, func(recs []ports.Record) {
		onChange(decodeTapEvents(recs))
	})
}

// decodeTapEvents maps records to the typed event union. Records with an
// unknown station are skipped rather than guessed at.
func decodeTapEvents(recs []ports.Record) []domain.TapEvent {
	events := make([]domain.TapEvent, 0, len(recs))
	for _, rec := range recs {
		env := domain.EventEnvelope{
			ID:           rec.ID(),
			IdentityID:   recString(rec, "identity_id"),
			IdentityName: recString(rec, "identity_name"),
			Timestamp:    parseTime(rec["timestamp"]),
		}
		switch domain.Station(recString(rec, "station")) {
		case domain.StationStart:
			events = append(events, domain.StartEvent{EventEnvelope: env})
		case domain.StationStop:
			events = append(events, domain.StopEvent{
				EventEnvelope:   env,
				DurationSeconds: recInt64(rec, "duration_seconds"),
			})
		}
	}
	return events
}
