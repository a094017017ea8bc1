package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/stairstreak/leaderboard-system/internal/core/domain"
	"github.com/stairstreak/leaderboard-system/internal/core/ports"
)

// Admin implements the administrative clear. Each collection is purged with
// a single atomic operation; a failure on one collection never rolls back
// the others, and the partial outcome is reported rather than swallowed.
type Admin struct {
	store ports.Store
	view  ports.LeaderboardService
	log   zerolog.Logger
}

var _ ports.AdminService = (*Admin)(nil)

func NewAdmin(store ports.Store, view ports.LeaderboardService, log zerolog.Logger) *Admin {
	return &Admin{store: store, view: view, log: log}
}

func (a *Admin) ClearAll(ctx context.Context) error {
	collections := []string{
		ports.CollectionTapEvents,
		ports.CollectionIdentities,
		ports.CollectionActiveSessions,
	}

	cleared := make([]string, 0, len(collections))
	failed := make(map[string]error)
	for _, collection := range collections {
		if err := a.store.Clear(ctx, collection); err != nil {
			a.log.Error().Err(err).Str("collection", collection).Msg("clear failed")
			failed[collection] = err
			continue
		}
		cleared = append(cleared, collection)
	}

	if len(failed) > 0 {
		return &domain.PartialClearError{Cleared: cleared, Failed: failed}
	}

	a.view.Reset()
	a.log.Info().Msg("all collections cleared")
	return nil
}
