package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/stairstreak/leaderboard-system/internal/core/domain"
	"github.com/stairstreak/leaderboard-system/internal/core/ports"
)

// staleSessionAge mirrors the aggregation validity ceiling. A session older
// than this still reports already_started (sessions never time out on their
// own) but the result is flagged so kiosks can prompt the user.
const staleSessionAge = 2 * time.Hour

// Tracker enforces the per-identity Idle -> Active -> Idle state machine.
// Store writes that fail are recorded in an in-process fallback table instead
// of discarding the transition; Reconcile writes them through once the store
// recovers. The fallback dies with the process: a crash before reconciliation
// means the transition never happened as far as other devices are concerned.
type Tracker struct {
	sessions ports.ActiveSessionRepository
	events   ports.TapEventRepository
	log      zerolog.Logger
	now      func() time.Time

	mu       sync.Mutex
	fallback map[string]domain.ActiveSession // identityID -> locally recorded session
}

var _ ports.TrackerService = (*Tracker)(nil)

func NewTracker(sessions ports.ActiveSessionRepository, events ports.TapEventRepository, log zerolog.Logger) *Tracker {
	return &Tracker{
		sessions: sessions,
		events:   events,
		log:      log,
		now:      time.Now,
		fallback: make(map[string]domain.ActiveSession),
	}
}

// Start transitions an identity to Active. If a session already exists the
// state machine does not transition and the elapsed time is reported back.
func (t *Tracker) Start(ctx context.Context, identity *domain.Identity) (*ports.TapResult, error) {
	now := t.now().UTC()

	// Re-check immediately before inserting to keep the race window narrow.
	if existing := t.currentSession(ctx, identity.ID); existing != nil {
		elapsed := existing.Elapsed(now)
		return &ports.TapResult{
			Action:          ports.ActionAlreadyStarted,
			Identity:        identity,
			DurationSeconds: int64(elapsed.Seconds()),
			Stale:           elapsed > staleSessionAge,
			Message: fmt.Sprintf(
				"You already have an active session running for %d minutes! Please go to the stop station to complete it.",
				int64(elapsed.Minutes())),
		}, nil
	}

	session := domain.ActiveSession{
		IdentityID:   identity.ID,
		IdentityName: identity.Name,
		StartedAt:    now,
		Station:      domain.StationStart,
	}
	if _, err := t.sessions.Insert(ctx, &session); err != nil {
		t.log.Error().Err(err).Str("identity", identity.Name).
			Msg("active session insert failed, recording locally")
		t.mu.Lock()
		t.fallback[identity.ID] = session
		t.mu.Unlock()
	}

	if _, err := t.events.Append(ctx, domain.StartEvent{EventEnvelope: domain.EventEnvelope{
		IdentityID:   identity.ID,
		IdentityName: identity.Name,
		Timestamp:    now,
	}}); err != nil {
		t.log.Error().Err(err).Str("identity", identity.Name).Msg("start tap append failed")
	}

	return &ports.TapResult{
		Action:   ports.ActionStarted,
		Identity: identity,
		Message:  fmt.Sprintf("Welcome %s! Session started.", identity.Name),
	}, nil
}

// Stop closes the identity's active session and appends the stop event with
// the derived duration. Without an active session nothing is recorded.
func (t *Tracker) Stop(ctx context.Context, identity *domain.Identity) (*ports.TapResult, error) {
	now := t.now().UTC()

	sessions, err := t.sessions.FindByIdentity(ctx, identity.ID)
	if err != nil {
		t.log.Warn().Err(err).Str("identity", identity.Name).
			Msg("active session lookup failed, consulting local fallback")
		sessions = nil
	}

	var current *domain.ActiveSession
	if len(sessions) > 0 {
		current = &sessions[0] // first match is authoritative
	} else {
		t.mu.Lock()
		if local, ok := t.fallback[identity.ID]; ok {
			current = &local
		}
		t.mu.Unlock()
	}

	if current == nil {
		return &ports.TapResult{
			Action:   ports.ActionNoSession,
			Identity: identity,
			Message:  "You need to start a session first! Please go to the start station.",
		}, nil
	}

	duration := now.Sub(current.StartedAt)

	// Delete every row for this identity; extras are race duplicates.
	for _, s := range sessions {
		if delErr := t.sessions.Delete(ctx, s.ID); delErr != nil {
			t.log.Error().Err(delErr).Str("session_id", s.ID).Msg("active session delete failed")
		}
	}
	t.mu.Lock()
	delete(t.fallback, identity.ID)
	t.mu.Unlock()

	if _, err := t.events.Append(ctx, domain.StopEvent{
		EventEnvelope: domain.EventEnvelope{
			IdentityID:   identity.ID,
			IdentityName: identity.Name,
			Timestamp:    now,
		},
		DurationSeconds: int64(duration.Seconds()),
	}); err != nil {
		t.log.Error().Err(err).Str("identity", identity.Name).Msg("stop tap append failed")
	}

	return &ports.TapResult{
		Action:          ports.ActionStopped,
		Identity:        identity,
		DurationSeconds: int64(duration.Seconds()),
		Message: fmt.Sprintf("Excellent work %s! Session completed in %d minutes.",
			identity.Name, int64(duration.Minutes())),
	}, nil
}

// ActiveNow returns the live sessions view, merging any unreconciled local
// fallback records so the device that recorded them still shows them.
func (t *Tracker) ActiveNow(ctx context.Context) ([]domain.ActiveSessionView, error) {
	now := t.now().UTC()

	sessions, err := t.sessions.All(ctx)
	if err != nil {
		t.log.Warn().Err(err).Msg("active session scan failed, serving local fallback only")
		sessions = nil
	}

	seen := make(map[string]bool, len(sessions))
	views := make([]domain.ActiveSessionView, 0, len(sessions))
	appendSession := func(s domain.ActiveSession) {
		if seen[s.IdentityID] {
			return
		}
		seen[s.IdentityID] = true
		views = append(views, domain.ActiveSessionView{
			IdentityName:   s.IdentityName,
			ElapsedSeconds: int64(s.Elapsed(now).Seconds()),
		})
	}

	for _, s := range sessions {
		appendSession(s)
	}
	t.mu.Lock()
	for _, s := range t.fallback {
		appendSession(s)
	}
	t.mu.Unlock()

	return views, nil
}

// Reconcile writes fallback-recorded sessions through to the store and
// removes duplicate active sessions, keeping the earliest per identity. It
// never deletes a singleton session.
func (t *Tracker) Reconcile(ctx context.Context) error {
	t.mu.Lock()
	pending := make([]domain.ActiveSession, 0, len(t.fallback))
	for _, s := range t.fallback {
		pending = append(pending, s)
	}
	t.mu.Unlock()

	for _, local := range pending {
		existing, err := t.sessions.FindByIdentity(ctx, local.IdentityID)
		if err != nil {
			return fmt.Errorf("reconcile: %w", err)
		}
		if len(existing) == 0 {
			if _, err := t.sessions.Insert(ctx, &local); err != nil {
				return fmt.Errorf("reconcile: write-through: %w", err)
			}
			t.log.Info().Str("identity", local.IdentityName).Msg("fallback session written through")
		}
		// Either way the store now holds the truth for this identity.
		t.mu.Lock()
		delete(t.fallback, local.IdentityID)
		t.mu.Unlock()
	}

	all, err := t.sessions.All(ctx)
	if err != nil {
		return fmt.Errorf("reconcile: scan: %w", err)
	}
	byIdentity := make(map[string][]domain.ActiveSession)
	for _, s := range all {
		byIdentity[s.IdentityID] = append(byIdentity[s.IdentityID], s)
	}
	for _, group := range byIdentity {
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool {
			if !group[i].StartedAt.Equal(group[j].StartedAt) {
				return group[i].StartedAt.Before(group[j].StartedAt)
			}
			return group[i].ID < group[j].ID
		})
		for _, dup := range group[1:] {
			if err := t.sessions.Delete(ctx, dup.ID); err != nil {
				t.log.Error().Err(err).Str("session_id", dup.ID).Msg("duplicate session delete failed")
				continue
			}
			t.log.Warn().Str("identity", dup.IdentityName).Str("session_id", dup.ID).
				Msg("removed duplicate active session")
		}
	}
	return nil
}

func (t *Tracker) currentSession(ctx context.Context, identityID string) *domain.ActiveSession {
	sessions, err := t.sessions.FindByIdentity(ctx, identityID)
	if err != nil {
		t.log.Warn().Err(err).Msg("active session lookup failed, consulting local fallback")
	} else if len(sessions) > 0 {
		return &sessions[0]
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if local, ok := t.fallback[identityID]; ok {
		return &local
	}
	return nil
}
