package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/stairstreak/leaderboard-system/internal/core/domain"
	"github.com/stairstreak/leaderboard-system/internal/core/ports"
)

// View maintains the cached leaderboard and active-session projections and
// fans them out to rendering collaborators. Recomputation runs on a single
// coalescing worker: change-feed signals collapse into one pending refresh,
// so a newer recomputation simply supersedes an older one.
type View struct {
	events     ports.TapEventRepository
	sessions   ports.ActiveSessionRepository
	identities ports.IdentityRepository
	log        zerolog.Logger
	now        func() time.Time

	mu      sync.RWMutex
	entries []domain.LeaderboardEntry
	active  []domain.ActiveSession
	subs    map[int]func(ports.ViewSnapshot)
	nextSub int

	kick   chan struct{}
	unsubs []func()
}

var _ ports.LeaderboardService = (*View)(nil)

func NewView(
	events ports.TapEventRepository,
	sessions ports.ActiveSessionRepository,
	identities ports.IdentityRepository,
	log zerolog.Logger,
) *View {
	return &View{
		events:     events,
		sessions:   sessions,
		identities: identities,
		log:        log,
		now:        time.Now,
		subs:       make(map[int]func(ports.ViewSnapshot)),
		kick:       make(chan struct{}, 1),
	}
}

// Start performs the initial computation, attaches to the store change feeds
// and launches the refresh worker. The worker stops when ctx is cancelled.
func (v *View) Start(ctx context.Context) error {
	if err := v.Refresh(ctx); err != nil {
		return fmt.Errorf("initial leaderboard load: %w", err)
	}

	for name, subscribe := range map[string]func() (func(), error){
		"tapEvents":      func() (func(), error) { return v.events.Subscribe(func([]domain.TapEvent) { v.requestRefresh() }) },
		"identities":     func() (func(), error) { return v.identities.Subscribe(func([]domain.Identity) { v.requestRefresh() }) },
		"activeSessions": func() (func(), error) { return v.sessions.Subscribe(func([]domain.ActiveSession) { v.requestRefresh() }) },
	} {
		unsub, err := subscribe()
		if err != nil {
			v.log.Warn().Err(err).Str("collection", name).Msg("change feed unavailable, view will refresh on demand")
			continue
		}
		v.unsubs = append(v.unsubs, unsub)
	}

	go v.run(ctx)
	return nil
}

func (v *View) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for _, unsub := range v.unsubs {
				unsub()
			}
			return
		case <-v.kick:
			if err := v.Refresh(ctx); err != nil {
				v.log.Error().Err(err).Msg("leaderboard refresh failed")
			}
		}
	}
}

func (v *View) requestRefresh() {
	select {
	case v.kick <- struct{}{}:
	default: // a refresh is already pending, it will pick up this change
	}
}

// Refresh recomputes the view from the full persisted state and notifies
// render subscribers.
func (v *View) Refresh(ctx context.Context) error {
	events, err := v.events.All(ctx)
	if err != nil {
		return err
	}
	identities, err := v.identities.All(ctx)
	if err != nil {
		return err
	}
	sessions, err := v.sessions.All(ctx)
	if err != nil {
		return err
	}

	entries := Aggregate(events, identities)

	v.mu.Lock()
	v.entries = entries
	v.active = sessions
	v.mu.Unlock()

	v.log.Debug().
		Int("entries", len(entries)).
		Int("active_sessions", len(sessions)).
		Msg("leaderboard recomputed")

	v.notify()
	return nil
}

// Snapshot returns the current view with active-session elapsed times
// computed at call time.
func (v *View) Snapshot() ports.ViewSnapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()

	entries := make([]domain.LeaderboardEntry, len(v.entries))
	copy(entries, v.entries)

	now := v.now()
	seen := make(map[string]bool, len(v.active))
	activeNow := make([]domain.ActiveSessionView, 0, len(v.active))
	for _, s := range v.active {
		if seen[s.IdentityID] {
			continue // duplicate row from the accepted race window
		}
		seen[s.IdentityID] = true
		activeNow = append(activeNow, domain.ActiveSessionView{
			IdentityName:   s.IdentityName,
			ElapsedSeconds: int64(s.Elapsed(now).Seconds()),
		})
	}

	return ports.ViewSnapshot{Entries: entries, ActiveNow: activeNow}
}

func (v *View) SubscribeRender(onChange func(ports.ViewSnapshot)) func() {
	v.mu.Lock()
	id := v.nextSub
	v.nextSub++
	v.subs[id] = onChange
	v.mu.Unlock()

	return func() {
		v.mu.Lock()
		delete(v.subs, id)
		v.mu.Unlock()
	}
}

// Reset drops the cached view, used after an administrative clear.
func (v *View) Reset() {
	v.mu.Lock()
	v.entries = nil
	v.active = nil
	v.mu.Unlock()
	v.notify()
}

func (v *View) notify() {
	snapshot := v.Snapshot()
	v.mu.RLock()
	subs := make([]func(ports.ViewSnapshot), 0, len(v.subs))
	for _, fn := range v.subs {
		subs = append(subs, fn)
	}
	v.mu.RUnlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}
