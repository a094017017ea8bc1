package service

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/stairstreak/leaderboard-system/internal/core/domain"
)

// Validity window for pairing a start with a stop. Anything at or below the
// floor is a double-tap or test tap; anything at or above the ceiling is an
// abandoned session someone closed much later. Both are discarded silently.
const (
	minValidSession = time.Second
	maxValidSession = 2 * time.Hour
)

type identityStats struct {
	identityID   string
	name         string
	sessions     int
	durations    []time.Duration
	personalBest time.Duration
	completed    bool
}

// Aggregate derives the ranked leaderboard from the full tap log and the
// identity set. It is a pure function: same inputs, same output, no hidden
// state, safe to re-run at any time.
func Aggregate(events []domain.TapEvent, identities []domain.Identity) []domain.LeaderboardEntry {
	nameByID := make(map[string]string, len(identities))
	for _, identity := range identities {
		nameByID[identity.ID] = identity.Name
	}

	sorted := make([]domain.TapEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Envelope().Timestamp.Before(sorted[j].Envelope().Timestamp)
	})

	stats := make(map[string]*identityStats)
	lastStart := make(map[string]domain.StartEvent)
	sawStart := make(map[string]string) // identityID -> denormalized name

	ensure := func(id, fallbackName string) *identityStats {
		st, ok := stats[id]
		if !ok {
			name := nameByID[id]
			if name == "" {
				name = fallbackName
			}
			if name == "" {
				name = "User"
			}
			st = &identityStats{identityID: id, name: name}
			stats[id] = st
		}
		return st
	}

	for _, event := range sorted {
		env := event.Envelope()
		switch e := event.(type) {
		case domain.StartEvent:
			lastStart[env.IdentityID] = e
			sawStart[env.IdentityID] = env.IdentityName
		case domain.StopEvent:
			start, ok := lastStart[env.IdentityID]
			if !ok {
				continue
			}
			// A start is consumed by exactly one stop, valid or not.
			delete(lastStart, env.IdentityID)

			duration := env.Timestamp.Sub(start.Timestamp)
			if duration <= minValidSession || duration >= maxValidSession {
				continue
			}

			st := ensure(env.IdentityID, env.IdentityName)
			st.sessions++
			st.durations = append(st.durations, duration)
			if !st.completed || duration < st.personalBest {
				st.personalBest = duration
			}
			st.completed = true
		}
	}

	// Identities that only ever tapped in stay visible, unranked.
	for id, name := range sawStart {
		if _, ok := stats[id]; !ok {
			ensure(id, name)
		}
	}

	ranked := make([]*identityStats, 0, len(stats))
	for _, st := range stats {
		ranked = append(ranked, st)
	}
	sort.SliceStable(ranked, func(i, j int) bool { return lessStats(ranked[i], ranked[j]) })

	entries := make([]domain.LeaderboardEntry, 0, len(ranked))
	for i, st := range ranked {
		entry := domain.LeaderboardEntry{
			Rank:                domain.RankUnranked,
			IdentityName:        st.name,
			SessionCount:        st.sessions,
			HasCompletedSession: st.completed,
		}
		if st.completed {
			entry.Rank = strconv.Itoa(i + 1)
			best := st.personalBest.Milliseconds()
			entry.PersonalBestMillis = &best

			var total time.Duration
			for _, d := range st.durations {
				total += d
			}
			avg := float64(total.Milliseconds()) / float64(len(st.durations))
			entry.AverageMillis = &avg
		}
		entries = append(entries, entry)
	}
	return entries
}

// lessStats orders completed entries first (fastest personal best wins),
// then incomplete ones alphabetically. Ties break on name and id so the
// output is fully deterministic.
func lessStats(a, b *identityStats) bool {
	if a.completed != b.completed {
		return a.completed
	}
	if a.completed {
		if a.personalBest != b.personalBest {
			return a.personalBest < b.personalBest
		}
	}
	an, bn := strings.ToLower(a.name), strings.ToLower(b.name)
	if an != bn {
		return an < bn
	}
	if a.name != b.name {
		return a.name < b.name
	}
	return a.identityID < b.identityID
}
