package domain

// RankUnranked is the rank marker for identities that have started sessions
// but never completed one. They stay visible at the bottom of the board.
const RankUnranked = "-"

// LeaderboardEntry is a derived per-identity row. It is recomputed from the
// full event log on demand and never persisted.
type LeaderboardEntry struct {
	Rank                string   `json:"rank"`
	IdentityName        string   `json:"identity_name"`
	SessionCount        int      `json:"session_count"`
	PersonalBestMillis  *int64   `json:"personal_best_ms"`
	AverageMillis       *float64 `json:"average_ms"`
	HasCompletedSession bool     `json:"has_completed_session"`
}
