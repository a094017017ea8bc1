// Package metrics defines and registers all custom Prometheus metrics for
// the stairstreak API. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "stairstreak"

// TapsProcessedTotal counts taps by station and resulting action.
// Labels:
//   - station: "start" or "stop"
//   - action: "started", "already_started", "stopped", "no_session"
var TapsProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "taps_processed_total",
		Help:      "Total number of taps processed, by station and action.",
	},
	[]string{"station", "action"},
)

// AuthAttemptsTotal counts identity resolutions.
// Labels:
//   - method: "fast_path" or "credentials"
//   - result: "ok", "needs_credentials", "invalid"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of identity resolution attempts.",
	},
	[]string{"method", "result"},
)

// RegistrationsTotal counts registration attempts by outcome.
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// LeaderboardRecomputesTotal counts view recomputations.
var LeaderboardRecomputesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "leaderboard_recomputes_total",
		Help:      "Total number of leaderboard view recomputations.",
	},
)

// ActiveSessions tracks how many sessions are currently running.
var ActiveSessions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Number of currently active sessions.",
	},
)

// LeaderboardEntries tracks the size of the current leaderboard view.
var LeaderboardEntries = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "leaderboard_entries",
		Help:      "Number of entries in the current leaderboard view.",
	},
)

// AdminClearsTotal counts administrative clear operations by outcome.
// Label:
//   - result: "ok" or "partial_failure"
var AdminClearsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admin_clears_total",
		Help:      "Total number of administrative clear operations.",
	},
	[]string{"result"},
)
