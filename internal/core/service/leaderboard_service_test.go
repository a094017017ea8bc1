package service

import (
	"testing"
	"time"

	"github.com/stairstreak/leaderboard-system/internal/core/domain"
)

var aggBase = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func startAt(id, name string, at time.Time) domain.StartEvent {
	return domain.StartEvent{EventEnvelope: domain.EventEnvelope{
		IdentityID: id, IdentityName: name, Timestamp: at,
	}}
}

func stopAt(id, name string, at time.Time) domain.StopEvent {
	return domain.StopEvent{EventEnvelope: domain.EventEnvelope{
		IdentityID: id, IdentityName: name, Timestamp: at,
	}}
}

func TestAggregateRanksByPersonalBest(t *testing.T) {
	events := []domain.TapEvent{
		startAt("a", "Alice", aggBase),
		stopAt("a", "Alice", aggBase.Add(90*time.Second)),
		startAt("b", "Bob", aggBase.Add(5*time.Minute)),
		stopAt("b", "Bob", aggBase.Add(5*time.Minute+60*time.Second)),
		startAt("a", "Alice", aggBase.Add(10*time.Minute)),
		stopAt("a", "Alice", aggBase.Add(10*time.Minute+120*time.Second)),
	}

	entries := Aggregate(events, nil)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	if entries[0].IdentityName != "Bob" || entries[0].Rank != "1" {
		t.Errorf("expected Bob ranked 1, got %s rank %s", entries[0].IdentityName, entries[0].Rank)
	}
	if entries[1].IdentityName != "Alice" || entries[1].Rank != "2" {
		t.Errorf("expected Alice ranked 2, got %s rank %s", entries[1].IdentityName, entries[1].Rank)
	}

	if entries[1].SessionCount != 2 {
		t.Errorf("expected Alice to have 2 sessions, got %d", entries[1].SessionCount)
	}
	if got := *entries[1].PersonalBestMillis; got != 90_000 {
		t.Errorf("expected Alice personal best 90000ms, got %d", got)
	}
	if got := *entries[1].AverageMillis; got != 105_000 {
		t.Errorf("expected Alice average 105000ms, got %f", got)
	}
}

func TestAggregateDiscardsOutOfWindowSessions(t *testing.T) {
	events := []domain.TapEvent{
		// Double-tap: at or below one second.
		startAt("a", "Alice", aggBase),
		stopAt("a", "Alice", aggBase.Add(time.Second)),
		// Abandoned: at or above two hours.
		startAt("a", "Alice", aggBase.Add(time.Minute)),
		stopAt("a", "Alice", aggBase.Add(time.Minute+2*time.Hour)),
	}

	entries := Aggregate(events, nil)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.SessionCount != 0 || e.HasCompletedSession {
		t.Errorf("expected no completed sessions, got count=%d completed=%v", e.SessionCount, e.HasCompletedSession)
	}
	if e.Rank != domain.RankUnranked {
		t.Errorf("expected unranked entry, got rank %q", e.Rank)
	}
}

func TestAggregateStartConsumedByOneStop(t *testing.T) {
	// The invalid stop consumes the start; the later stop has nothing to
	// pair with and is ignored.
	events := []domain.TapEvent{
		startAt("a", "Alice", aggBase),
		stopAt("a", "Alice", aggBase.Add(500*time.Millisecond)),
		stopAt("a", "Alice", aggBase.Add(time.Minute)),
	}

	entries := Aggregate(events, nil)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].SessionCount != 0 {
		t.Errorf("expected 0 sessions, got %d", entries[0].SessionCount)
	}
}

func TestAggregateIgnoresStopWithoutStart(t *testing.T) {
	events := []domain.TapEvent{
		stopAt("a", "Alice", aggBase),
	}
	if entries := Aggregate(events, nil); len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}

func TestAggregateStartOnlyIdentityStaysVisible(t *testing.T) {
	events := []domain.TapEvent{
		startAt("a", "Alice", aggBase),
		startAt("b", "Bob", aggBase.Add(time.Minute)),
		stopAt("b", "Bob", aggBase.Add(3*time.Minute)),
	}

	entries := Aggregate(events, nil)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	// Completed entries sort first.
	if entries[0].IdentityName != "Bob" {
		t.Errorf("expected Bob first, got %s", entries[0].IdentityName)
	}
	alice := entries[1]
	if alice.Rank != domain.RankUnranked || alice.HasCompletedSession {
		t.Errorf("expected Alice unranked and incomplete, got rank=%q completed=%v", alice.Rank, alice.HasCompletedSession)
	}
	if alice.PersonalBestMillis != nil || alice.AverageMillis != nil {
		t.Error("expected no stats for an incomplete entry")
	}
}

func TestAggregatePrefersIdentityRecordName(t *testing.T) {
	identities := []domain.Identity{{ID: "a", Name: "Alice Renamed"}}
	events := []domain.TapEvent{
		startAt("a", "Alice", aggBase),
		stopAt("a", "Alice", aggBase.Add(time.Minute)),
	}

	entries := Aggregate(events, identities)
	if entries[0].IdentityName != "Alice Renamed" {
		t.Errorf("expected current identity name, got %q", entries[0].IdentityName)
	}
}

func TestAggregateDeterministicOrder(t *testing.T) {
	// Identical personal bests: ties break on name, then id.
	events := []domain.TapEvent{
		startAt("b", "mallory", aggBase),
		stopAt("b", "mallory", aggBase.Add(time.Minute)),
		startAt("a", "Mallory", aggBase.Add(5*time.Minute)),
		stopAt("a", "Mallory", aggBase.Add(6*time.Minute)),
	}

	first := Aggregate(events, nil)
	for i := 0; i < 10; i++ {
		again := Aggregate(events, nil)
		for j := range first {
			if first[j].IdentityName != again[j].IdentityName {
				t.Fatalf("order changed between runs at index %d", j)
			}
		}
	}
	if first[0].IdentityName != "Mallory" {
		t.Errorf("expected uppercase name to sort first on equal key, got %q", first[0].IdentityName)
	}
}
