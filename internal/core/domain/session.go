package domain

import "time"

// ActiveSession records that an identity has tapped in and not yet tapped
// out. Invariant: at most one per IdentityID. Because there is no cross-device
// lock the store may transiently hold duplicates; readers treat the first
// match as authoritative and reconciliation removes the rest.
type ActiveSession struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	IdentityID   string    `json:"identity_id" bson:"identity_id"`
	IdentityName string    `json:"identity_name" bson:"identity_name"`
	StartedAt    time.Time `json:"started_at" bson:"started_at"`
	Station      Station   `json:"station" bson:"station"`
}

// Elapsed returns how long the session has been running at the given instant.
func (s ActiveSession) Elapsed(now time.Time) time.Duration {
	return now.Sub(s.StartedAt)
}

// ActiveSessionView is the live projection handed to rendering collaborators.
type ActiveSessionView struct {
	IdentityName   string `json:"identity_name"`
	ElapsedSeconds int64  `json:"elapsed_seconds"`
}
