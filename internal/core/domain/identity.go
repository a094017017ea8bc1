package domain

import (
	"strings"
	"time"
)

// Identity models a registered participant. The secret (a short PIN) is never
// stored in clear; only its one-way hash is persisted.
type Identity struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	Name       string    `json:"name" bson:"name"`
	SecretHash string    `json:"-" bson:"secret_hash"`
	LastSeenAt time.Time `json:"last_seen_at" bson:"last_seen_at"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// NameKey returns the case-insensitive key under which a display name is
// considered unique. Two identities may never share a NameKey.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
