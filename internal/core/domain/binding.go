package domain

import "time"

// LocalCredentialBinding is the device-local fast-path credential: an opaque
// device-generated token mapped to an identity. It lives only in the vault of
// the device that created it and never reaches the shared stores, so
// compromising one device cannot be replayed against another.
type LocalCredentialBinding struct {
	Token        string    `json:"token"`
	IdentityID   string    `json:"identity_id"`
	IdentityName string    `json:"identity_name"`
	SetupAt      time.Time `json:"setup_at"`
}
