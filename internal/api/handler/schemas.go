package handler

import "github.com/stairstreak/leaderboard-system/internal/core/domain"

// RegisterRequest creates a new identity with a display name and PIN.
type RegisterRequest struct {
	Name string `json:"name" validate:"required" example:"Alice"`
	PIN  string `json:"pin" validate:"required" example:"1234"`
	// BindFastPath stores the new credentials in the device vault so later
	// taps on this device resolve without typing. Defaults to true.
	BindFastPath *bool `json:"bind_fast_path"`
}

// LoginRequest resolves an identity. With no credentials the device fast
// path is tried; with name and PIN the portable path is used.
type LoginRequest struct {
	Name string `json:"name" example:"Alice"`
	PIN  string `json:"pin" example:"1234"`
	// AllowFastPath permits device-local resolution when no credentials are
	// supplied. Defaults to true.
	AllowFastPath *bool `json:"allow_fast_path"`
}

// TapRequest records a tap at a station, resolving the identity first.
type TapRequest struct {
	Station       string `json:"station" validate:"required,oneof=start stop" example:"start"`
	Name          string `json:"name" example:"Alice"`
	PIN           string `json:"pin" example:"1234"`
	AllowFastPath *bool  `json:"allow_fast_path"`
}

// AuthResponse carries the resolved identity and a bearer token for the
// admin endpoints.
type AuthResponse struct {
	Token    string           `json:"token"`
	Identity *domain.Identity `json:"identity"`
}

// MessageResponse is a generic confirmation payload.
type MessageResponse struct {
	Message string `json:"message"`
}

func boolOrTrue(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}
