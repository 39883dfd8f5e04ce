package dto

import "time"

// SessionTokenRequest carries the opaque token in the body; the bearer header
// is honored as well.
type SessionTokenRequest struct {
	SessionToken string `json:"sessionToken"`
}

// SessionResponse is returned from login/validate/refresh.
type SessionResponse struct {
	SessionToken string       `json:"sessionToken"`
	ExpiresAt    time.Time    `json:"expires_at"`
	User         UserResponse `json:"user"`
}

// ValidateResponse reports token validity.
type ValidateResponse struct {
	Valid     bool         `json:"valid"`
	User      UserResponse `json:"user"`
	ExpiresAt time.Time    `json:"expires_at"`
}
