package domain

import "time"

// Session is a server-side login session. Tokens are opaque random strings;
// a session counts as active only while IsActive is set and ExpiresAt is in
// the future. Rows are kept after deactivation for audit.
type Session struct {
	ID        string
	UserID    string
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
	IsActive  bool
	UserAgent string
	IPAddress string
}

// Expired reports whether the session has passed its expiry at the given instant.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
