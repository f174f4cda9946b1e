package models

import "time"

// Session is a login issued to an account. AccountID points at
// AccountDocument.ID; the session does not own the account.
type Session struct {
	SessionID string
	AccountID string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
