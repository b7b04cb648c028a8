package models

import "time"

// Session binds a session id to exactly one account. It never holds any
// credential material.
type Session struct {
	ID        string
	AccountID int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
