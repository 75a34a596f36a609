package entity

import "time"

// User is a dashboard administrator.
type User struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	HashedPassword string `json:"-"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
}

// Session is a server-side login session referenced by the session cookie.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`

	// Fresh is set when validation extended ExpiresAt, so the cookie must be
	// re-issued. It is never persisted.
	Fresh bool `json:"-"`
}

// Expired reports whether the session has ended at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
