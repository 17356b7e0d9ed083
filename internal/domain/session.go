package domain

import "time"

// SessionState is either authenticated or anonymous.
type SessionState string

const (
	SessionAuthenticated SessionState = "authenticated"
	SessionAnonymous     SessionState = "anonymous"
)

// Session is the explicit request-scoped login state.
type Session struct {
	State     SessionState
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// Anonymous returns the session of a visitor who has not logged in.
func Anonymous() Session {
	return Session{State: SessionAnonymous}
}

// IsAuthenticated reports whether the session belongs to a logged-in user.
func (s Session) IsAuthenticated() bool {
	return s.State == SessionAuthenticated
}

// User is a dashboard account.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
