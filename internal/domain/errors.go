package domain

import "errors"

var (
	// ErrSourceUnavailable means the record source could not be read.
	ErrSourceUnavailable = errors.New("record source unavailable")
	// ErrAssistantUnavailable means the Q&A forwarder could not produce an answer.
	ErrAssistantUnavailable = errors.New("could not reach assistant")
	// ErrEmptyQuestion is returned for blank assistant questions.
	ErrEmptyQuestion = errors.New("question is required")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserExists         = errors.New("user already exists")
	ErrSignupDisabled     = errors.New("signup is disabled")
)
