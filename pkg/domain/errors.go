package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrNoPendingAction is returned when a confirmation arrives for a session
// with nothing withheld.
var ErrNoPendingAction = errors.New("no pending action for session")
