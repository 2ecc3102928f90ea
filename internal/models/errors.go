package models

import "errors"

// Expected, recoverable conditions. The dispatch layer matches these
// with errors.Is and maps each one to a stable user-facing notice.
// Anything outside this list is a storage fault and propagates hard.
var (
	ErrAlreadyPaired   = errors.New("user already in an active session")
	ErrAlreadyQueued   = errors.New("user already waiting in queue")
	ErrNotInSession    = errors.New("user has no active session or queue entry")
	ErrAlreadyRated    = errors.New("session already rated by this user")
	ErrAlreadyReported = errors.New("session already reported by this user")
	ErrBanned          = errors.New("user is banned")
	ErrForbidden       = errors.New("administrator rights required")
	ErrDeliveryFailed  = errors.New("outbound delivery failed")
	ErrNotFound        = errors.New("record not found")
)
