package merge

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to the request boundary. Handlers map these to
// structured client errors; nothing below the handler layer writes HTTP
// responses.
var (
	// ErrNotFound means the target identifier resolved to no account
	ErrNotFound = errors.New("account not found")

	// ErrSelfInvitation means an account tried to invite itself
	ErrSelfInvitation = errors.New("cannot send a merge invitation to yourself")

	// ErrAlreadyMerged means one of the parties is already part of an
	// active merge
	ErrAlreadyMerged = errors.New("account is already merged")

	// ErrHasActiveInvitation means one of the parties already has a
	// pending invitation, sent or received
	ErrHasActiveInvitation = errors.New("account already has a pending invitation")

	// ErrExpired means the invitation passed its expiry before it was
	// accepted
	ErrExpired = errors.New("invitation has expired")

	// ErrNotFoundOrProcessed means no pending invitation matches the id
	// and caller
	ErrNotFoundOrProcessed = errors.New("invitation not found or already processed")

	// ErrNotMerged means the caller requested an unmerge without an
	// active merge
	ErrNotMerged = errors.New("account is not merged")

	// ErrInvalidSetting means a display-settings value is outside its
	// closed enumeration
	ErrInvalidSetting = errors.New("invalid display setting")

	// ErrConflict means a unique constraint rejected the write
	ErrConflict = errors.New("conflicting merge state")
)

// CoolingPeriodError means an unmerge was attempted before the cooling-off
// period elapsed.
type CoolingPeriodError struct {
	RemainingDays int
}

func (e *CoolingPeriodError) Error() string {
	return fmt.Sprintf("cooling-off period active: %d day(s) remaining", e.RemainingDays)
}

// ErrorKind returns a short stable label for an error, used for metrics and
// error response bodies.
func ErrorKind(err error) string {
	var cooling *CoolingPeriodError
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrSelfInvitation):
		return "self_invitation"
	case errors.Is(err, ErrAlreadyMerged):
		return "already_merged"
	case errors.Is(err, ErrHasActiveInvitation):
		return "has_active_invitation"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrNotFoundOrProcessed):
		return "not_found_or_processed"
	case errors.Is(err, ErrNotMerged):
		return "not_merged"
	case errors.Is(err, ErrInvalidSetting):
		return "invalid_setting"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.As(err, &cooling):
		return "cooling_period"
	default:
		return "internal"
	}
}
