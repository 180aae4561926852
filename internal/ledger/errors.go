package ledger

import "errors"

// Sentinel errors returned by Store operations. Callers classify failures
// with errors.Is; none of them triggers an automatic retry.
var (
	// ErrNotFound reports an unknown generation id or variant name.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidTransition reports a status-machine violation, including
	// rating a record that is not completed.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidRating reports a rating outside the accepted range.
	ErrInvalidRating = errors.New("rating must be an integer between 0 and 5")

	// ErrVariantUnavailable reports a generation request referencing an
	// unknown, disabled, or blacklisted variant.
	ErrVariantUnavailable = errors.New("variant unavailable")
)
