package dispatch

import "errors"

// Business-expected outcomes are ordinary return values, not panics. Losing
// an acceptance race or cancelling normally is not logged as an error.
var (
	// ErrInvalidTransition is returned when a state change is not legal from
	// the booking's current status. Always recoverable by the caller.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrAlreadyTaken is returned to a provider who lost the acceptance race.
	ErrAlreadyTaken = errors.New("booking already taken")

	// ErrNotCancellable is returned when cancellation is attempted on a
	// terminal booking, or when the booking advanced past a cancellable
	// state while the cancellation was in flight.
	ErrNotCancellable = errors.New("booking is not cancellable")

	// ErrCodeMismatch is returned when the verification code supplied at a
	// stage transition does not match. Retryable by the same actor.
	ErrCodeMismatch = errors.New("verification code mismatch")

	// ErrNotFound is returned when the booking id is unknown.
	ErrNotFound = errors.New("booking not found")
)
