package usecase

import "errors"

var (
	// ErrNotFound: the referenced order id does not exist.
	ErrNotFound = errors.New("order not found")

	// ErrInvalidState: the requested transition is not legal from the
	// order's current state.
	ErrInvalidState = errors.New("order is in an invalid state")

	// ErrCreateOrder hides the root cause of a failed creation from the
	// caller; the cause is logged.
	ErrCreateOrder = errors.New("failed to create order")

	// ErrConfirmPayment hides the root cause of a failed confirmation.
	ErrConfirmPayment = errors.New("failed to confirm payment")

	// ErrConflict: a compare-and-set update lost a race with a concurrent
	// writer. Single-threaded callers never see it.
	ErrConflict = errors.New("order was modified concurrently")
)
