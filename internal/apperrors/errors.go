package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrInvalidAmount indicates that a monetary amount was non-numeric, zero or negative.
var ErrInvalidAmount = fmt.Errorf("%w: invalid amount", ErrValidation)

// ErrInvalidDestination indicates that a payout destination could not be normalized.
var ErrInvalidDestination = fmt.Errorf("%w: invalid destination phone number", ErrValidation)

// ErrAlreadyTerminal indicates an attempt to move a transaction out of PENDING
// after it already reached a terminal status. This is the double-settlement
// guard, not a user-facing error.
var ErrAlreadyTerminal = errors.New("transaction already in a terminal status")

// ErrGatewayUnreachable indicates a network-level failure talking to the
// payment gateway. Retryable.
var ErrGatewayUnreachable = errors.New("payment gateway unreachable")

// ErrGatewayRejected indicates the gateway rejected the request for a business
// reason (insufficient float, bad destination, ...). Not retryable.
var ErrGatewayRejected = errors.New("payment gateway rejected the request")

// ErrGatewayMalformedResponse indicates the gateway replied with a payload we
// could not interpret. Treated as a transient integration fault.
var ErrGatewayMalformedResponse = errors.New("payment gateway returned a malformed response")
