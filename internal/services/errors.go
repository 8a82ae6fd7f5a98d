package services

import "errors"

var (
	// ErrInvalidInput reports a missing or blank required field.
	ErrInvalidInput = errors.New("otp: invalid input")
	// ErrInvalidOrExpiredCode covers wrong, expired and already used codes alike so callers
	// cannot tell them apart.
	ErrInvalidOrExpiredCode = errors.New("otp: invalid or expired code")
	// ErrPersistenceFailed wraps storage failures.
	ErrPersistenceFailed = errors.New("otp: persistence failed")
	// ErrDeliveryFailed wraps mail transport failures while sending a code.
	ErrDeliveryFailed = errors.New("otp: delivery failed")
)

// errCodeConsumed aborts the verification transaction when the conditional update misses.
var errCodeConsumed = errors.New("otp: code consumed concurrently")
