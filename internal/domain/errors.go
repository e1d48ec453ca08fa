package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

// OTP flow errors. All of these are expected, recoverable conditions: the
// caller fixes its input or requests a fresh code. Only infrastructure
// failures propagate outside this set.
var (
	// ErrNoActiveCode: verify was attempted with no live pending entry —
	// never issued, already consumed, or expired and swept.
	ErrNoActiveCode = errors.New("no active code")
	// ErrCodeExpired: a pending entry exists but is past its expiry.
	// Equivalent to ErrNoActiveCode for the caller, distinguishable for telemetry.
	ErrCodeExpired = errors.New("code expired")
	// ErrTooManyAttempts: the attempt ceiling was reached; the entry has been
	// invalidated as a side effect.
	ErrTooManyAttempts = errors.New("too many attempts")
	// ErrUnknownIdentity: resend was requested for an identifier that has
	// never gone through request-code.
	ErrUnknownIdentity = errors.New("unknown identity")
	// ErrDeliveryFailed: the notification channel failed or timed out. The
	// pending entry is rolled back before this is returned.
	ErrDeliveryFailed = errors.New("delivery failed")
)

// InvalidCodeError reports a wrong guess while attempts remain, so the client
// can warn the user how many guesses are left.
type InvalidCodeError struct {
	Remaining int
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("invalid code, %d attempts remaining", e.Remaining)
}
