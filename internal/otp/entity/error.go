package entity

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrNotFound means no active code exists for the identifier.
	ErrNotFound = errors.New("otp: no active code")
	// ErrInvalid means the submitted code does not match the stored one.
	ErrInvalid = errors.New("otp: code mismatch")
	// ErrCooldownActive means a resend came before the cooldown elapsed.
	ErrCooldownActive = errors.New("otp: cooldown active")
	// ErrStoreUnavailable means the code store could not be reached.
	ErrStoreUnavailable = errors.New("otp: code store unavailable")
)

// CooldownError carries how long the caller must wait before resending.
// It matches ErrCooldownActive with errors.Is.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s: retry in %ds", ErrCooldownActive, e.RemainingSeconds())
}

func (e *CooldownError) Is(target error) bool {
	return target == ErrCooldownActive
}

// RemainingSeconds rounds up so a positive remainder never reports zero.
func (e *CooldownError) RemainingSeconds() int {
	if e.Remaining <= 0 {
		return 0
	}
	return int(math.Ceil(e.Remaining.Seconds()))
}

func (e *CooldownError) RetryAfter() time.Duration {
	return e.Remaining
}

func (e *CooldownError) ErrorData() map[string]any {
	return map[string]any{"remaining_seconds": e.RemainingSeconds()}
}
