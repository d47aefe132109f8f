package examgen

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors.
var (
	ErrRateLimited         = errors.New("examgen: rate limited")
	ErrQuotaExhausted      = errors.New("examgen: quota exhausted")
	ErrStoreUnavailable    = errors.New("examgen: quota store unavailable")
	ErrInvalidRequest      = errors.New("examgen: invalid request")
	ErrAuthFailed          = errors.New("examgen: provider authentication failed")
	ErrProviderUnavailable = errors.New("examgen: provider unavailable")
)

// RateLimitError is returned when an admission is rejected by the rate
// limiter. Detail carries the human-readable description of the window
// that was exceeded, e.g. "2 per 1 minute".
type RateLimitError struct {
	Detail     string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("examgen: rate limited: %s", e.Detail)
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}
