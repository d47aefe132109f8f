package examgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// AdmissionController decides, for each incoming request, whether it may
// proceed, under which limiting key, and whether a credential unit is
// consumed.
//
// Anonymous callers are counted per source address. A caller presenting a
// credential with positive balance bypasses address counting entirely and
// pays one unit per admitted request. A credential that is unknown or
// exhausted reads as balance zero and falls back to address counting; the
// two cases are deliberately indistinguishable.
type AdmissionController struct {
	limiter RateLimiter
	store   QuotaStore
	meter   Meter
	logger  *slog.Logger
}

// AdmissionOption configures an AdmissionController.
type AdmissionOption func(*AdmissionController)

// WithMeter sets the meter.
func WithMeter(m Meter) AdmissionOption {
	return func(c *AdmissionController) { c.meter = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) AdmissionOption {
	return func(c *AdmissionController) { c.logger = l }
}

// NewAdmissionController creates an AdmissionController. The limiter is
// required. A nil store runs the controller in degraded address-limiting
// mode (see Unconfigured).
func NewAdmissionController(limiter RateLimiter, store QuotaStore, opts ...AdmissionOption) (*AdmissionController, error) {
	if limiter == nil {
		return nil, fmt.Errorf("examgen: rate limiter is required")
	}
	if store == nil {
		store = Unconfigured()
	}

	c := &AdmissionController{
		limiter: limiter,
		store:   store,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.meter == nil {
		c.meter = noopMeter{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// Admit evaluates one request. On success it returns the admission with
// the key the request was billed under. Rejections are reported as
// *RateLimitError, ErrQuotaExhausted, or ErrStoreUnavailable.
func (c *AdmissionController) Admit(ctx context.Context, req AdmissionRequest) (Admission, error) {
	token := strings.TrimSpace(req.Token)
	credentialed := token != ""

	// The limiting key is computed from a read-only balance lookup; the
	// binding check is the conditional decrement below.
	key := ByAddress(req.RemoteAddr)
	var balance int64
	if credentialed {
		balance = c.store.GetQuota(ctx, token)
		if balance > 0 {
			key = Unmetered
		}
	}

	if key.Kind == KeyAddress {
		verdict, err := c.limiter.Allow(ctx, key.Value)
		if err != nil {
			return Admission{}, fmt.Errorf("examgen: rate limit check: %w", err)
		}
		if !verdict.Allowed {
			c.meter.OnReject(RejectEvent{Key: key, Credentialed: credentialed, Reason: RejectRateLimited, Detail: verdict.Detail})
			return Admission{}, &RateLimitError{Detail: verdict.Detail, RetryAfter: verdict.RetryAfter}
		}
	}

	if !credentialed {
		adm := Admission{Key: key}
		c.meter.OnAdmit(AdmitEvent{Key: key})
		return adm, nil
	}

	// Credentialed path: an unreachable store is an operational failure,
	// distinct from a legitimately exhausted balance.
	if err := c.store.Ping(ctx); err != nil {
		c.meter.OnReject(RejectEvent{Key: key, Credentialed: true, Reason: RejectStoreUnavailable})
		return Admission{}, ErrStoreUnavailable
	}

	if balance <= 0 {
		c.meter.OnReject(RejectEvent{Key: key, Credentialed: true, Reason: RejectQuotaExhausted})
		return Admission{}, ErrQuotaExhausted
	}

	remaining, err := c.store.DecrementQuota(ctx, token)
	if errors.Is(err, ErrQuotaExhausted) {
		// Lost the race: the balance was consumed by a concurrent
		// request between the read and the decrement.
		c.meter.OnReject(RejectEvent{Key: key, Credentialed: true, Reason: RejectQuotaExhausted})
		return Admission{}, ErrQuotaExhausted
	}
	if err != nil {
		// Decrement write failures are swallowed to avoid double-charging
		// ambiguity; the displayed balance is best effort. Known risk.
		c.logger.Warn("quota decrement failed", "error", err)
		remaining = balance - 1
	}

	adm := Admission{Key: key, QuotaRemaining: remaining, Metered: true}
	c.meter.OnAdmit(AdmitEvent{Key: key, Credentialed: true, Metered: true, QuotaRemaining: remaining})
	return adm, nil
}

// noopMeter is a meter that does nothing.
type noopMeter struct{}

func (noopMeter) OnAdmit(AdmitEvent)       {}
func (noopMeter) OnReject(RejectEvent)     {}
func (noopMeter) OnGenerate(GenerateEvent) {}
