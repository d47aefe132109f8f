package examgen

import "time"

// Meter observes admission and generation events for monitoring/logging.
type Meter interface {
	// OnAdmit is called when a request is admitted.
	OnAdmit(event AdmitEvent)

	// OnReject is called when a request is rejected.
	OnReject(event RejectEvent)

	// OnGenerate is called when a generation attempt completes.
	OnGenerate(event GenerateEvent)
}

// AdmitEvent describes an admitted request.
type AdmitEvent struct {
	Key            MeterKey
	Credentialed   bool
	Metered        bool
	QuotaRemaining int64
}

// RejectEvent describes a rejected request.
type RejectEvent struct {
	Key          MeterKey
	Credentialed bool
	Reason       string
	Detail       string
}

// Rejection reasons reported through RejectEvent.
const (
	RejectRateLimited      = "rate_limited"
	RejectQuotaExhausted   = "quota_exhausted"
	RejectStoreUnavailable = "store_unavailable"
)

// GenerateEvent describes the outcome of a provider call.
type GenerateEvent struct {
	Stage    Stage
	Success  bool
	Duration time.Duration
	Bytes    int
	Error    error
}
