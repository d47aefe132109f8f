package examgen

import "strconv"

// Stage identifies one of the fixed exam templates.
type Stage string

const (
	Stage1 Stage = "stage1"
	Stage2 Stage = "stage2"
	Stage3 Stage = "stage3"
	Stage4 Stage = "stage4"
)

// DefaultStage is used when a request omits the stage or names an
// unknown one.
const DefaultStage = Stage1

// ResolveStage maps a client-supplied stage string to a known Stage,
// falling back to DefaultStage for absent or unrecognized values.
func ResolveStage(s string) Stage {
	switch Stage(s) {
	case Stage1, Stage2, Stage3, Stage4:
		return Stage(s)
	default:
		return DefaultStage
	}
}

// KeyKind discriminates the variants of a MeterKey.
type KeyKind int

const (
	// KeyAddress buckets the request by source network address.
	KeyAddress KeyKind = iota

	// KeyUnmetered marks a request that bypasses window counting
	// entirely (verified credential with positive balance).
	KeyUnmetered
)

// MeterKey is the bucket a request is counted under by the rate limiter.
type MeterKey struct {
	Kind  KeyKind
	Value string
}

// ByAddress returns the limiting key for an anonymous (or
// exhausted-credential) caller at the given source address.
func ByAddress(addr string) MeterKey {
	return MeterKey{Kind: KeyAddress, Value: addr}
}

// Unmetered is the sentinel key for callers that are never counted.
var Unmetered = MeterKey{Kind: KeyUnmetered}

func (k MeterKey) String() string {
	if k.Kind == KeyUnmetered {
		return "unmetered"
	}
	return "addr:" + k.Value
}

// AdmissionRequest carries the admission-relevant parts of an incoming
// request.
type AdmissionRequest struct {
	// Token is the optional credential string from the request body.
	// Surrounding whitespace is ignored; empty means anonymous.
	Token string

	// RemoteAddr is the caller's source network address, without port.
	RemoteAddr string
}

// IPLimitDisplay is the quota display value for requests admitted under
// address-based limiting rather than a credential balance.
const IPLimitDisplay = "IP Limit"

// Admission is the successful outcome of an admission decision.
type Admission struct {
	// Key the request was (or would have been) counted under.
	Key MeterKey

	// QuotaRemaining is the post-decrement credential balance.
	// Only meaningful when Metered is true.
	QuotaRemaining int64

	// Metered reports whether a quota unit was consumed.
	Metered bool
}

// QuotaDisplay renders the balance for the X-Remaining-Quota header:
// the numeric balance for credentialed requests, IPLimitDisplay otherwise.
func (a Admission) QuotaDisplay() string {
	if !a.Metered {
		return IPLimitDisplay
	}
	return strconv.FormatInt(a.QuotaRemaining, 10)
}
