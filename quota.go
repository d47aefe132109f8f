package examgen

import "context"

// QuotaStore is the persistence adapter for credential balances.
//
// A credential is an opaque token string mapped to an integer number of
// remaining uses. Tokens are provisioned out of band; this service only
// reads and consumes balances.
type QuotaStore interface {
	// GetQuota returns the remaining balance for token. Unknown tokens
	// and unreachable stores both read as 0; the call never fails.
	GetQuota(ctx context.Context, token string) int64

	// DecrementQuota atomically consumes one unit from token's balance
	// and returns the post-decrement remainder. It returns
	// ErrQuotaExhausted, consuming nothing, when the balance is already
	// at or below zero. The check and the decrement are a single
	// read-modify-write: under concurrent callers no decrement is lost
	// and a fully consumed balance admits no further request.
	DecrementQuota(ctx context.Context, token string) (int64, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}

// Unconfigured returns the QuotaStore used when no backing store is
// configured. Every balance reads as zero and Ping fails with
// ErrStoreUnavailable, so credentialed requests are rejected as an
// operational error while address-based limiting keeps working.
func Unconfigured() QuotaStore {
	return unconfiguredStore{}
}

type unconfiguredStore struct{}

func (unconfiguredStore) GetQuota(context.Context, string) int64 { return 0 }

func (unconfiguredStore) DecrementQuota(context.Context, string) (int64, error) {
	return 0, ErrStoreUnavailable
}

func (unconfiguredStore) Ping(context.Context) error { return ErrStoreUnavailable }
