package examgen_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	eg "github.com/beplab/examgen"
	"github.com/beplab/examgen/limiter"
	"github.com/beplab/examgen/quota"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController(t *testing.T, rules []eg.Rule, store eg.QuotaStore) *eg.AdmissionController {
	t.Helper()
	lim := limiter.New(rules)
	t.Cleanup(lim.Stop)

	c, err := eg.NewAdmissionController(lim, store)
	require.NoError(t, err)
	return c
}

func defaultRules() []eg.Rule {
	return []eg.Rule{
		{Count: 2, Per: time.Minute},
		{Count: 50, Per: 24 * time.Hour},
	}
}

func TestAnonymous_AllowedWithIPDisplay(t *testing.T) {
	c := newTestController(t, defaultRules(), quota.NewMemory())

	adm, err := c.Admit(context.Background(), eg.AdmissionRequest{RemoteAddr: "198.51.100.1"})
	require.NoError(t, err)
	assert.False(t, adm.Metered)
	assert.Equal(t, eg.KeyAddress, adm.Key.Kind)
	assert.Equal(t, "IP Limit", adm.QuotaDisplay())
}

func TestAnonymous_ThirdRequestRateLimited(t *testing.T) {
	c := newTestController(t, defaultRules(), quota.NewMemory())
	ctx := context.Background()
	req := eg.AdmissionRequest{RemoteAddr: "198.51.100.2"}

	for i := 0; i < 2; i++ {
		_, err := c.Admit(ctx, req)
		require.NoError(t, err)
	}

	_, err := c.Admit(ctx, req)
	require.ErrorIs(t, err, eg.ErrRateLimited)

	var rle *eg.RateLimitError
	require.ErrorAs(t, err, &rle)
	assert.Equal(t, "2 per 1 minute", rle.Detail)
	assert.Greater(t, rle.RetryAfter, time.Duration(0))
}

func TestToken_ConsumesQuota(t *testing.T) {
	qs := quota.NewMemory()
	qs.SetQuota("ABC", 3)
	c := newTestController(t, defaultRules(), qs)
	ctx := context.Background()

	adm, err := c.Admit(ctx, eg.AdmissionRequest{Token: "ABC", RemoteAddr: "198.51.100.3"})
	require.NoError(t, err)
	assert.True(t, adm.Metered)
	assert.Equal(t, eg.KeyUnmetered, adm.Key.Kind)
	assert.Equal(t, int64(2), adm.QuotaRemaining)
	assert.Equal(t, "2", adm.QuotaDisplay())

	adm, err = c.Admit(ctx, eg.AdmissionRequest{Token: "ABC", RemoteAddr: "198.51.100.3"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), adm.QuotaRemaining)
}

func TestToken_WhitespaceTrimmed(t *testing.T) {
	qs := quota.NewMemory()
	qs.SetQuota("ABC", 1)
	c := newTestController(t, defaultRules(), qs)

	adm, err := c.Admit(context.Background(), eg.AdmissionRequest{Token: "  ABC \n", RemoteAddr: "198.51.100.4"})
	require.NoError(t, err)
	assert.True(t, adm.Metered)
	assert.Equal(t, int64(0), adm.QuotaRemaining)
}

func TestToken_BypassesAddressWindows(t *testing.T) {
	qs := quota.NewMemory()
	qs.SetQuota("ABC", 100)
	c := newTestController(t, defaultRules(), qs)
	ctx := context.Background()

	// Far more requests than the 2-per-minute window admits.
	for i := 0; i < 10; i++ {
		_, err := c.Admit(ctx, eg.AdmissionRequest{Token: "ABC", RemoteAddr: "198.51.100.5"})
		require.NoError(t, err)
	}
}

func TestUnknownToken_SharesAddressBucket(t *testing.T) {
	c := newTestController(t, defaultRules(), quota.NewMemory())
	ctx := context.Background()
	addr := "198.51.100.6"

	// Two genuinely anonymous admissions fill the minute window.
	for i := 0; i < 2; i++ {
		_, err := c.Admit(ctx, eg.AdmissionRequest{RemoteAddr: addr})
		require.NoError(t, err)
	}

	// An unknown token reads as balance zero and falls back to the same
	// address bucket, so it is rate limited before any quota check.
	_, err := c.Admit(ctx, eg.AdmissionRequest{Token: "never-provisioned", RemoteAddr: addr})
	assert.ErrorIs(t, err, eg.ErrRateLimited)
}

func TestExhaustedToken_QuotaExhausted(t *testing.T) {
	qs := quota.NewMemory()
	qs.SetQuota("SPENT", 0)
	c := newTestController(t, defaultRules(), qs)

	_, err := c.Admit(context.Background(), eg.AdmissionRequest{Token: "SPENT", RemoteAddr: "198.51.100.7"})
	assert.ErrorIs(t, err, eg.ErrQuotaExhausted)
}

func TestUnknownToken_IndistinguishableFromExhausted(t *testing.T) {
	qs := quota.NewMemory()
	qs.SetQuota("SPENT", 0)
	c := newTestController(t, defaultRules(), qs)
	ctx := context.Background()

	_, errSpent := c.Admit(ctx, eg.AdmissionRequest{Token: "SPENT", RemoteAddr: "198.51.100.8"})
	_, errUnknown := c.Admit(ctx, eg.AdmissionRequest{Token: "UNKNOWN", RemoteAddr: "198.51.100.9"})

	assert.ErrorIs(t, errSpent, eg.ErrQuotaExhausted)
	assert.ErrorIs(t, errUnknown, eg.ErrQuotaExhausted)
}

func TestNoStore_TokenIsServerError(t *testing.T) {
	c := newTestController(t, defaultRules(), nil)

	_, err := c.Admit(context.Background(), eg.AdmissionRequest{Token: "X", RemoteAddr: "198.51.100.10"})
	assert.ErrorIs(t, err, eg.ErrStoreUnavailable)
}

func TestNoStore_RateLimitCheckedFirst(t *testing.T) {
	c := newTestController(t, defaultRules(), nil)
	ctx := context.Background()
	addr := "198.51.100.11"

	for i := 0; i < 2; i++ {
		_, err := c.Admit(ctx, eg.AdmissionRequest{RemoteAddr: addr})
		require.NoError(t, err)
	}

	// The window is exhausted, so the credentialed request is rejected as
	// rate limited before the store failure is observed.
	_, err := c.Admit(ctx, eg.AdmissionRequest{Token: "X", RemoteAddr: addr})
	assert.ErrorIs(t, err, eg.ErrRateLimited)
}

func TestNoStore_AnonymousStillServed(t *testing.T) {
	c := newTestController(t, defaultRules(), nil)

	adm, err := c.Admit(context.Background(), eg.AdmissionRequest{RemoteAddr: "198.51.100.12"})
	require.NoError(t, err)
	assert.Equal(t, "IP Limit", adm.QuotaDisplay())
}

func TestConcurrentDecrement_NoOverAdmission(t *testing.T) {
	const quotaQ = 5
	const requests = 20

	qs := quota.NewMemory()
	qs.SetQuota("ABC", quotaQ)
	c := newTestController(t, defaultRules(), qs)

	var wg sync.WaitGroup
	admissions := make([]eg.Admission, requests)
	errs := make([]error, requests)

	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			admissions[idx], errs[idx] = c.Admit(context.Background(), eg.AdmissionRequest{
				Token:      "ABC",
				RemoteAddr: "198.51.100.13",
			})
		}(i)
	}
	wg.Wait()

	var remaining []int64
	rejected := 0
	for i, err := range errs {
		if err == nil {
			remaining = append(remaining, admissions[i].QuotaRemaining)
			continue
		}
		require.ErrorIs(t, err, eg.ErrQuotaExhausted)
		rejected++
	}

	require.Len(t, remaining, quotaQ)
	assert.Equal(t, requests-quotaQ, rejected)

	// Each admitted request observed a distinct post-decrement balance.
	sort.Slice(remaining, func(i, j int) bool { return remaining[i] < remaining[j] })
	for i, r := range remaining {
		assert.Equal(t, int64(i), r)
	}

	assert.Equal(t, int64(0), qs.GetQuota(context.Background(), "ABC"))
}

// failingDecrementStore simulates a store whose reads work but whose
// decrement writes fail with a transport error.
type failingDecrementStore struct {
	balance int64
}

func (s *failingDecrementStore) GetQuota(context.Context, string) int64 { return s.balance }

func (s *failingDecrementStore) DecrementQuota(context.Context, string) (int64, error) {
	return 0, errors.New("write timeout")
}

func (s *failingDecrementStore) Ping(context.Context) error { return nil }

func TestDecrementWriteFailure_Swallowed(t *testing.T) {
	c := newTestController(t, defaultRules(), &failingDecrementStore{balance: 5})

	adm, err := c.Admit(context.Background(), eg.AdmissionRequest{Token: "ABC", RemoteAddr: "198.51.100.14"})
	require.NoError(t, err)
	assert.True(t, adm.Metered)
	assert.Equal(t, int64(4), adm.QuotaRemaining)
}
