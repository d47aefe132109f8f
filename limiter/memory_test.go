package limiter_test

import (
	"context"
	"testing"
	"time"

	eg "github.com/beplab/examgen"
	"github.com/beplab/examgen/limiter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is an adjustable time source.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)}
}

func TestMinuteWindow(t *testing.T) {
	clock := newFakeClock()
	lim := limiter.New(
		[]eg.Rule{{Count: 2, Per: time.Minute}},
		limiter.WithClock(clock.Now),
	)
	defer lim.Stop()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		v, err := lim.Allow(ctx, "a")
		require.NoError(t, err)
		assert.True(t, v.Allowed)
		clock.Advance(time.Second)
	}

	v, err := lim.Allow(ctx, "a")
	require.NoError(t, err)
	assert.False(t, v.Allowed)
	assert.Equal(t, "2 per 1 minute", v.Detail)
	assert.Greater(t, v.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, v.RetryAfter, time.Minute)

	// Once the oldest admission leaves the window, the key admits again.
	clock.Advance(v.RetryAfter + time.Millisecond)
	v, err = lim.Allow(ctx, "a")
	require.NoError(t, err)
	assert.True(t, v.Allowed)
}

func TestDayWindow(t *testing.T) {
	clock := newFakeClock()
	lim := limiter.New(
		[]eg.Rule{
			{Count: 2, Per: time.Minute},
			{Count: 5, Per: 24 * time.Hour},
		},
		limiter.WithClock(clock.Now),
	)
	defer lim.Stop()
	ctx := context.Background()

	// Five admissions spread out enough to clear the minute window.
	for i := 0; i < 5; i++ {
		v, err := lim.Allow(ctx, "a")
		require.NoError(t, err)
		require.True(t, v.Allowed, "admission %d", i)
		clock.Advance(2 * time.Minute)
	}

	v, err := lim.Allow(ctx, "a")
	require.NoError(t, err)
	assert.False(t, v.Allowed)
	assert.Equal(t, "5 per 1 day", v.Detail)

	// The day window clears once the oldest admission ages out.
	clock.Advance(24 * time.Hour)
	v, err = lim.Allow(ctx, "a")
	require.NoError(t, err)
	assert.True(t, v.Allowed)
}

func TestDeniedAttemptNotCounted(t *testing.T) {
	clock := newFakeClock()
	lim := limiter.New(
		[]eg.Rule{{Count: 1, Per: time.Minute}},
		limiter.WithClock(clock.Now),
	)
	defer lim.Stop()
	ctx := context.Background()

	v, _ := lim.Allow(ctx, "a")
	require.True(t, v.Allowed)

	// Hammering a denied key must not extend its window.
	for i := 0; i < 10; i++ {
		v, _ = lim.Allow(ctx, "a")
		require.False(t, v.Allowed)
		clock.Advance(5 * time.Second)
	}

	clock.Advance(11 * time.Second) // 61s since the admitted request
	v, _ = lim.Allow(ctx, "a")
	assert.True(t, v.Allowed)
}

func TestKeysIndependent(t *testing.T) {
	clock := newFakeClock()
	lim := limiter.New(
		[]eg.Rule{{Count: 1, Per: time.Minute}},
		limiter.WithClock(clock.Now),
	)
	defer lim.Stop()
	ctx := context.Background()

	v, _ := lim.Allow(ctx, "a")
	require.True(t, v.Allowed)
	v, _ = lim.Allow(ctx, "a")
	require.False(t, v.Allowed)

	v, _ = lim.Allow(ctx, "b")
	assert.True(t, v.Allowed)
}

func TestRuleString(t *testing.T) {
	tests := []struct {
		rule eg.Rule
		want string
	}{
		{eg.Rule{Count: 2, Per: time.Minute}, "2 per 1 minute"},
		{eg.Rule{Count: 50, Per: 24 * time.Hour}, "50 per 1 day"},
		{eg.Rule{Count: 1, Per: 2 * time.Hour}, "1 per 2 hours"},
		{eg.Rule{Count: 10, Per: 5 * time.Minute}, "10 per 5 minutes"},
		{eg.Rule{Count: 3, Per: 90 * time.Second}, "3 per 90 seconds"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.rule.String())
	}
}
