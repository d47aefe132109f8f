package examgen

import (
	"context"
	"fmt"
	"time"
)

// Rule describes one rolling admission window: at most Count admissions
// per Per, scoped per distinct key.
type Rule struct {
	Count int
	Per   time.Duration
}

// String renders the rule the way the HTTP layer reports it to clients,
// e.g. "2 per 1 minute" or "50 per 1 day".
func (r Rule) String() string {
	unit := "second"
	n := int64(r.Per / time.Second)
	switch {
	case r.Per%(24*time.Hour) == 0:
		unit, n = "day", int64(r.Per/(24*time.Hour))
	case r.Per%time.Hour == 0:
		unit, n = "hour", int64(r.Per/time.Hour)
	case r.Per%time.Minute == 0:
		unit, n = "minute", int64(r.Per/time.Minute)
	}
	if n != 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d per %d %s", r.Count, n, unit)
}

// Verdict is the outcome of a rate-limit check.
type Verdict struct {
	Allowed bool

	// Detail describes the exceeded window when Allowed is false.
	Detail string

	// RetryAfter is how long until the exceeded window next admits a
	// request. Zero when Allowed is true.
	RetryAfter time.Duration
}

// RateLimiter counts admissions per key against one or more rolling
// windows. Implementations must be safe for concurrent use.
type RateLimiter interface {
	// Allow records an admission attempt for key and reports whether it
	// fits within every configured window. A denied attempt is not
	// counted.
	Allow(ctx context.Context, key string) (Verdict, error)
}
