// Package limiter provides an in-process sliding-window rate limiter.
//
// Counters are process-local: in a multi-process deployment each process
// enforces its own independent windows.
package limiter

import (
	"context"
	"sync"
	"time"

	"github.com/beplab/examgen"
)

// Memory is an in-memory sliding-window RateLimiter. Each key holds the
// timestamps of its admitted requests within the largest configured
// window; every rule is enforced concurrently.
type Memory struct {
	rules     []examgen.Rule
	maxWindow time.Duration

	mu      sync.Mutex
	entries map[string][]time.Time

	now  func() time.Time
	stop chan struct{}
	once sync.Once
}

var _ examgen.RateLimiter = (*Memory)(nil)

// Option configures Memory.
type Option func(*Memory)

// WithClock sets the time source (for tests).
func WithClock(now func() time.Time) Option {
	return func(m *Memory) { m.now = now }
}

// New creates a Memory limiter enforcing the given rules. At least one
// rule is required; rules with non-positive counts or windows are ignored.
func New(rules []examgen.Rule, opts ...Option) *Memory {
	m := &Memory{
		entries: make(map[string][]time.Time),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	for _, r := range rules {
		if r.Count <= 0 || r.Per <= 0 {
			continue
		}
		m.rules = append(m.rules, r)
		if r.Per > m.maxWindow {
			m.maxWindow = r.Per
		}
	}
	for _, opt := range opts {
		opt(m)
	}

	go m.sweep()
	return m
}

// Allow records an admission attempt for key. The attempt is counted only
// when every rule admits it.
func (m *Memory) Allow(_ context.Context, key string) (examgen.Verdict, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	stamps := m.prune(key, now)

	for _, rule := range m.rules {
		cutoff := now.Add(-rule.Per)
		count := 0
		oldest := time.Time{}
		for _, ts := range stamps {
			if ts.After(cutoff) {
				if count == 0 {
					oldest = ts
				}
				count++
			}
		}
		if count >= rule.Count {
			return examgen.Verdict{
				Detail:     rule.String(),
				RetryAfter: oldest.Add(rule.Per).Sub(now),
			}, nil
		}
	}

	m.entries[key] = append(stamps, now)
	return examgen.Verdict{Allowed: true}, nil
}

// prune drops timestamps older than the largest window. Caller holds mu.
func (m *Memory) prune(key string, now time.Time) []time.Time {
	stamps := m.entries[key]
	cutoff := now.Add(-m.maxWindow)

	i := 0
	for i < len(stamps) && !stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		stamps = append([]time.Time(nil), stamps[i:]...)
		if len(stamps) == 0 {
			delete(m.entries, key)
		} else {
			m.entries[key] = stamps
		}
	}
	return stamps
}

// sweep periodically discards keys whose entries have all expired, so
// one-off callers do not accumulate forever.
func (m *Memory) sweep() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			now := m.now()
			m.mu.Lock()
			for key := range m.entries {
				m.prune(key, now)
			}
			m.mu.Unlock()
		}
	}
}

// Stop terminates the background sweep. The limiter remains usable.
func (m *Memory) Stop() {
	m.once.Do(func() { close(m.stop) })
}
