// Package quota provides QuotaStore implementations for credential
// balances: in-memory, Redis, and PostgreSQL.
package quota

import (
	"context"
	"sync"

	"github.com/beplab/examgen"
)

// Memory is an in-memory QuotaStore, primarily for tests and single-node
// deployments without durability requirements.
type Memory struct {
	mu       sync.Mutex
	balances map[string]int64
}

var _ examgen.QuotaStore = (*Memory)(nil)

// NewMemory creates an empty in-memory quota store.
func NewMemory() *Memory {
	return &Memory{balances: make(map[string]int64)}
}

// SetQuota provisions a balance for token, replacing any existing one.
func (s *Memory) SetQuota(token string, quota int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[token] = quota
}

// GetQuota returns the balance for token, or 0 if the token is unknown.
func (s *Memory) GetQuota(_ context.Context, token string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[token]
}

// DecrementQuota consumes one unit if the balance is positive.
func (s *Memory) DecrementQuota(_ context.Context, token string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bal, ok := s.balances[token]
	if !ok || bal <= 0 {
		return 0, examgen.ErrQuotaExhausted
	}
	bal--
	s.balances[token] = bal
	return bal, nil
}

// Ping always succeeds.
func (s *Memory) Ping(context.Context) error { return nil }
