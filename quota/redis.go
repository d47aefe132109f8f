package quota

import (
	"context"

	goredis "github.com/redis/go-redis/v9"

	"github.com/beplab/examgen"
)

// Redis is a Redis-backed QuotaStore. Balances live in plain integer keys;
// the conditional decrement runs as a Lua script so the exhaustion check
// and the decrement are a single atomic step.
type Redis struct {
	client    goredis.Cmdable
	keyPrefix string
}

var _ examgen.QuotaStore = (*Redis)(nil)

// RedisOption configures Redis.
type RedisOption func(*Redis)

// WithKeyPrefix sets the Redis key prefix (default "examgen:quota:").
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *Redis) { s.keyPrefix = prefix }
}

// NewRedis creates a Redis-backed QuotaStore.
// The client must be a connected *goredis.Client or *goredis.ClusterClient.
func NewRedis(client goredis.Cmdable, opts ...RedisOption) *Redis {
	s := &Redis{
		client:    client,
		keyPrefix: "examgen:quota:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Redis) tokenKey(token string) string {
	return s.keyPrefix + token
}

// decrScript decrements the balance only while it is positive.
// KEYS[1] = token key
// Returns the post-decrement balance, or -1 when nothing was consumed.
var decrScript = goredis.NewScript(`
local bal = tonumber(redis.call("GET", KEYS[1]) or "0")
if bal <= 0 then
    return -1
end
return redis.call("DECRBY", KEYS[1], 1)
`)

// GetQuota returns the balance for token. Unknown tokens and store errors
// both read as 0.
func (s *Redis) GetQuota(ctx context.Context, token string) int64 {
	bal, err := s.client.Get(ctx, s.tokenKey(token)).Int64()
	if err != nil {
		return 0
	}
	return bal
}

// DecrementQuota atomically consumes one unit if the balance is positive.
func (s *Redis) DecrementQuota(ctx context.Context, token string) (int64, error) {
	result, err := decrScript.Run(ctx, s.client, []string{s.tokenKey(token)}).Int64()
	if err != nil {
		return 0, err
	}
	if result < 0 {
		return 0, examgen.ErrQuotaExhausted
	}
	return result, nil
}

// Ping reports store reachability.
func (s *Redis) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// SetQuota provisions a balance for token (used by provisioning tooling
// and tests).
func (s *Redis) SetQuota(ctx context.Context, token string, quota int64) error {
	return s.client.Set(ctx, s.tokenKey(token), quota, 0).Err()
}
