package quota

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/beplab/examgen"
)

// Postgres is a PostgreSQL-backed QuotaStore. The conditional decrement is
// a single row-level atomic UPDATE, so concurrent requests against one
// token never lose a decrement or consume past zero.
type Postgres struct {
	pool  *pgxpool.Pool
	table string
}

var _ examgen.QuotaStore = (*Postgres)(nil)

// PostgresOption configures Postgres.
type PostgresOption func(*Postgres)

// WithTable sets the table name (default "exam_quotas").
func WithTable(table string) PostgresOption {
	return func(s *Postgres) { s.table = table }
}

// NewPostgres creates a PostgreSQL-backed QuotaStore.
func NewPostgres(pool *pgxpool.Pool, opts ...PostgresOption) *Postgres {
	s := &Postgres{
		pool:  pool,
		table: "exam_quotas",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureSchema creates the quota table if it does not exist.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	q := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			token TEXT PRIMARY KEY,
			quota BIGINT NOT NULL DEFAULT 0
		);
	`, s.table)
	if _, err := s.pool.Exec(ctx, q); err != nil {
		return fmt.Errorf("examgen/quota: ensure schema: %w", err)
	}
	return nil
}

// GetQuota returns the balance for token. Unknown tokens and store errors
// both read as 0.
func (s *Postgres) GetQuota(ctx context.Context, token string) int64 {
	var quota int64
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT quota FROM %s WHERE token = $1`, s.table),
		token,
	).Scan(&quota)
	if err != nil {
		return 0
	}
	return quota
}

// DecrementQuota atomically consumes one unit if the balance is positive.
func (s *Postgres) DecrementQuota(ctx context.Context, token string) (int64, error) {
	var remaining int64
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf(`UPDATE %s SET quota = quota - 1 WHERE token = $1 AND quota > 0 RETURNING quota`, s.table),
		token,
	).Scan(&remaining)

	if errors.Is(err, pgx.ErrNoRows) {
		// Either the token does not exist or its balance is gone; the
		// two are indistinguishable on purpose.
		return 0, examgen.ErrQuotaExhausted
	}
	if err != nil {
		return 0, fmt.Errorf("examgen/quota: decrement: %w", err)
	}
	return remaining, nil
}

// Ping reports store reachability.
func (s *Postgres) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// SetQuota provisions a balance for token (used by provisioning tooling
// and tests).
func (s *Postgres) SetQuota(ctx context.Context, token string, quota int64) error {
	_, err := s.pool.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (token, quota) VALUES ($1, $2)
			ON CONFLICT (token) DO UPDATE SET quota = EXCLUDED.quota`, s.table),
		token, quota,
	)
	if err != nil {
		return fmt.Errorf("examgen/quota: set quota: %w", err)
	}
	return nil
}
