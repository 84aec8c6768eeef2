package transaction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// ErrRetriesExhausted wraps the last conflict once WithRetry gives up
var ErrRetriesExhausted = errors.New("transaction retries exhausted")

// RetryPolicy bounds WithRetry. Attempt n waits Backoff * 2^(n-1) before
// running again.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// DefaultRetryPolicy makes three attempts starting at a 50ms backoff
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, Backoff: 50 * time.Millisecond}
}

// WithRetry is WithTransaction that runs fn again in a fresh transaction
// while the store reports a transient conflict.
func (m *Manager) WithRetry(ctx context.Context, fn func(tx *sql.Tx) error) error {
	attempts := max(m.retry.Attempts, 1)
	wait := m.retry.Backoff

	var err error
	for attempt := 1; ; attempt++ {
		err = m.WithTransaction(ctx, fn)
		if !IsRetryableError(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		m.logger.Warn("retrying conflicting transaction",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return fmt.Errorf("transaction retry cancelled: %w", ctx.Err())
		case <-time.After(wait):
		}
		wait *= 2
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempts, err)
}

// PostgreSQL SQLSTATE codes worth another attempt
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// IsRetryableError reports whether err is a PostgreSQL deadlock or
// serialization failure, or a busy or locked SQLite database.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgSerializationFailure || pqErr.Code == pgDeadlockDetected
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked
	}
	return false
}
