// Package transaction runs units of work inside a database transaction.
package transaction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Manager opens transactions on one database handle
type Manager struct {
	db     *sql.DB
	opts   *sql.TxOptions
	retry  RetryPolicy
	logger *zap.Logger
}

// Option configures a Manager
type Option func(*Manager)

// WithIsolation sets the isolation level of every transaction
func WithIsolation(level sql.IsolationLevel) Option {
	return func(m *Manager) { m.opts = &sql.TxOptions{Isolation: level} }
}

// WithLogger sets the logger that reports failed rollbacks and retries
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithRetryPolicy replaces DefaultRetryPolicy for WithRetry
func WithRetryPolicy(p RetryPolicy) Option {
	return func(m *Manager) { m.retry = p }
}

// NewManager returns a Manager for db
func NewManager(db *sql.DB, opts ...Option) *Manager {
	m := &Manager{db: db, retry: DefaultRetryPolicy(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DB returns the managed database handle
func (m *Manager) DB() *sql.DB {
	return m.db
}

// WithTransaction runs fn in a transaction. The transaction commits when fn
// returns nil and rolls back when fn returns an error or panics; a panic is
// re-raised after the rollback.
func (m *Manager) WithTransaction(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := m.db.BeginTx(ctx, m.opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	done := false
	defer func() {
		if done {
			return
		}
		p := recover()
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			m.logger.Error("rollback failed", zap.Error(rbErr), zap.Bool("panic", p != nil))
			if p == nil {
				err = fmt.Errorf("%w (rollback: %v)", err, rbErr)
			}
		}
		if p != nil {
			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	done = true
	return nil
}
