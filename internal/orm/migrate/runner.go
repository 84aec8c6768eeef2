package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/careboard/careboard/internal/orm/dialect"
	"github.com/careboard/careboard/internal/orm/transaction"
)

// ErrNothingToRollback is returned by Down when no migration is applied
var ErrNothingToRollback = errors.New("no migrations to rollback")

// Runner applies migrations, each in its own transaction
type Runner struct {
	tx      *transaction.Manager
	history history
	logger  *zap.Logger
}

// NewRunner creates a new migration runner
func NewRunner(db *sql.DB, d dialect.Dialect, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		tx:      transaction.NewManager(db, transaction.WithLogger(logger)),
		history: history{db: db, d: d},
		logger:  logger,
	}
}

// Up applies every pending migration in order and returns how many ran
func (r *Runner) Up(ctx context.Context, migrations []*Migration) (int, error) {
	applied, err := r.load(ctx)
	if err != nil {
		return 0, err
	}

	todo := pending(migrations, applied)
	if len(todo) == 0 {
		r.logger.Debug("no pending migrations")
		return 0, nil
	}

	for _, m := range todo {
		start := time.Now()
		if err := r.apply(ctx, m); err != nil {
			return 0, fmt.Errorf("migration %s failed: %w", m.Name, err)
		}
		r.logger.Info("applied migration",
			zap.Int64("version", m.Version),
			zap.String("name", m.Name),
			zap.Duration("duration", time.Since(start)),
		)
	}

	return len(todo), nil
}

// Down reverts the most recently applied migration
func (r *Runner) Down(ctx context.Context, migrations []*Migration) (*Migration, error) {
	applied, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(applied) == 0 {
		return nil, ErrNothingToRollback
	}
	last := applied[len(applied)-1]

	var target *Migration
	for _, m := range migrations {
		if m.Version == last.Version {
			target = m
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("migration %d (%s) is not known to this build", last.Version, last.Name)
	}
	if len(target.Down) == 0 {
		return nil, fmt.Errorf("migration %s has no down statements", target.Name)
	}

	err = r.tx.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, stmt := range target.Down {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to execute rollback SQL: %w", err)
			}
		}
		return r.history.remove(ctx, tx, target.Version)
	})
	if err != nil {
		return nil, fmt.Errorf("rollback of %s failed: %w", target.Name, err)
	}

	r.logger.Info("rolled back migration", zap.Int64("version", target.Version), zap.String("name", target.Name))
	return target, nil
}

// load creates the history table when missing and reads it
func (r *Runner) load(ctx context.Context) ([]*Migration, error) {
	if err := r.history.ensure(ctx); err != nil {
		return nil, err
	}
	return r.history.applied(ctx)
}

// apply runs a single migration and records it in the same transaction
func (r *Runner) apply(ctx context.Context, m *Migration) error {
	if len(m.Up) == 0 {
		return fmt.Errorf("migration has no up SQL")
	}

	return r.tx.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, stmt := range m.Up {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to execute migration SQL: %w", err)
			}
		}
		return r.history.add(ctx, tx, m)
	})
}

// Status returns the current migration status
func (r *Runner) Status(ctx context.Context, all []*Migration) (*MigrationStatus, error) {
	applied, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	var lastApplied *Migration
	if len(applied) > 0 {
		lastApplied = applied[len(applied)-1]
	}

	return &MigrationStatus{
		Total:       len(all),
		Applied:     applied,
		Pending:     pending(all, applied),
		LastApplied: lastApplied,
	}, nil
}

// MigrationStatus represents the current state of migrations
type MigrationStatus struct {
	Total       int
	Applied     []*Migration
	Pending     []*Migration
	LastApplied *Migration
}

// Summary returns a human-readable summary
func (s *MigrationStatus) Summary() string {
	return fmt.Sprintf("Total: %d migrations (%d applied, %d pending)",
		s.Total,
		len(s.Applied),
		len(s.Pending))
}
