// Package migrate creates and tracks the database schema.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/careboard/careboard/internal/orm/dialect"
)

// Migration is one versioned schema change
type Migration struct {
	Version int64
	Name    string
	Up      []string
	Down    []string

	// Set on migrations read back from the history table
	Applied   bool
	AppliedAt time.Time
}

const historyTable = "schema_migrations"

// history is the table of applied migrations
type history struct {
	db *sql.DB
	d  dialect.Dialect
}

func (h history) ensure(ctx context.Context) error {
	ddl := "CREATE TABLE IF NOT EXISTS " + historyTable + " (" +
		"version BIGINT PRIMARY KEY, " +
		"name VARCHAR(255) NOT NULL, " +
		"applied_at " + h.d.TimestampType() + " NOT NULL DEFAULT CURRENT_TIMESTAMP, " +
		"up_sql TEXT)"
	if _, err := h.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create %s: %w", historyTable, err)
	}
	return nil
}

// applied lists applied migrations, oldest first
func (h history) applied(ctx context.Context) ([]*Migration, error) {
	rows, err := h.db.QueryContext(ctx,
		"SELECT version, name, applied_at FROM "+historyTable+" ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", historyTable, err)
	}
	defer rows.Close()

	var out []*Migration
	for rows.Next() {
		m := &Migration{Applied: true}
		if err := rows.Scan(&m.Version, &m.Name, &m.AppliedAt); err != nil {
			return nil, fmt.Errorf("read %s: %w", historyTable, err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (h history) add(ctx context.Context, tx *sql.Tx, m *Migration) error {
	stmt := fmt.Sprintf("INSERT INTO %s (version, name, up_sql) VALUES (%s, %s, %s)",
		historyTable, h.d.Placeholder(1), h.d.Placeholder(2), h.d.Placeholder(3))
	if _, err := tx.ExecContext(ctx, stmt, m.Version, m.Name, strings.Join(m.Up, ";\n")); err != nil {
		return fmt.Errorf("record migration %d: %w", m.Version, err)
	}
	return nil
}

func (h history) remove(ctx context.Context, tx *sql.Tx, version int64) error {
	stmt := fmt.Sprintf("DELETE FROM %s WHERE version = %s", historyTable, h.d.Placeholder(1))
	res, err := tx.ExecContext(ctx, stmt, version)
	if err != nil {
		return fmt.Errorf("remove migration %d: %w", version, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("migration %d is not recorded", version)
	}
	return nil
}

// pending returns the migrations of all whose version is not in applied
func pending(all, applied []*Migration) []*Migration {
	done := make(map[int64]struct{}, len(applied))
	for _, m := range applied {
		done[m.Version] = struct{}{}
	}

	var out []*Migration
	for _, m := range all {
		if _, ok := done[m.Version]; !ok {
			out = append(out, m)
		}
	}
	return out
}
