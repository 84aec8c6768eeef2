// Package dialect holds the SQL differences between the supported stores.
package dialect

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/careboard/careboard/internal/codec"
	"github.com/careboard/careboard/internal/orm/schema"
)

// Dialect renders store-specific SQL fragments.
type Dialect interface {
	// Name is the dialect name used in configuration and logs
	Name() string

	// DriverName is the database/sql driver to open
	DriverName() string

	// Placeholder returns the n-th (1-based) bind parameter
	Placeholder(n int) string

	// QuoteIdent quotes a table or column name
	QuoteIdent(name string) string

	// ColumnType returns the column type for a column definition
	ColumnType(col schema.ColumnDef, identity bool) string

	// SyncIdentity returns a statement that moves the identity sequence of
	// table past its current maximum, or "" when the store tracks it itself.
	SyncIdentity(table, column string) string

	// TimestampType is used for bookkeeping columns
	TimestampType() string
}

// Postgres is the PostgreSQL dialect (pgx driver)
type Postgres struct{}

// SQLite is the SQLite dialect (go-sqlite3 driver)
type SQLite struct{}

// ForName returns the dialect registered under name
func ForName(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "postgres", "postgresql", "pgx":
		return Postgres{}, nil
	case "sqlite", "sqlite3":
		return SQLite{}, nil
	default:
		return nil, fmt.Errorf("unsupported dialect: %s", name)
	}
}

func (Postgres) Name() string       { return "postgres" }
func (Postgres) DriverName() string { return "pgx" }

func (Postgres) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func (Postgres) QuoteIdent(name string) string { return pq.QuoteIdentifier(name) }

func (Postgres) ColumnType(col schema.ColumnDef, identity bool) string {
	if identity {
		return "SERIAL"
	}
	return commonType(col)
}

func (d Postgres) SyncIdentity(table, column string) string {
	return fmt.Sprintf(
		"SELECT setval(pg_get_serial_sequence(%s, %s), COALESCE((SELECT MAX(%s) FROM %s), 0) + 1, false)",
		pq.QuoteLiteral(d.QuoteIdent(table)),
		pq.QuoteLiteral(column),
		d.QuoteIdent(column),
		d.QuoteIdent(table),
	)
}

func (Postgres) TimestampType() string { return "TIMESTAMPTZ" }

func (SQLite) Name() string       { return "sqlite" }
func (SQLite) DriverName() string { return "sqlite3" }

func (SQLite) Placeholder(int) string { return "?" }

func (SQLite) QuoteIdent(name string) string { return pq.QuoteIdentifier(name) }

// ColumnType keeps single-column integer keys declared as INTEGER so SQLite
// aliases them to the rowid and assigns them on insert.
func (SQLite) ColumnType(col schema.ColumnDef, identity bool) string {
	if identity {
		return "INTEGER"
	}
	return commonType(col)
}

func (SQLite) SyncIdentity(string, string) string { return "" }

func (SQLite) TimestampType() string { return "TIMESTAMP" }

func commonType(col schema.ColumnDef) string {
	switch col.Parser {
	case codec.ParserInt:
		return "INTEGER"
	case codec.ParserDecimal:
		if col.Precision > 0 {
			return fmt.Sprintf("NUMERIC(%d,%d)", col.Precision, col.Scale)
		}
		return "NUMERIC"
	case codec.ParserDate:
		return "DATE"
	case codec.ParserTime:
		return "TIME"
	default:
		if col.Length > 0 {
			return fmt.Sprintf("VARCHAR(%d)", col.Length)
		}
		return "TEXT"
	}
}
