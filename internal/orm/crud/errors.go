package crud

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Common storage error types
var (
	// ErrNotFound is returned when no record matches a key
	ErrNotFound = errors.New("record not found")

	// ErrConstraintViolation is matched by every constraint error below
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrUniqueViolation is returned when a unique or primary key constraint is violated
	ErrUniqueViolation = fmt.Errorf("unique %w", ErrConstraintViolation)

	// ErrForeignKeyViolation is returned when a foreign key constraint is violated
	ErrForeignKeyViolation = fmt.Errorf("foreign key %w", ErrConstraintViolation)

	// ErrCheckViolation is returned when a check constraint is violated
	ErrCheckViolation = fmt.Errorf("check %w", ErrConstraintViolation)

	// ErrNotNullViolation is returned when a NOT NULL constraint is violated
	ErrNotNullViolation = fmt.Errorf("not null %w", ErrConstraintViolation)

	// ErrInvalidValue is returned when a value does not fit its column:
	// too long, out of range, or otherwise rejected as data
	ErrInvalidValue = errors.New("invalid value for column")
)

// PostgreSQL SQLSTATE codes of integrity constraint violations
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgNotNullViolation    = "23502"

	// class 22 covers data exceptions such as 22001 (string too long)
	// and 22003 (numeric out of range)
	pgDataExceptionClass = "22"
)

// ConvertDBError converts driver errors (pgx, lib/pq, go-sqlite3) into
// storage errors. Unknown errors are returned unchanged.
func ConvertDBError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		detail := pgErr.Detail
		if pgErr.Code == pgNotNullViolation {
			detail = "column " + pgErr.ColumnName
		}
		if converted := fromSQLState(pgErr.Code, detail); converted != nil {
			return converted
		}
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		detail := pqErr.Detail
		if string(pqErr.Code) == pgNotNullViolation {
			detail = "column " + pqErr.Column
		}
		if converted := fromSQLState(string(pqErr.Code), detail); converted != nil {
			return converted
		}
		return err
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.Code == sqlite3.ErrConstraint {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %s", ErrUniqueViolation, liteErr.Error())
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%w: %s", ErrForeignKeyViolation, liteErr.Error())
		case sqlite3.ErrConstraintNotNull:
			return fmt.Errorf("%w: %s", ErrNotNullViolation, liteErr.Error())
		case sqlite3.ErrConstraintCheck:
			return fmt.Errorf("%w: %s", ErrCheckViolation, liteErr.Error())
		default:
			return fmt.Errorf("%w: %s", ErrConstraintViolation, liteErr.Error())
		}
	}

	return err
}

func fromSQLState(code, detail string) error {
	switch code {
	case pgUniqueViolation:
		return fmt.Errorf("%w: %s", ErrUniqueViolation, detail)
	case pgForeignKeyViolation:
		return fmt.Errorf("%w: %s", ErrForeignKeyViolation, detail)
	case pgCheckViolation:
		return fmt.Errorf("%w: %s", ErrCheckViolation, detail)
	case pgNotNullViolation:
		return fmt.Errorf("%w: %s", ErrNotNullViolation, detail)
	}
	if strings.HasPrefix(code, pgDataExceptionClass) {
		return fmt.Errorf("%w: sqlstate %s", ErrInvalidValue, code)
	}
	return nil
}

// IsNotFound returns true if the error is ErrNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConstraintViolation returns true for any constraint error
func IsConstraintViolation(err error) bool {
	return errors.Is(err, ErrConstraintViolation)
}

// IsUniqueViolation returns true if the error is ErrUniqueViolation
func IsUniqueViolation(err error) bool {
	return errors.Is(err, ErrUniqueViolation)
}

// IsForeignKeyViolation returns true if the error is ErrForeignKeyViolation
func IsForeignKeyViolation(err error) bool {
	return errors.Is(err, ErrForeignKeyViolation)
}

// IsInvalidValue returns true if the error is ErrInvalidValue
func IsInvalidValue(err error) bool {
	return errors.Is(err, ErrInvalidValue)
}
