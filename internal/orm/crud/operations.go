// Package crud is the storage layer: typed create, read, update and delete
// by primary key, executed inside a caller-owned transaction.
package crud

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/careboard/careboard/internal/orm/dialect"
	"github.com/careboard/careboard/internal/orm/schema"
)

// Querier is satisfied by *sql.DB and *sql.Tx
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// KeyPart is one primary-key field and its value
type KeyPart struct {
	Field string
	Value int64
}

// Key is a primary-key tuple in key-field order
type Key []KeyPart

// Values returns the key values in order
func (k Key) Values() []int64 {
	values := make([]int64, len(k))
	for i, p := range k {
		values[i] = p.Value
	}
	return values
}

// Map returns the key as a field-name to value mapping
func (k Key) Map() map[string]int64 {
	m := make(map[string]int64, len(k))
	for _, p := range k {
		m[p.Field] = p.Value
	}
	return m
}

// Segments returns the key values as path segments
func (k Key) Segments() []string {
	segments := make([]string, len(k))
	for i, p := range k {
		segments[i] = strconv.FormatInt(p.Value, 10)
	}
	return segments
}

// String renders the key as slash-separated values, e.g. "3/1"
func (k Key) String() string {
	return strings.Join(k.Segments(), "/")
}

// Store executes typed CRUD statements in a given SQL dialect.
type Store struct {
	dialect dialect.Dialect
}

// NewStore creates a new Store
func NewStore(d dialect.Dialect) *Store {
	return &Store{dialect: d}
}

// Dialect returns the SQL dialect of the store
func (s *Store) Dialect() dialect.Dialect {
	return s.dialect
}

// KeyOf extracts the primary-key tuple of a record
func (s *Store) KeyOf(m schema.Model, rec schema.Record) (Key, error) {
	table := m.Table()
	key := make(Key, len(table.PrimaryKey))
	for i, field := range table.PrimaryKey {
		v, err := rec.Get(field)
		if err != nil {
			return nil, err
		}
		id, ok := v.(int64)
		if !ok {
			return nil, fmt.Errorf("%s.%s: key value is not set", table.Name, field)
		}
		key[i] = KeyPart{Field: field, Value: id}
	}
	return key, nil
}

// columnList quotes and joins column names
func (s *Store) columnList(columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = s.dialect.QuoteIdent(c)
	}
	return strings.Join(quoted, ", ")
}

// whereKey renders "a = $n AND b = $n+1" starting at placeholder start
func (s *Store) whereKey(table *schema.Table, key Key, start int) (string, []any, error) {
	if len(key) != len(table.PrimaryKey) {
		return "", nil, fmt.Errorf("%s: key has %d parts, table key has %d", table.Name, len(key), len(table.PrimaryKey))
	}

	clauses := make([]string, len(key))
	args := make([]any, len(key))
	for i, part := range key {
		if part.Field != table.PrimaryKey[i] {
			return "", nil, fmt.Errorf("%s: key part %d is %s, expected %s", table.Name, i, part.Field, table.PrimaryKey[i])
		}
		clauses[i] = fmt.Sprintf("%s = %s", s.dialect.QuoteIdent(part.Field), s.dialect.Placeholder(start+i))
		args[i] = part.Value
	}
	return strings.Join(clauses, " AND "), args, nil
}
