package crud

import (
	"context"
	"fmt"
	"strings"

	"github.com/careboard/careboard/internal/codec"
	"github.com/careboard/careboard/internal/orm/schema"
)

// Insert persists a new record. A null identity column is left to the store
// and the generated key is written back onto the record. Any other null key
// column is a not-null violation, whatever the dialect would do with it.
func (s *Store) Insert(ctx context.Context, q Querier, m schema.Model, rec schema.Record) (Key, error) {
	table := m.Table()

	columns := make([]string, 0, len(table.Columns))
	for _, col := range table.Columns {
		if table.IsKey(col.Name) {
			v, err := rec.Get(col.Name)
			if err != nil {
				return nil, err
			}
			if v == nil {
				if col.Name == table.Identity {
					continue
				}
				return nil, fmt.Errorf("failed to insert %s: %w: column %s", table.Name, ErrNotNullViolation, col.Name)
			}
		}
		columns = append(columns, col.Name)
	}

	args, err := columnArgs(rec, table, columns)
	if err != nil {
		return nil, err
	}

	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = s.dialect.Placeholder(i + 1)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		s.dialect.QuoteIdent(table.Name),
		s.columnList(columns),
		strings.Join(placeholders, ", "),
		s.columnList(table.PrimaryKey),
	)

	raw := make([]any, len(table.PrimaryKey))
	rawPtrs := make([]any, len(table.PrimaryKey))
	for i := range raw {
		rawPtrs[i] = &raw[i]
	}
	if err := q.QueryRowContext(ctx, query, args...).Scan(rawPtrs...); err != nil {
		return nil, fmt.Errorf("failed to insert %s: %w", table.Name, ConvertDBError(err))
	}

	for i, field := range table.PrimaryKey {
		v, err := codec.FromDB(codec.ParserInt, raw[i])
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", table.Name, field, err)
		}
		if err := rec.Load(field, v); err != nil {
			return nil, err
		}
	}

	return s.KeyOf(m, rec)
}

// SyncIdentity moves the identity sequence of the model's table past the
// largest stored key. Needed after inserting explicit identity values.
func (s *Store) SyncIdentity(ctx context.Context, q Querier, m schema.Model) error {
	table := m.Table()
	if table.Identity == "" {
		return nil
	}
	stmt := s.dialect.SyncIdentity(table.Name, table.Identity)
	if stmt == "" {
		return nil
	}
	if _, err := q.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to sync identity of %s: %w", table.Name, ConvertDBError(err))
	}
	return nil
}
