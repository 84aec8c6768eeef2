package crud

import (
	"context"
	"fmt"
	"strings"

	"github.com/careboard/careboard/internal/orm/schema"
)

// Update writes every non-key column of rec to the row identified by key.
// Primary-key columns are never changed. Returns ErrNotFound when no row
// matches.
func (s *Store) Update(ctx context.Context, q Querier, m schema.Model, key Key, rec schema.Record) error {
	table := m.Table()

	var columns []string
	for _, col := range table.Columns {
		if !table.IsKey(col.Name) {
			columns = append(columns, col.Name)
		}
	}
	if len(columns) == 0 {
		// nothing but identity; confirm the row exists
		_, err := s.FindByKey(ctx, q, m, key)
		return err
	}

	args, err := columnArgs(rec, table, columns)
	if err != nil {
		return err
	}

	assignments := make([]string, len(columns))
	for i, c := range columns {
		assignments[i] = fmt.Sprintf("%s = %s", s.dialect.QuoteIdent(c), s.dialect.Placeholder(i+1))
	}

	where, keyArgs, err := s.whereKey(table, key, len(columns)+1)
	if err != nil {
		return err
	}
	args = append(args, keyArgs...)

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s",
		s.dialect.QuoteIdent(table.Name),
		strings.Join(assignments, ", "),
		where,
	)

	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s %s: %w", table.Name, key, ConvertDBError(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}
