package crud

import (
	"context"
	"fmt"

	"github.com/careboard/careboard/internal/orm/schema"
)

// Delete removes the row identified by key. Dependent rows go with it
// through the ON DELETE CASCADE foreign keys. Returns ErrNotFound when no
// row matches.
func (s *Store) Delete(ctx context.Context, q Querier, m schema.Model, key Key) error {
	table := m.Table()
	where, args, err := s.whereKey(table, key, 1)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %s", s.dialect.QuoteIdent(table.Name), where)

	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", table.Name, key, ConvertDBError(err))
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
