package crud

import (
	"context"
	"fmt"

	"github.com/careboard/careboard/internal/orm/schema"
)

// FindAll returns every record of the model ordered by its primary-key
// columns ascending.
func (s *Store) FindAll(ctx context.Context, q Querier, m schema.Model) ([]schema.Record, error) {
	table := m.Table()
	query := fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY %s",
		s.columnList(table.ColumnNames()),
		s.dialect.QuoteIdent(table.Name),
		s.columnList(table.PrimaryKey),
	)

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table.Name, ConvertDBError(err))
	}
	defer rows.Close()

	records, err := scanRecords(rows, m)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", table.Name, err)
	}
	return records, nil
}

// FindByKey returns the record with the given primary key or ErrNotFound
func (s *Store) FindByKey(ctx context.Context, q Querier, m schema.Model, key Key) (schema.Record, error) {
	table := m.Table()
	where, args, err := s.whereKey(table, key, 1)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s",
		s.columnList(table.ColumnNames()),
		s.dialect.QuoteIdent(table.Name),
		where,
	)

	rec, err := scanRecord(q.QueryRowContext(ctx, query, args...), m)
	if err != nil {
		if err = ConvertDBError(err); IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find %s %s: %w", table.Name, key, err)
	}
	return rec, nil
}

// Count returns the number of records of the model
func (s *Store) Count(ctx context.Context, q Querier, m schema.Model) (int64, error) {
	table := m.Table()
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", s.dialect.QuoteIdent(table.Name))

	var count int64
	if err := q.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table.Name, ConvertDBError(err))
	}
	return count, nil
}

// Exists reports whether the model has at least one record
func (s *Store) Exists(ctx context.Context, q Querier, m schema.Model) (bool, error) {
	table := m.Table()
	query := fmt.Sprintf("SELECT 1 FROM %s LIMIT 1", s.dialect.QuoteIdent(table.Name))

	var one int
	err := q.QueryRowContext(ctx, query).Scan(&one)
	if err != nil {
		if err = ConvertDBError(err); IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to probe %s: %w", table.Name, err)
	}
	return true, nil
}
