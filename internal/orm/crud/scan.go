package crud

import (
	"database/sql"
	"fmt"

	"github.com/careboard/careboard/internal/codec"
	"github.com/careboard/careboard/internal/orm/schema"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord scans one row, laid out as table.Columns, into a new record
func scanRecord(row rowScanner, m schema.Model) (schema.Record, error) {
	table := m.Table()

	values := make([]any, len(table.Columns))
	valuePtrs := make([]any, len(table.Columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}

	if err := row.Scan(valuePtrs...); err != nil {
		return nil, err
	}

	rec := m.New()
	for i, col := range table.Columns {
		v, err := codec.FromDB(col.Parser, values[i])
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", table.Name, col.Name, err)
		}
		if err := rec.Load(col.Name, v); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// scanRecords scans every remaining row
func scanRecords(rows *sql.Rows, m schema.Model) ([]schema.Record, error) {
	var records []schema.Record
	for rows.Next() {
		rec, err := scanRecord(rows, m)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// columnArgs converts record values into driver arguments
func columnArgs(rec schema.Record, table *schema.Table, columns []string) ([]any, error) {
	args := make([]any, len(columns))
	for i, name := range columns {
		col, ok := table.Column(name)
		if !ok {
			return nil, fmt.Errorf("%s: unknown column %s", table.Name, name)
		}
		v, err := rec.Get(name)
		if err != nil {
			return nil, err
		}
		if err := checkBounds(table, col, v); err != nil {
			return nil, err
		}
		arg, err := codec.ToDB(col.Parser, v)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", table.Name, name, err)
		}
		args[i] = arg
	}
	return args, nil
}
