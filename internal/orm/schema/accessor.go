package schema

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/careboard/careboard/internal/codec"
)

// Record is a typed entity value whose fields are read and written by name.
// Set enforces field invariants; Load is used for values read back from
// storage and skips them.
type Record interface {
	Get(field string) (any, error)
	Set(field string, value any) error
	Load(field string, value any) error
}

// Accessor is the getter/setter pair for one field of record type R.
type Accessor[R any] struct {
	parser   codec.Parser
	get      func(*R) any
	load     func(*R, any) error
	validate func(any) error
}

// Parser returns the parser of the values this accessor carries
func (a Accessor[R]) Parser() codec.Parser { return a.parser }

// Fields maps field names to accessors for record type R.
type Fields[R any] map[string]Accessor[R]

// Names returns the field names in sorted order
func (f Fields[R]) Names() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Field binds a nullable struct field of type T. T must be the value type
// codec produces for p (string, int64, decimal.Decimal, codec.Date or
// codec.Clock). Each validator runs on non-nil assignments.
func Field[R, T any](name string, p codec.Parser, ref func(*R) *sql.Null[T], validators ...func(T) error) Accessor[R] {
	return Accessor[R]{
		parser: p,
		get: func(r *R) any {
			f := ref(r)
			if !f.Valid {
				return nil
			}
			return f.V
		},
		load: func(r *R, v any) error {
			if v == nil {
				*ref(r) = sql.Null[T]{}
				return nil
			}
			t, ok := v.(T)
			if !ok {
				var zero T
				return fmt.Errorf("field %s expects %T, got %T", name, zero, v)
			}
			*ref(r) = sql.Null[T]{V: t, Valid: true}
			return nil
		},
		validate: func(v any) error {
			t, ok := v.(T)
			if !ok {
				return nil
			}
			for _, validate := range validators {
				if err := validate(t); err != nil {
					return &ValidationError{Field: name, Message: err.Error()}
				}
			}
			return nil
		},
	}
}

// Model is the storage-facing side of an entity.
type Model interface {
	Table() *Table
	New() Record
}

// TypedModel binds a table to the accessor table of its record type.
type TypedModel[R any] struct {
	table  *Table
	fields Fields[R]
}

// NewModel checks that every column has an accessor with a matching parser
// and that every primary-key column exists.
func NewModel[R any](table *Table, fields Fields[R]) (*TypedModel[R], error) {
	for _, col := range table.Columns {
		acc, ok := fields[col.Name]
		if !ok {
			return nil, fmt.Errorf("table %s: column %s has no accessor", table.Name, col.Name)
		}
		if acc.parser != col.Parser {
			return nil, fmt.Errorf("table %s: column %s is %s but accessor is %s",
				table.Name, col.Name, col.Parser, acc.parser)
		}
	}
	if len(table.PrimaryKey) == 0 {
		return nil, fmt.Errorf("table %s: primary key is empty", table.Name)
	}
	for _, k := range table.PrimaryKey {
		if _, ok := table.Column(k); !ok {
			return nil, fmt.Errorf("table %s: primary key column %s is not declared", table.Name, k)
		}
	}
	if table.Identity != "" && !table.IsKey(table.Identity) {
		return nil, fmt.Errorf("table %s: identity column %s is not part of the primary key", table.Name, table.Identity)
	}
	return &TypedModel[R]{table: table, fields: fields}, nil
}

// MustModel is like NewModel but panics on error
func MustModel[R any](table *Table, fields Fields[R]) *TypedModel[R] {
	m, err := NewModel(table, fields)
	if err != nil {
		panic(err)
	}
	return m
}

// Table returns the storage layout
func (m *TypedModel[R]) Table() *Table { return m.table }

// New returns an empty record
func (m *TypedModel[R]) New() Record { return m.Bind(new(R)) }

// Bind exposes an existing value through the accessor table
func (m *TypedModel[R]) Bind(r *R) *Bound[R] {
	return &Bound[R]{value: r, fields: m.fields}
}

// Bound is a typed value addressed through its accessor table.
type Bound[R any] struct {
	value  *R
	fields Fields[R]
}

// Value returns the underlying typed value
func (b *Bound[R]) Value() *R { return b.value }

// Get reads a field; nil means the field is null.
func (b *Bound[R]) Get(field string) (any, error) {
	acc, ok := b.fields[field]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return acc.get(b.value), nil
}

// Set assigns a field. A *ValidationError reports an invariant violation
// and leaves the field unchanged.
func (b *Bound[R]) Set(field string, value any) error {
	acc, ok := b.fields[field]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if value != nil {
		if err := acc.validate(value); err != nil {
			return err
		}
	}
	return acc.load(b.value, value)
}

// Load assigns a field without running validators
func (b *Bound[R]) Load(field string, value any) error {
	acc, ok := b.fields[field]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return acc.load(b.value, value)
}
