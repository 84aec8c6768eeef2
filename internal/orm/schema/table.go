package schema

import "github.com/careboard/careboard/internal/codec"

// Table is the storage layout of an entity.
type Table struct {
	Name       string
	Columns    []ColumnDef
	PrimaryKey []string

	// Identity names a primary-key column the store assigns when a record
	// is inserted without it. Empty for natural and composite keys.
	Identity string

	ForeignKeys []ForeignKey
}

// ColumnDef describes a single table column
type ColumnDef struct {
	Name   string
	Parser codec.Parser

	// Length bounds string columns; zero means unbounded text.
	Length int

	// Precision and Scale apply to decimal columns.
	Precision int
	Scale     int

	NotNull bool
	Unique  bool
}

// ForeignKey references another table's primary key
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
	OnDelete  CascadeAction
}

// Column looks up a column definition by name
func (t *Table) Column(name string) (ColumnDef, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDef{}, false
}

// ColumnNames returns the column names in declaration order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// IsKey reports whether the column is part of the primary key
func (t *Table) IsKey(name string) bool {
	for _, k := range t.PrimaryKey {
		if k == name {
			return true
		}
	}
	return false
}

// References returns the distinct tables this table points at
func (t *Table) References() []string {
	var refs []string
	seen := make(map[string]bool)
	for _, fk := range t.ForeignKeys {
		if fk.RefTable == t.Name || seen[fk.RefTable] {
			continue
		}
		seen[fk.RefTable] = true
		refs = append(refs, fk.RefTable)
	}
	return refs
}
