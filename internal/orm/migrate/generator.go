package migrate

import (
	"fmt"
	"strings"

	"github.com/careboard/careboard/internal/orm/dialect"
	"github.com/careboard/careboard/internal/orm/schema"
)

// Generator renders DDL for table layouts in one SQL dialect
type Generator struct {
	dialect dialect.Dialect
}

// NewGenerator creates a new DDL generator
func NewGenerator(d dialect.Dialect) *Generator {
	return &Generator{dialect: d}
}

// CreateTable renders a CREATE TABLE IF NOT EXISTS statement. Keys and
// foreign keys are emitted as table constraints.
func (g *Generator) CreateTable(table *schema.Table) string {
	var sql strings.Builder

	sql.WriteString(fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n", g.dialect.QuoteIdent(table.Name)))

	lines := make([]string, 0, len(table.Columns)+1+len(table.ForeignKeys))
	for _, col := range table.Columns {
		lines = append(lines, "  "+g.columnDefinition(table, col))
	}

	lines = append(lines, fmt.Sprintf("  PRIMARY KEY (%s)", g.identList(table.PrimaryKey)))

	for _, fk := range table.ForeignKeys {
		lines = append(lines, fmt.Sprintf("  FOREIGN KEY (%s) REFERENCES %s (%s) ON DELETE %s",
			g.dialect.QuoteIdent(fk.Column),
			g.dialect.QuoteIdent(fk.RefTable),
			g.dialect.QuoteIdent(fk.RefColumn),
			fk.OnDelete.SQL(),
		))
	}

	sql.WriteString(strings.Join(lines, ",\n"))
	sql.WriteString("\n)")
	return sql.String()
}

// DropTable renders a DROP TABLE IF EXISTS statement
func (g *Generator) DropTable(table *schema.Table) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", g.dialect.QuoteIdent(table.Name))
}

// Migration builds a migration creating tables in the given order and
// dropping them in reverse.
func (g *Generator) Migration(version int64, name string, tables []*schema.Table) *Migration {
	m := &Migration{Version: version, Name: name}
	for _, table := range tables {
		m.Up = append(m.Up, g.CreateTable(table))
	}
	for i := len(tables) - 1; i >= 0; i-- {
		m.Down = append(m.Down, g.DropTable(tables[i]))
	}
	return m
}

func (g *Generator) columnDefinition(table *schema.Table, col schema.ColumnDef) string {
	parts := []string{
		g.dialect.QuoteIdent(col.Name),
		g.dialect.ColumnType(col, col.Name == table.Identity),
	}
	if col.NotNull || table.IsKey(col.Name) {
		parts = append(parts, "NOT NULL")
	}
	if col.Unique {
		parts = append(parts, "UNIQUE")
	}
	return strings.Join(parts, " ")
}

func (g *Generator) identList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = g.dialect.QuoteIdent(n)
	}
	return strings.Join(quoted, ", ")
}
