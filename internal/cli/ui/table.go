// Package ui renders command output in the terminal.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Table renders rows in aligned columns under a bold header and a rule.
// Cells past the header width are dropped.
type Table struct {
	out     io.Writer
	header  []string
	rows    [][]string
	noColor bool
}

// NewTable creates a table with the given column headers
func NewTable(w io.Writer, header []string, noColor bool) *Table {
	return &Table{out: w, header: header, noColor: noColor}
}

// AddRow appends a row
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Render writes the table. A table without headers writes nothing.
func (t *Table) Render() {
	if len(t.header) == 0 {
		return
	}

	widths := make([]int, len(t.header))
	for _, row := range append([][]string{t.header}, t.rows...) {
		for i := range min(len(row), len(widths)) {
			widths[i] = max(widths[i], len(row[i]))
		}
	}

	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("-", w)
	}

	t.writeRow(widths, t.header, paint(t.noColor, color.Bold, color.FgCyan))
	t.writeRow(widths, rule, paint(t.noColor, color.FgHiBlack))
	for _, row := range t.rows {
		t.writeRow(widths, row, paint(true))
	}
}

// writeRow pads every cell but the last, so lines carry no trailing blanks
func (t *Table) writeRow(widths []int, cells []string, c *color.Color) {
	cells = cells[:min(len(cells), len(widths))]
	for i, cell := range cells {
		if i > 0 {
			fmt.Fprint(t.out, "  ")
		}
		if i < len(cells)-1 {
			cell = fmt.Sprintf("%-*s", widths[i], cell)
		}
		c.Fprint(t.out, cell)
	}
	fmt.Fprintln(t.out)
}

func paint(noColor bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if noColor {
		c.DisableColor()
	}
	return c
}

// KeyValueTable renders "key: value" lines with the values aligned
type KeyValueTable struct {
	out     io.Writer
	pairs   [][2]string
	noColor bool
}

// NewKeyValueTable creates an empty key-value table
func NewKeyValueTable(w io.Writer, noColor bool) *KeyValueTable {
	return &KeyValueTable{out: w, noColor: noColor}
}

// AddRow appends a pair
func (t *KeyValueTable) AddRow(key, value string) {
	t.pairs = append(t.pairs, [2]string{key, value})
}

// Render writes one line per pair
func (t *KeyValueTable) Render() {
	width := 0
	for _, p := range t.pairs {
		width = max(width, len(p[0])+1)
	}

	key := paint(t.noColor, color.FgCyan)
	for _, p := range t.pairs {
		key.Fprintf(t.out, "%-*s", width, p[0]+":")
		fmt.Fprintf(t.out, " %s\n", p[1])
	}
}
