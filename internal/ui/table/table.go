// Package table renders aligned plain-text tables with lipgloss styles.
package table

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/coursetrail/internal/ui/theme"
)

// Cell is one rendered value. Style may be the zero style.
type Cell struct {
	Text  string
	Style lipgloss.Style
}

// Table collects rows and renders them with columns sized to content.
type Table struct {
	headers []string
	rows    [][]Cell
}

// New returns a table with the given column headers.
func New(headers ...string) *Table {
	return &Table{headers: headers}
}

// Row appends plain text cells.
func (t *Table) Row(values ...string) *Table {
	cells := make([]Cell, len(values))
	for i, v := range values {
		cells[i] = Cell{Text: v}
	}
	return t.Cells(cells...)
}

// Cells appends styled cells.
func (t *Table) Cells(cells ...Cell) *Table {
	t.rows = append(t.rows, cells)
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// String renders the table.
func (t *Table) String() string {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, c := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(c.Text))
			}
		}
	}

	var b strings.Builder
	header := make([]string, len(t.headers))
	total := 0
	for i, h := range t.headers {
		header[i] = theme.HeaderCell.Width(widths[i] + 2).Render(h)
		total += widths[i] + 2
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, header...))
	b.WriteString("\n")
	b.WriteString(theme.Rule.Render(strings.Repeat("─", total)))
	b.WriteString("\n")

	for _, row := range t.rows {
		cells := make([]string, len(t.headers))
		for i := range t.headers {
			var c Cell
			if i < len(row) {
				c = row[i]
			}
			cells[i] = c.Style.Inherit(theme.Cell).Width(widths[i] + 2).Render(c.Text)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteString("\n")
	}
	return b.String()
}
