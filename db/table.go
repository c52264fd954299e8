package db

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/nickyhof/GateDB/core"
)

const maxCellWidth = 60

// Table renders rows as an ASCII grid.
type Table struct {
	writer  io.Writer
	headers []string
	rows    [][]string
}

func NewTable(w io.Writer) *Table {
	return &Table{writer: w}
}

func (t *Table) Header(headers []string) {
	t.headers = headers
}

// Append adds a row of fetched values. NULL is shown for nil.
func (t *Table) Append(values []any) {
	row := make([]string, len(values))
	for i, value := range values {
		row[i] = cell(core.FormatValue(value))
	}
	t.rows = append(t.rows, row)
}

func (t *Table) Render() {
	if len(t.headers) == 0 && len(t.rows) == 0 {
		return
	}

	widths := t.widths()
	separator := separatorLine(widths)

	fmt.Fprintln(t.writer, separator)
	if len(t.headers) > 0 {
		fmt.Fprintln(t.writer, formatRow(t.headers, widths))
		fmt.Fprintln(t.writer, separator)
	}
	for _, row := range t.rows {
		fmt.Fprintln(t.writer, formatRow(row, widths))
	}
	fmt.Fprintln(t.writer, separator)
}

func (t *Table) widths() []int {
	columns := len(t.headers)
	for _, row := range t.rows {
		columns = max(columns, len(row))
	}

	widths := make([]int, columns)
	for i := range widths {
		widths[i] = 1
	}
	for _, row := range append([][]string{t.headers}, t.rows...) {
		for i, value := range row {
			widths[i] = max(widths[i], utf8.RuneCountInString(value))
		}
	}
	return widths
}

// cell flattens newlines and truncates long values.
func cell(value string) string {
	value = strings.NewReplacer("\r\n", " ", "\n", " ", "\t", " ").Replace(value)
	if utf8.RuneCountInString(value) > maxCellWidth {
		runes := []rune(value)
		return string(runes[:maxCellWidth-3]) + "..."
	}
	return value
}

func separatorLine(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("-", w+2)
	}
	return "+" + strings.Join(parts, "+") + "+"
}

func formatRow(row []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		value := ""
		if i < len(row) {
			value = row[i]
		}
		parts[i] = " " + value + strings.Repeat(" ", w-utf8.RuneCountInString(value)+1)
	}
	return "|" + strings.Join(parts, "|") + "|"
}
