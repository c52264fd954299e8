package db

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/nickyhof/GateDB/core"
)

// Shape is how many rows a select produced, as seen by callers.
type Shape int

const (
	ShapeNone   Shape = iota // no rows, fetched as null
	ShapeRecord              // exactly one row, fetched as a record
	ShapeList                // several rows, fetched as a list
)

func (shape Shape) String() string {
	switch shape {
	case ShapeRecord:
		return "record"
	case ShapeList:
		return "list"
	default:
		return "none"
	}
}

// Result holds sanitized rows of a select.
type Result struct {
	Columns          []string
	Rows             []core.Record
	Mode             core.FetchMode
	ExecutionTimeSec float64
}

func (result Result) Shape() Shape {
	switch len(result.Rows) {
	case 0:
		return ShapeNone
	case 1:
		return ShapeRecord
	default:
		return ShapeList
	}
}

// Record returns the row of a single-row result, or nil.
func (result Result) Record() core.Record {
	if result.Shape() != ShapeRecord {
		return nil
	}
	return result.Rows[0]
}

// Records returns the rows of a multi-row result, or nil.
func (result Result) Records() []core.Record {
	if result.Shape() != ShapeList {
		return nil
	}
	return result.Rows
}

// Value returns the fetch-shaped result: nil, a core.Record or a
// []core.Record.
func (result Result) Value() any {
	switch result.Shape() {
	case ShapeRecord:
		return result.Rows[0]
	case ShapeList:
		return result.Rows
	default:
		return nil
	}
}

func (result Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(result.Value())
}

func (result Result) ExecutionTime() string {
	return formatDuration(result.ExecutionTimeSec)
}

func (result Result) Display(w io.Writer) {
	if len(result.Rows) > 0 {
		table := NewTable(w)
		table.Header(result.Columns)
		for _, record := range result.Rows {
			table.Append(result.cells(record))
		}
		table.Render()
	}

	fmt.Fprintf(w, "%d rows (%s)\n", len(result.Rows), result.ExecutionTime())
}

func (result Result) cells(record core.Record) []any {
	cells := make([]any, len(result.Columns))
	for i, column := range result.Columns {
		if value, ok := record[column]; ok && result.Mode != core.FetchNum {
			cells[i] = value
		} else {
			cells[i] = record[strconv.Itoa(i)]
		}
	}
	return cells
}

// Return selects what Query hands back.
type Return int

const (
	ReturnNone Return = iota
	ReturnRows
	ReturnLastInsertID
)

// QueryResult is the outcome of one execution.
type QueryResult struct {
	Result       Result
	RowsAffected int64
	LastInsertID int64
}

func (result QueryResult) Display(w io.Writer) {
	if len(result.Result.Columns) > 0 {
		result.Result.Display(w)
		return
	}
	if result.LastInsertID != 0 {
		fmt.Fprintf(w, "%d row(s) affected, last insert id %d (%s)\n", result.RowsAffected, result.LastInsertID, result.Result.ExecutionTime())
		return
	}
	fmt.Fprintf(w, "%d row(s) affected (%s)\n", result.RowsAffected, result.Result.ExecutionTime())
}

func formatDuration(secs float64) string {
	if secs < 0.001 {
		return "<1ms"
	} else if secs < 1 {
		ms := secs * 1000
		if ms < 10 {
			return fmt.Sprintf("%.1fms", ms)
		}
		return fmt.Sprintf("%dms", int(ms))
	} else if secs < 60 {
		if secs < 10 {
			return fmt.Sprintf("%.1fs", secs)
		}
		return fmt.Sprintf("%ds", int(secs))
	}
	mins := int(secs / 60)
	remainSecs := int(secs) % 60
	if remainSecs == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dm%ds", mins, remainSecs)
}
