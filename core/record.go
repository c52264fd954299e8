package core

import "strconv"

// Record is one fetched row. Keys depend on the FetchMode of the session:
// column names, column positions ("0", "1", ...) or both.
type Record map[string]any

// NewRecord builds a Record from a scanned row.
func NewRecord(columns []string, values []any, mode FetchMode) Record {
	record := make(Record, len(columns))
	for i, column := range columns {
		var value any
		if i < len(values) {
			value = values[i]
		}
		if mode == FetchAssoc || mode == FetchBoth {
			record[column] = value
		}
		if mode == FetchNum || mode == FetchBoth {
			record[strconv.Itoa(i)] = value
		}
	}
	return record
}

func (record Record) Text(column string) string {
	switch v := record[column].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return formatValue(v)
	}
}
