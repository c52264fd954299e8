package sql

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrEmptyTable      = errors.New("query has no table")
	ErrEmptyData       = errors.New("query has no fields to write")
	ErrMissingWhere    = errors.New("query requires a where clause")
	ErrUnsupportedKind = errors.New("query kind cannot be built")
)

// Param is a named placeholder written into a built statement as :name.
type Param string

// Field is one column assignment of an INSERT or UPDATE.
type Field struct {
	Column string
	Value  any
}

// Fields keeps assignments in the order they are emitted.
type Fields []Field

type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (direction Direction) String() string {
	if direction == Descending {
		return "DESC"
	}
	return "ASC"
}

type JoinClause struct {
	Table string
	Left  string
	Right string
}

// BetweenClause is appended to an existing WHERE clause. Low and High are
// written like field values, so strings come out unquoted: pass
// non-numeric bounds such as dates as a Param and bind them.
type BetweenClause struct {
	Column  string
	Low     any
	High    any
	Negated bool
}

type OrderClause struct {
	Columns   []string
	Direction Direction
}

// OrderBy returns an order clause over columns.
func OrderBy(direction Direction, columns ...string) *OrderClause {
	return &OrderClause{Columns: columns, Direction: direction}
}

type LimitClause struct {
	Offset int
	Count  int
	paged  bool
}

// Take limits a query to count rows.
func Take(count int) *LimitClause {
	return &LimitClause{Count: count}
}

// Page limits a query to count rows starting at offset.
func Page(offset, count int) *LimitClause {
	return &LimitClause{Offset: offset, Count: count, paged: true}
}

func (limit *LimitClause) String() string {
	if limit.paged {
		return fmt.Sprintf("%d, %d", limit.Offset, limit.Count)
	}
	return strconv.Itoa(limit.Count)
}

// QuerySpec describes one query to build. Where is emitted verbatim;
// Data values go through the escaping rule of Build.
type QuerySpec struct {
	Kind    Kind
	Table   string
	Tables  []string // extra DELETE targets
	Columns []string
	Data    Fields
	Join    *JoinClause
	Where   string
	Between *BetweenClause
	Order   *OrderClause
	Limit   *LimitClause
	GroupBy []string
}

// Build assembles the SQL text for spec.
//
// Field values are written without quotes. Strings have quotes and
// backslashes doubled and NUL bytes removed, numbers are formatted, booleans
// become 1 or 0, nil becomes NULL and a Param becomes a :name placeholder.
func Build(spec QuerySpec) (string, error) {
	if strings.TrimSpace(spec.Table) == "" {
		return "", ErrEmptyTable
	}

	switch spec.Kind {
	case SelectKind:
		return buildSelect(spec), nil
	case InsertKind:
		if len(spec.Data) == 0 {
			return "", ErrEmptyData
		}
		return "INSERT INTO " + spec.Table + " SET " + assignments(spec.Data), nil
	case UpdateKind:
		if len(spec.Data) == 0 {
			return "", ErrEmptyData
		}
		if spec.Where == "" {
			return "", ErrMissingWhere
		}
		return "UPDATE " + spec.Table + " SET " + assignments(spec.Data) + " WHERE " + spec.Where, nil
	case DeleteKind:
		if spec.Where == "" {
			return "", ErrMissingWhere
		}
		tables := append([]string{spec.Table}, spec.Tables...)
		return "DELETE FROM " + strings.Join(tables, ", ") + " WHERE " + spec.Where, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedKind, spec.Kind)
	}
}

func buildSelect(spec QuerySpec) string {
	var sb strings.Builder

	sb.WriteString("SELECT ")
	if len(spec.Columns) == 0 {
		sb.WriteString("*")
	} else {
		sb.WriteString(strings.Join(spec.Columns, ", "))
	}
	sb.WriteString(" FROM ")
	sb.WriteString(spec.Table)

	if join := spec.Join; join != nil {
		fmt.Fprintf(&sb, " INNER JOIN %s ON %s = %s", join.Table, join.Left, join.Right)
	}

	if spec.Where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(spec.Where)

		if between := spec.Between; between != nil {
			keyword := "BETWEEN"
			if between.Negated {
				keyword = "NOT BETWEEN"
			}
			fmt.Fprintf(&sb, " AND %s %s %s AND %s", between.Column, keyword, Escape(between.Low), Escape(between.High))
		}
	}

	if order := spec.Order; order != nil && len(order.Columns) > 0 {
		fmt.Fprintf(&sb, " ORDER BY %s %s", strings.Join(order.Columns, ", "), order.Direction)
	}

	if spec.Limit != nil {
		sb.WriteString(" LIMIT ")
		sb.WriteString(spec.Limit.String())
	}

	if len(spec.GroupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(spec.GroupBy, ", "))
	}

	return sb.String()
}

func assignments(fields Fields) string {
	parts := make([]string, len(fields))
	for i, field := range fields {
		parts[i] = field.Column + " = " + Escape(field.Value)
	}
	return strings.Join(parts, ", ")
}

// Escape renders value as it is written into a built statement.
func Escape(value any) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case Param:
		return ":" + string(v)
	case string:
		return escapeString(v)
	case []byte:
		return escapeString(string(v))
	case bool:
		if v {
			return "1"
		}
		return "0"
	case int:
		return strconv.Itoa(v)
	case int8:
		return strconv.FormatInt(int64(v), 10)
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint8:
		return strconv.FormatUint(uint64(v), 10)
	case uint16:
		return strconv.FormatUint(uint64(v), 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return v.Format("2006-01-02 15:04:05")
	default:
		return escapeString(fmt.Sprint(v))
	}
}

var stringEscaper = strings.NewReplacer(`\`, `\\`, `'`, `''`, "\x00", "")

func escapeString(s string) string {
	return stringEscaper.Replace(s)
}
