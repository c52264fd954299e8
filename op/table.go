package op

import (
	"context"
	"iter"
	"strings"

	"github.com/nickyhof/GateDB/core"
	"github.com/nickyhof/GateDB/ps"
	"github.com/nickyhof/GateDB/sql"
)

// TableOp reads and writes one table over a session. Values are returned
// as the driver produced them.
type TableOp struct {
	Name       string
	connection *ps.Connection
}

func GetTable(name string, connection *ps.Connection) *TableOp {
	return &TableOp{Name: name, connection: connection}
}

func (op *TableOp) Count(ctx context.Context) (int64, error) {
	query, err := sql.Build(sql.QuerySpec{Table: op.Name, Columns: []string{"count(*)"}})
	if err != nil {
		return 0, err
	}

	stmt, err := op.connection.Prepare(ctx, query)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	var count int64
	if err := stmt.QueryRowxContext(ctx).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (op *TableOp) All(ctx context.Context) ([]core.Record, error) {
	return op.collect(op.Scan(ctx, "", nil))
}

// Where returns the records matching where, a condition with :name or ?
// placeholders filled from bindings.
func (op *TableOp) Where(ctx context.Context, where string, bindings core.Bindings) ([]core.Record, error) {
	return op.collect(op.Scan(ctx, where, bindings))
}

// Scan streams the records matching where. An empty where scans the whole
// table. Iteration stops after the first error.
func (op *TableOp) Scan(ctx context.Context, where string, bindings core.Bindings) iter.Seq2[core.Record, error] {
	return func(yield func(core.Record, error) bool) {
		query, err := sql.Build(sql.QuerySpec{Table: op.Name, Where: where})
		if err != nil {
			yield(nil, err)
			return
		}

		bound, args, err := op.connection.Bind(query, bindings)
		if err != nil {
			yield(nil, err)
			return
		}

		stmt, err := op.connection.Prepare(ctx, bound)
		if err != nil {
			yield(nil, err)
			return
		}
		defer stmt.Close()

		rows, err := stmt.QueryxContext(ctx, args...)
		if err != nil {
			yield(nil, err)
			return
		}
		defer rows.Close()

		columns, err := rows.Columns()
		if err != nil {
			yield(nil, err)
			return
		}

		mode := op.connection.FetchMode()
		for rows.Next() {
			values, err := rows.SliceScan()
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(core.NewRecord(columns, values, mode), nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, err)
		}
	}
}

// Insert writes one row from fields and returns the affected row count.
func (op *TableOp) Insert(ctx context.Context, fields sql.Fields) (int64, error) {
	if len(fields) == 0 {
		return 0, sql.ErrEmptyData
	}

	columns := make([]string, len(fields))
	placeholders := make([]string, len(fields))
	values := make(core.Positional, len(fields))
	for i, field := range fields {
		columns[i] = field.Column
		placeholders[i] = "?"
		values[i] = field.Value
	}
	query := "INSERT INTO " + op.Name + " (" + strings.Join(columns, ", ") + ") VALUES (" + strings.Join(placeholders, ", ") + ")"

	bound, args, err := op.connection.Bind(query, values)
	if err != nil {
		return 0, err
	}

	stmt, err := op.connection.Prepare(ctx, bound)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return 0, &ps.StatementError{Phase: ps.PhaseExecute, Err: err}
	}
	return result.RowsAffected()
}

func (op *TableOp) collect(seq iter.Seq2[core.Record, error]) ([]core.Record, error) {
	var records []core.Record
	for record, err := range seq {
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
