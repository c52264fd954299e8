package db

import (
	"context"
	dbsql "database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nickyhof/GateDB/core"
	"github.com/nickyhof/GateDB/op"
	"github.com/nickyhof/GateDB/ps"
	"github.com/nickyhof/GateDB/sql"
)

// ErrQueryFailed wraps every error raised while binding, preparing or
// executing a statement.
var ErrQueryFailed = errors.New("query failed")

// Engine is one database session: a connection, the identity it runs for
// and the diagnostics of its latest execution. An Engine is not safe for
// concurrent use; give each client its own.
type Engine struct {
	connection *ps.Connection
	identity   core.Identity
	logger     *log.Logger
	snapshot   core.ErrorSnapshot

	lastWrite dbsql.Result
}

func NewEngine(connection *ps.Connection, identity core.Identity, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		connection: connection,
		identity:   identity,
		logger:     logger,
	}
}

func (engine *Engine) Identity() core.Identity {
	return engine.identity
}

func (engine *Engine) Zone() string {
	return engine.connection.Zone()
}

func (engine *Engine) Connect(ctx context.Context, zone string) error {
	if err := engine.connection.Connect(ctx, zone); err != nil {
		engine.snapshot.Connection = diagnose(err)
		return err
	}
	return nil
}

// SwitchTo moves the session to another zone. A running transaction is
// rolled back.
func (engine *Engine) SwitchTo(ctx context.Context, zone string) error {
	if err := engine.connection.SwitchTo(ctx, zone); err != nil {
		if !errors.Is(err, ps.ErrNotConnected) && !errors.Is(err, ps.ErrInvalidZone) {
			engine.snapshot.Connection = diagnose(err)
		}
		return err
	}
	engine.lastWrite = nil
	return nil
}

func (engine *Engine) Close() error {
	return engine.connection.Close()
}

// Begin starts a transaction that lives until Commit or Rollback. ctx
// bounds the whole transaction.
func (engine *Engine) Begin(ctx context.Context) error {
	return engine.connection.Begin(ctx)
}

func (engine *Engine) Commit() error {
	return engine.connection.Commit()
}

func (engine *Engine) Rollback() error {
	return engine.connection.Rollback()
}

func (engine *Engine) InTransaction() bool {
	return engine.connection.InTransaction()
}

// Table returns a record-access object for name over this session.
func (engine *Engine) Table(name string) *op.TableOp {
	return op.GetTable(name, engine.connection)
}

// Select runs a SELECT statement and returns its rows.
func (engine *Engine) Select(ctx context.Context, query string, bindings core.Bindings) (Result, error) {
	if err := sql.Validate(sql.SelectKind, query); err != nil {
		return Result{}, err
	}
	result, err := engine.run(ctx, "Select", query, bindings, true)
	return result.Result, err
}

// Update runs an UPDATE statement and returns the affected row count.
func (engine *Engine) Update(ctx context.Context, query string, bindings core.Bindings) (int64, error) {
	if err := sql.Validate(sql.UpdateKind, query); err != nil {
		return 0, err
	}
	result, err := engine.run(ctx, "Update", query, bindings, false)
	return result.RowsAffected, err
}

// Delete runs a DELETE statement and returns the affected row count.
func (engine *Engine) Delete(ctx context.Context, query string, bindings core.Bindings) (int64, error) {
	if err := sql.Validate(sql.DeleteKind, query); err != nil {
		return 0, err
	}
	result, err := engine.run(ctx, "Delete", query, bindings, false)
	return result.RowsAffected, err
}

// Insert runs an INSERT statement once per binding set and returns the
// summed affected row count. With no binding set it runs once. On failure
// the count of the cycles that completed is returned with the error.
func (engine *Engine) Insert(ctx context.Context, query string, batch ...core.Bindings) (int64, error) {
	if err := sql.Validate(sql.InsertKind, query); err != nil {
		return 0, err
	}

	if len(batch) <= 1 {
		var bindings core.Bindings
		if len(batch) == 1 {
			bindings = batch[0]
		}
		result, err := engine.run(ctx, "Insert", query, bindings, false)
		return result.RowsAffected, err
	}

	var total int64
	for _, bindings := range batch {
		result, err := engine.run(ctx, "Insert", query, bindings, false)
		if err != nil {
			return total, err
		}
		total += result.RowsAffected
	}
	return total, nil
}

// Statement runs a DDL statement without preparing it. Only the
// connection diagnostic is refreshed.
func (engine *Engine) Statement(ctx context.Context, query string) (int64, error) {
	if err := sql.Validate(sql.DDLKind, query); err != nil {
		return 0, err
	}

	result, err := engine.connection.ExecDirect(ctx, query)
	if err != nil {
		if errors.Is(err, ps.ErrNotConnected) {
			return 0, err
		}
		engine.snapshot.Connection = diagnose(err)
		engine.logFailure("Statement", query, nil)
		return 0, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	engine.snapshot.Connection = core.OK()

	affected, _ := result.RowsAffected()
	return affected, nil
}

// Execute runs any statement through a prepare, bind and execute cycle
// without checking its shape. Statements that do not write are fetched.
func (engine *Engine) Execute(ctx context.Context, query string, bindings core.Bindings) (QueryResult, error) {
	switch sql.Classify(query) {
	case sql.InsertKind, sql.UpdateKind, sql.DeleteKind, sql.DDLKind:
		return engine.run(ctx, "Execute", query, bindings, false)
	default:
		return engine.run(ctx, "Execute", query, bindings, true)
	}
}

// Query builds spec and executes it. ret selects whether the fetched rows
// or the last inserted id are returned.
func (engine *Engine) Query(ctx context.Context, spec sql.QuerySpec, bindings core.Bindings, ret Return) (QueryResult, error) {
	query, err := sql.Build(spec)
	if err != nil {
		engine.logFailure("Query", query, bindings)
		return QueryResult{}, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}

	result, err := engine.run(ctx, "Query", query, bindings, spec.Kind == sql.SelectKind)
	if err != nil {
		return QueryResult{}, err
	}

	switch ret {
	case ReturnRows:
		return result, nil
	case ReturnLastInsertID:
		id, err := engine.lastInsertID(ctx)
		if err != nil {
			engine.logFailure("Query", query, bindings)
			return QueryResult{}, fmt.Errorf("%w: %w", ErrQueryFailed, err)
		}
		return QueryResult{RowsAffected: result.RowsAffected, LastInsertID: id}, nil
	default:
		return QueryResult{RowsAffected: result.RowsAffected}, nil
	}
}

// LastInsertID returns the id generated by the latest insert on the
// session. Drivers without the notion report an error.
func (engine *Engine) LastInsertID() (int64, error) {
	return engine.lastInsertID(context.Background())
}

func (engine *Engine) lastInsertID(ctx context.Context) (int64, error) {
	return engine.connection.LastInsertID(ctx, engine.lastWrite)
}

func (engine *Engine) run(ctx context.Context, method, query string, bindings core.Bindings, fetch bool) (QueryResult, error) {
	if err := engine.connection.Verify(); err != nil {
		return QueryResult{}, err
	}
	start := time.Now()

	bound, args, err := engine.connection.Bind(query, bindings)
	if err != nil {
		return QueryResult{}, engine.fail(method, query, bindings, err)
	}

	stmt, err := engine.connection.Prepare(ctx, bound)
	if err != nil {
		return QueryResult{}, engine.fail(method, query, bindings, err)
	}
	defer stmt.Close()

	args = normalize(args)

	if fetch {
		rows, err := stmt.QueryxContext(ctx, args...)
		if err != nil {
			return QueryResult{}, engine.fail(method, query, bindings, &ps.StatementError{Phase: ps.PhaseExecute, Err: err})
		}
		result, err := collect(rows, engine.connection.FetchMode())
		if err != nil {
			return QueryResult{}, engine.fail(method, query, bindings, &ps.StatementError{Phase: ps.PhaseExecute, Err: err})
		}
		result.ExecutionTimeSec = time.Since(start).Seconds()
		engine.captureSuccess()
		return QueryResult{Result: result}, nil
	}

	res, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return QueryResult{}, engine.fail(method, query, bindings, &ps.StatementError{Phase: ps.PhaseExecute, Err: err})
	}
	engine.captureSuccess()

	affected, _ := res.RowsAffected()
	engine.lastWrite = res
	return QueryResult{
		Result:       Result{ExecutionTimeSec: time.Since(start).Seconds()},
		RowsAffected: affected,
	}, nil
}

// collect reads every row and sanitizes it.
func collect(rows *sqlx.Rows, mode core.FetchMode) (Result, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return Result{}, err
	}

	result := Result{Columns: columns, Mode: mode}
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return Result{}, err
		}
		for i, value := range values {
			values[i] = sanitize(value)
		}
		result.Rows = append(result.Rows, core.NewRecord(columns, values, mode))
	}
	return result, rows.Err()
}

func (engine *Engine) fail(method, query string, bindings core.Bindings, err error) error {
	engine.capture(err)
	engine.logFailure(method, query, bindings)
	return fmt.Errorf("%w: %w", ErrQueryFailed, err)
}

func (engine *Engine) logFailure(method, query string, bindings core.Bindings) {
	engine.logger.Printf("%s(): query fails, [SQL: %s] [%s] [Session: %s@%s]", method, query, core.DumpBindings(bindings), engine.identity, engine.connection.Zone())
}
