package db

import (
	"errors"
	"strconv"

	"github.com/duckdb/duckdb-go/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/nickyhof/GateDB/core"
	"github.com/nickyhof/GateDB/ps"
)

// diagnose turns a driver error into a diagnostic tuple.
func diagnose(err error) core.Diagnostic {
	if err == nil {
		return core.OK()
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return core.Diagnostic{SQLState: pgErr.Code, Code: pgErr.Severity, Message: pgErr.Message}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return core.Diagnostic{SQLState: string(pqErr.Code), Code: pqErr.Severity, Message: pqErr.Message}
	}

	var duckErr *duckdb.Error
	if errors.As(err, &duckErr) {
		return core.Diagnostic{SQLState: duckdbState(duckErr.Type), Code: strconv.Itoa(int(duckErr.Type)), Message: duckErr.Msg}
	}

	var statementErr *ps.StatementError
	if errors.As(err, &statementErr) {
		err = statementErr.Err
	}
	return core.Diagnostic{SQLState: core.SQLStateGeneral, Message: err.Error()}
}

// DuckDB reports error classes, not SQLSTATEs.
func duckdbState(errorType duckdb.ErrorType) string {
	switch errorType {
	case duckdb.ErrorTypeParser, duckdb.ErrorTypeSyntax, duckdb.ErrorTypeCatalog, duckdb.ErrorTypeBinder:
		return "42000"
	case duckdb.ErrorTypeConstraint:
		return "23000"
	case duckdb.ErrorTypeDivideByZero:
		return "22012"
	case duckdb.ErrorTypeConversion, duckdb.ErrorTypeOutOfRange, duckdb.ErrorTypeMismatchType, duckdb.ErrorTypeInvalidInput:
		return "22000"
	case duckdb.ErrorTypeTransaction:
		return "40001"
	case duckdb.ErrorTypeConnection, duckdb.ErrorTypeNetwork:
		return "08000"
	default:
		return core.SQLStateGeneral
	}
}

// capture records err into the snapshot. Prepare failures belong to the
// connection; execute failures belong to the statement.
func (engine *Engine) capture(err error) {
	var statementErr *ps.StatementError
	if errors.As(err, &statementErr) && statementErr.Phase == ps.PhasePrepare {
		engine.snapshot.Connection = diagnose(err)
		return
	}
	engine.snapshot.Statement = diagnose(err)
	engine.snapshot.Connection = core.OK()
}

func (engine *Engine) captureSuccess() {
	engine.snapshot = core.ErrorSnapshot{Statement: core.OK(), Connection: core.OK()}
}

// LastError returns the diagnostics of the latest execution. They are not
// reset between calls.
func (engine *Engine) LastError() core.ErrorSnapshot {
	return engine.snapshot
}
