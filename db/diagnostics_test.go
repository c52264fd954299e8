package db

import (
	"errors"
	"strconv"
	"testing"

	"github.com/duckdb/duckdb-go/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/nickyhof/GateDB/core"
	"github.com/nickyhof/GateDB/ps"
)

func TestDiagnose(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected core.Diagnostic
	}{
		{"success", nil, core.Diagnostic{SQLState: "00000"}},
		{
			"pgx",
			&ps.StatementError{Phase: ps.PhaseExecute, Err: &pgconn.PgError{Severity: "ERROR", Code: "23505", Message: "duplicate key"}},
			core.Diagnostic{SQLState: "23505", Code: "ERROR", Message: "duplicate key"},
		},
		{
			"lib/pq",
			&ps.StatementError{Phase: ps.PhasePrepare, Err: &pq.Error{Severity: "ERROR", Code: "42P01", Message: "relation does not exist"}},
			core.Diagnostic{SQLState: "42P01", Code: "ERROR", Message: "relation does not exist"},
		},
		{
			"duckdb constraint",
			&duckdb.Error{Type: duckdb.ErrorTypeConstraint, Msg: "Constraint Error: duplicate key"},
			core.Diagnostic{SQLState: "23000", Code: strconv.Itoa(int(duckdb.ErrorTypeConstraint)), Message: "Constraint Error: duplicate key"},
		},
		{
			"plain",
			&ps.StatementError{Phase: ps.PhaseExecute, Err: errors.New("boom")},
			core.Diagnostic{SQLState: "HY000", Message: "boom"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := diagnose(test.err)
			if got != test.expected {
				t.Errorf("Expected %+v, got %+v", test.expected, got)
			}
		})
	}
}

func TestDuckDBState(t *testing.T) {
	tests := []struct {
		errorType duckdb.ErrorType
		expected  string
	}{
		{duckdb.ErrorTypeParser, "42000"},
		{duckdb.ErrorTypeCatalog, "42000"},
		{duckdb.ErrorTypeConstraint, "23000"},
		{duckdb.ErrorTypeDivideByZero, "22012"},
		{duckdb.ErrorTypeConversion, "22000"},
		{duckdb.ErrorTypeTransaction, "40001"},
		{duckdb.ErrorTypeInternal, "HY000"},
	}

	for _, test := range tests {
		if got := duckdbState(test.errorType); got != test.expected {
			t.Errorf("duckdbState(%d): expected %s, got %s", test.errorType, test.expected, got)
		}
	}
}
