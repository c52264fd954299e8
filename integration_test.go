package GateDB

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/nickyhof/GateDB/core"
	"github.com/nickyhof/GateDB/db"
	"github.com/nickyhof/GateDB/ps"
	"github.com/nickyhof/GateDB/sql"
)

type TestFunc func(t *testing.T, engine *db.Engine)

// runWithBothStorages runs a test function against an in-memory and an
// on-disk DuckDB database.
func runWithBothStorages(t *testing.T, testFunc TestFunc) {
	identity := core.Identity{Name: "test", Email: "test@test.com"}

	t.Run("Memory", func(t *testing.T) {
		gate := Open(&core.Config{Connections: map[string]core.Zone{"default": {Scheme: "duckdb"}}})
		gate.Logger = log.New(io.Discard, "", 0)
		engine, err := gate.Connect(context.Background(), identity, "")
		if err != nil {
			t.Fatalf("Failed to connect: %v", err)
		}
		defer engine.Close()
		testFunc(t, engine)
	})

	t.Run("File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "gatedb.duckdb")
		gate := Open(&core.Config{Connections: map[string]core.Zone{"default": {Scheme: "duckdb", Database: path}}})
		gate.Logger = log.New(io.Discard, "", 0)
		engine, err := gate.Connect(context.Background(), identity, "")
		if err != nil {
			t.Fatalf("Failed to connect: %v", err)
		}
		defer engine.Close()
		testFunc(t, engine)
	})
}

func TestIntegrationWorkflow(t *testing.T) {
	runWithBothStorages(t, func(t *testing.T, engine *db.Engine) {
		ctx := context.Background()

		_, err := engine.Statement(ctx, "CREATE TABLE employees (id BIGINT PRIMARY KEY, name VARCHAR, department VARCHAR, salary BIGINT)")
		if err != nil {
			t.Fatalf("Failed to create table: %v", err)
		}

		affected, err := engine.Insert(ctx, "INSERT INTO employees (id, name, department, salary) VALUES (:id, :name, :department, :salary)",
			core.Named{"id": 1, "name": "Alice", "department": "Engineering", "salary": 100000},
			core.Named{"id": 2, "name": "Bob", "department": "Engineering", "salary": 90000},
			core.Named{"id": 3, "name": "Charlie", "department": "Sales", "salary": 80000},
			core.Named{"id": 4, "name": "Diana", "department": "Sales", "salary": 85000},
		)
		if err != nil {
			t.Fatalf("Failed to insert: %v", err)
		}
		if affected != 4 {
			t.Fatalf("Expected 4 inserted rows, got %d", affected)
		}

		result, err := engine.Select(ctx, "SELECT name FROM employees WHERE department = ?", core.Positional{"Engineering"})
		if err != nil {
			t.Fatalf("Failed to select: %v", err)
		}
		if len(result.Records()) != 2 {
			t.Errorf("Expected 2 engineers, got %v", result.Value())
		}

		affected, err = engine.Update(ctx, "UPDATE employees SET salary = salary + 5000 WHERE department = :department", core.Named{"department": "Sales"})
		if err != nil {
			t.Fatalf("Failed to update: %v", err)
		}
		if affected != 2 {
			t.Errorf("Expected 2 raises, got %d", affected)
		}

		query, err := engine.Query(ctx, sql.QuerySpec{
			Table:   "employees",
			Columns: []string{"name", "salary"},
			Where:   "department = 'Sales'",
			Between: &sql.BetweenClause{Column: "salary", Low: 86000, High: 95000},
		}, nil, db.ReturnRows)
		if err != nil {
			t.Fatalf("Failed to query: %v", err)
		}
		if query.Result.Record().Text("name") != "Diana" {
			t.Errorf("Expected Diana, got %v", query.Result.Value())
		}

		affected, err = engine.Delete(ctx, "DELETE FROM employees WHERE id = :id", core.Named{"id": 3})
		if err != nil {
			t.Fatalf("Failed to delete: %v", err)
		}
		if affected != 1 {
			t.Errorf("Expected 1 deletion, got %d", affected)
		}

		count, err := engine.Table("employees").Count(ctx)
		if err != nil {
			t.Fatalf("Failed to count: %v", err)
		}
		if count != 3 {
			t.Errorf("Expected 3 employees, got %d", count)
		}
	})
}

func TestIntegrationTransactions(t *testing.T) {
	runWithBothStorages(t, func(t *testing.T, engine *db.Engine) {
		ctx := context.Background()

		if _, err := engine.Statement(ctx, "CREATE TABLE accounts (id BIGINT, balance BIGINT)"); err != nil {
			t.Fatalf("Failed to create table: %v", err)
		}
		if _, err := engine.Insert(ctx, "INSERT INTO accounts (id, balance) VALUES (1, 100)"); err != nil {
			t.Fatalf("Failed to insert: %v", err)
		}

		if err := engine.Begin(ctx); err != nil {
			t.Fatalf("Failed to begin: %v", err)
		}
		if _, err := engine.Update(ctx, "UPDATE accounts SET balance = 0 WHERE id = 1", nil); err != nil {
			t.Fatalf("Failed to update: %v", err)
		}
		if _, err := engine.Insert(ctx, "INSERT INTO accounts (id, balance) VALUES (2, 100)"); err != nil {
			t.Fatalf("Failed to insert: %v", err)
		}
		if err := engine.Rollback(); err != nil {
			t.Fatalf("Failed to rollback: %v", err)
		}

		result, err := engine.Select(ctx, "SELECT balance FROM accounts", nil)
		if err != nil {
			t.Fatalf("Failed to select: %v", err)
		}
		if result.Shape() != db.ShapeRecord {
			t.Fatalf("Expected the second account to be absent, got %v", result.Value())
		}
		if result.Record()["balance"] != int64(100) {
			t.Errorf("Expected balance to be restored, got %v", result.Record()["balance"])
		}
	})
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gatedb.json")
	document := `{"fetch": "num", "connections": {"default": {"scheme": "duckdb"}}}`
	if err := os.WriteFile(path, []byte(document), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	gate, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	engine, err := gate.Connect(context.Background(), core.Identity{Name: "test"}, "")
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer engine.Close()

	result, err := engine.Execute(context.Background(), "SELECT 42 AS answer", nil)
	if err != nil {
		t.Fatalf("Failed to execute: %v", err)
	}
	if result.Result.Record().Text("0") != "42" {
		t.Errorf("Expected positional answer, got %v", result.Result.Value())
	}

	if _, err := gate.Connect(context.Background(), core.Identity{}, "reporting"); !errors.Is(err, ps.ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration for unknown zone, got %v", err)
	}
	if _, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, ps.ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration for missing file, got %v", err)
	}
}
