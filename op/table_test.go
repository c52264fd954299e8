package op

import (
	"context"
	"testing"

	"github.com/nickyhof/GateDB/core"
	"github.com/nickyhof/GateDB/ps"
	"github.com/nickyhof/GateDB/sql"
)

func setupTestTable(t *testing.T) *TableOp {
	t.Helper()
	ctx := context.Background()

	connection := ps.New(&core.Config{Connections: map[string]core.Zone{"default": {Scheme: "duckdb"}}})
	if err := connection.Connect(ctx, ""); err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(func() { connection.Close() })

	if _, err := connection.ExecDirect(ctx, "CREATE TABLE users (id BIGINT, name VARCHAR, age BIGINT)"); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	users := GetTable("users", connection)
	for _, row := range []sql.Fields{
		{{Column: "id", Value: 1}, {Column: "name", Value: "Alice"}, {Column: "age", Value: 30}},
		{{Column: "id", Value: 2}, {Column: "name", Value: "Bob"}, {Column: "age", Value: 25}},
		{{Column: "id", Value: 3}, {Column: "name", Value: "Charlie"}, {Column: "age", Value: 35}},
	} {
		affected, err := users.Insert(ctx, row)
		if err != nil {
			t.Fatalf("Failed to insert: %v", err)
		}
		if affected != 1 {
			t.Fatalf("Expected 1 affected row, got %d", affected)
		}
	}
	return users
}

func TestTableCount(t *testing.T) {
	users := setupTestTable(t)

	count, err := users.Count(context.Background())
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected 3 records, got %d", count)
	}
}

func TestTableAll(t *testing.T) {
	users := setupTestTable(t)

	records, err := users.All(context.Background())
	if err != nil {
		t.Fatalf("Failed to read: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}
	if records[0].Text("name") == "" {
		t.Errorf("Expected name column, got %v", records[0])
	}
}

func TestTableWhere(t *testing.T) {
	users := setupTestTable(t)
	ctx := context.Background()

	records, err := users.Where(ctx, "age > :age", core.Named{"age": 28})
	if err != nil {
		t.Fatalf("Failed to filter: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("Expected 2 records with age > 28, got %d", len(records))
	}

	records, err = users.Where(ctx, "name = ?", core.Positional{"Bob"})
	if err != nil {
		t.Fatalf("Failed to filter: %v", err)
	}
	if len(records) != 1 || records[0]["id"] != int64(2) {
		t.Errorf("Expected Bob with id 2, got %v", records)
	}
}

func TestTableScanStopsEarly(t *testing.T) {
	users := setupTestTable(t)

	seen := 0
	for _, err := range users.Scan(context.Background(), "", nil) {
		if err != nil {
			t.Fatalf("Scan failed: %v", err)
		}
		seen++
		if seen == 2 {
			break
		}
	}
	if seen != 2 {
		t.Errorf("Expected to stop after 2 records, got %d", seen)
	}
}

func TestTableErrors(t *testing.T) {
	users := setupTestTable(t)
	ctx := context.Background()

	if _, err := users.Insert(ctx, nil); err != sql.ErrEmptyData {
		t.Errorf("Expected ErrEmptyData, got %v", err)
	}

	missing := GetTable("missing", users.connection)
	if _, err := missing.Count(ctx); err == nil {
		t.Error("Expected error counting a missing table")
	}
	if _, err := missing.All(ctx); err == nil {
		t.Error("Expected error reading a missing table")
	}

	unconnected := GetTable("users", ps.New(nil))
	if _, err := unconnected.All(ctx); err != ps.ErrNotConnected {
		t.Errorf("Expected ErrNotConnected, got %v", err)
	}
}
