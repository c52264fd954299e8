package ps

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nickyhof/GateDB/core"
)

func testConfig() *core.Config {
	return &core.Config{
		Fetch: core.FetchNum,
		Connections: map[string]core.Zone{
			"default": {Scheme: "duckdb"},
			"other":   {Scheme: "duckdb"},
			"broken":  {Scheme: "nosuchdriver", Host: "localhost"},
		},
	}
}

func setupTestConnection(t *testing.T) *Connection {
	t.Helper()
	connection := New(testConfig())
	if err := connection.Connect(context.Background(), ""); err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(func() { connection.Close() })
	return connection
}

func countRows(t *testing.T, connection *Connection, table string) int {
	t.Helper()
	var count int
	if err := connection.conn.QueryRowxContext(context.Background(), "SELECT count(*) FROM "+table).Scan(&count); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return count
}

func TestConnect(t *testing.T) {
	connection := setupTestConnection(t)

	if err := connection.Verify(); err != nil {
		t.Fatalf("Expected live session, got %v", err)
	}
	if connection.Zone() != core.DefaultZone {
		t.Errorf("Expected zone %q, got %q", core.DefaultZone, connection.Zone())
	}
	if connection.DriverName() != "duckdb" {
		t.Errorf("Expected duckdb driver, got %q", connection.DriverName())
	}
	if connection.FetchMode() != core.FetchNum {
		t.Errorf("Expected fetch mode from config, got %s", connection.FetchMode())
	}

	// Connecting again keeps the current session.
	if err := connection.Connect(context.Background(), "other"); err != nil {
		t.Fatalf("Expected no-op, got %v", err)
	}
	if connection.Zone() != core.DefaultZone {
		t.Errorf("Expected zone to stay %q, got %q", core.DefaultZone, connection.Zone())
	}
}

func TestConnectErrors(t *testing.T) {
	tests := []struct {
		name     string
		config   *core.Config
		zone     string
		expected error
	}{
		{"nil config", nil, "", ErrConfiguration},
		{"missing zone", testConfig(), "nowhere", ErrConfiguration},
		{"no scheme", &core.Config{Connections: map[string]core.Zone{"default": {}}}, "", ErrConfiguration},
		{"unknown driver", testConfig(), "broken", ErrConnectFailed},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			connection := New(test.config)
			err := connection.Connect(context.Background(), test.zone)
			if !errors.Is(err, test.expected) {
				t.Fatalf("Expected %v, got %v", test.expected, err)
			}
			if connection.Verify() != ErrNotConnected {
				t.Error("Expected connection to stay unconnected")
			}
		})
	}
}

func TestSwitchTo(t *testing.T) {
	ctx := context.Background()

	unconnected := New(testConfig())
	if err := unconnected.SwitchTo(ctx, "other"); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("Expected ErrNotConnected, got %v", err)
	}

	connection := setupTestConnection(t)
	if _, err := connection.ExecDirect(ctx, "CREATE TABLE marker (id INTEGER)"); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	if err := connection.SwitchTo(ctx, "  "); !errors.Is(err, ErrInvalidZone) {
		t.Fatalf("Expected ErrInvalidZone, got %v", err)
	}
	if err := connection.SwitchTo(ctx, "nowhere"); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("Expected ErrConfiguration, got %v", err)
	}
	// The failed switches left the session alone.
	if connection.Zone() != core.DefaultZone {
		t.Fatalf("Expected zone %q, got %q", core.DefaultZone, connection.Zone())
	}
	countRows(t, connection, "marker")

	if err := connection.SwitchTo(ctx, "other"); err != nil {
		t.Fatalf("Failed to switch: %v", err)
	}
	if connection.Zone() != "other" {
		t.Errorf("Expected zone other, got %q", connection.Zone())
	}
	if _, err := connection.ExecDirect(ctx, "SELECT * FROM marker"); err == nil {
		t.Error("Expected marker table to be absent in the new zone")
	}
}

func TestClose(t *testing.T) {
	connection := setupTestConnection(t)
	if err := connection.Begin(context.Background()); err != nil {
		t.Fatalf("Failed to begin: %v", err)
	}

	if err := connection.Close(); err != nil {
		t.Fatalf("Failed to close: %v", err)
	}
	if connection.Verify() != ErrNotConnected {
		t.Error("Expected ErrNotConnected after close")
	}
	if connection.InTransaction() {
		t.Error("Expected transaction to be dropped on close")
	}
	if err := connection.Close(); err != nil {
		t.Errorf("Expected second close to be a no-op, got %v", err)
	}
}

func TestPrepareAndExecDirectErrors(t *testing.T) {
	ctx := context.Background()
	connection := setupTestConnection(t)

	_, err := connection.Prepare(ctx, "SELEC nonsense")
	var statementErr *StatementError
	if !errors.As(err, &statementErr) {
		t.Fatalf("Expected *StatementError, got %v", err)
	}
	if statementErr.Phase != PhasePrepare {
		t.Errorf("Expected prepare phase, got %s", statementErr.Phase)
	}

	_, err = connection.ExecDirect(ctx, "DROP TABLE missing_table")
	if !errors.As(err, &statementErr) {
		t.Fatalf("Expected *StatementError, got %v", err)
	}
	if statementErr.Phase != PhaseExecute {
		t.Errorf("Expected execute phase, got %s", statementErr.Phase)
	}

	unconnected := New(testConfig())
	if _, err := unconnected.Prepare(ctx, "SELECT 1"); err != ErrNotConnected {
		t.Errorf("Expected ErrNotConnected, got %v", err)
	}
	if _, err := unconnected.ExecDirect(ctx, "SELECT 1"); err != ErrNotConnected {
		t.Errorf("Expected ErrNotConnected, got %v", err)
	}
}

func TestBind(t *testing.T) {
	connection := setupTestConnection(t)

	query, args, err := connection.Bind("SELECT * FROM t WHERE a = :a AND b = :b", core.Named{"b": 2, "a": "x"})
	if err != nil {
		t.Fatalf("Failed to bind: %v", err)
	}
	if query != "SELECT * FROM t WHERE a = ? AND b = ?" {
		t.Errorf("Unexpected query %q", query)
	}
	if len(args) != 2 || args[0] != "x" || args[1] != 2 {
		t.Errorf("Unexpected args %v", args)
	}

	query, args, err = connection.Bind("SELECT ?", core.Positional{1})
	if err != nil || query != "SELECT ?" || len(args) != 1 {
		t.Errorf("Unexpected positional bind: %q %v %v", query, args, err)
	}

	query, args, err = connection.Bind("SELECT 1", nil)
	if err != nil || query != "SELECT 1" || args != nil {
		t.Errorf("Unexpected empty bind: %q %v %v", query, args, err)
	}

	if _, _, err := connection.Bind("SELECT :missing", core.Named{"other": 1}); err == nil {
		t.Error("Expected error for missing named parameter")
	}
}

func TestLastInsertID(t *testing.T) {
	ctx := context.Background()

	// duckdb has no query of its own and reads the driver result.
	plain := setupTestConnection(t)
	if id, err := plain.LastInsertID(ctx, nil); err != nil || id != 0 {
		t.Errorf("Expected (0, nil) before any write, got (%d, %v)", id, err)
	}
	if _, err := plain.ExecDirect(ctx, "CREATE TABLE items (id INTEGER)"); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	res, err := plain.ExecDirect(ctx, "INSERT INTO items VALUES (7)")
	if err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}
	if _, err := plain.LastInsertID(ctx, res); err != nil {
		t.Errorf("Expected driver result to be read, got %v", err)
	}

	RegisterScheme("duckseq", Scheme{
		Driver:       "duckdb",
		DSN:          func(zone core.Zone) string { return zone.Database },
		LastInsertID: "SELECT currval('ids')",
	})
	connection := New(&core.Config{Connections: map[string]core.Zone{"default": {Scheme: "duckseq"}}})
	if err := connection.Connect(ctx, ""); err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(func() { connection.Close() })

	if _, err := connection.LastInsertID(ctx, nil); err == nil || !strings.Contains(err.Error(), "SELECT currval('ids')") {
		t.Errorf("Expected the scheme query to fail without a sequence, got %v", err)
	}

	for _, statement := range []string{
		"CREATE SEQUENCE ids",
		"CREATE TABLE items (id BIGINT DEFAULT nextval('ids'), name VARCHAR)",
		"INSERT INTO items (name) VALUES ('a'), ('b')",
	} {
		if _, err := connection.ExecDirect(ctx, statement); err != nil {
			t.Fatalf("Failed to run %s: %v", statement, err)
		}
	}
	if id, err := connection.LastInsertID(ctx, nil); err != nil || id != 2 {
		t.Errorf("Expected (2, nil), got (%d, %v)", id, err)
	}

	// Inside a transaction the query runs on the transaction.
	if err := connection.Begin(ctx); err != nil {
		t.Fatalf("Failed to begin: %v", err)
	}
	if _, err := connection.ExecDirect(ctx, "INSERT INTO items (name) VALUES ('c')"); err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}
	if id, err := connection.LastInsertID(ctx, nil); err != nil || id != 3 {
		t.Errorf("Expected (3, nil) inside the transaction, got (%d, %v)", id, err)
	}
	if err := connection.Rollback(); err != nil {
		t.Fatalf("Failed to rollback: %v", err)
	}

	unconnected := New(testConfig())
	if _, err := unconnected.LastInsertID(ctx, nil); err != ErrNotConnected {
		t.Errorf("Expected ErrNotConnected, got %v", err)
	}
}

func TestPostgresSchemesReadLastval(t *testing.T) {
	for _, name := range []string{"pgsql", "postgres"} {
		scheme, err := lookupScheme(core.Zone{Scheme: name})
		if err != nil {
			t.Fatalf("Unexpected error for %s: %v", name, err)
		}
		if scheme.LastInsertID != "SELECT lastval()" {
			t.Errorf("Expected %s to read lastval(), got %q", name, scheme.LastInsertID)
		}
	}
	if scheme, _ := lookupScheme(core.Zone{Scheme: "duckdb"}); scheme.LastInsertID != "" {
		t.Errorf("Expected duckdb to use the driver result, got %q", scheme.LastInsertID)
	}
}
