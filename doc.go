// Package GateDB is a small relational database access layer over
// database/sql.
//
// It checks raw SQL against the statement shape expected by each entry
// point, builds SQL from structured query descriptions, binds parameters
// and executes them on one pinned session per engine. Every engine keeps
// its own transaction and the diagnostics of its latest execution.
//
// # Quick Start
//
//	config := &core.Config{Connections: map[string]core.Zone{
//	    "default": {Scheme: "pgsql", Host: "localhost", Port: "5432", Database: "app", User: "app", Password: "secret"},
//	}}
//	gate := GateDB.Open(config)
//	engine, err := gate.Connect(ctx, core.Identity{Name: "App", Email: "app@example.com"}, "default")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Close()
//
//	engine.Statement(ctx, "CREATE TABLE users (id INT PRIMARY KEY, name TEXT)")
//	engine.Insert(ctx, "INSERT INTO users (id, name) VALUES (:id, :name)",
//	    core.Named{"id": 1, "name": "Alice"},
//	    core.Named{"id": 2, "name": "Bob"},
//	)
//
//	result, _ := engine.Select(ctx, "SELECT * FROM users", nil)
//	result.Display(os.Stdout)
//
// # Supported Schemes
//
//   - pgsql: PostgreSQL through pgx
//   - postgres: PostgreSQL through lib/pq
//   - duckdb: DuckDB, in memory when no database is named
//   - any other registered database/sql driver
package GateDB
