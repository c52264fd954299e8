// Package ps manages database sessions for GateDB.
//
// A Connection owns exactly one pinned session to one zone of a
// core.Config. Zones name a scheme that selects a database/sql driver:
//
//	pgsql     github.com/jackc/pgx/v5/stdlib
//	postgres  github.com/lib/pq
//	duckdb    github.com/duckdb/duckdb-go/v2
//
// Other schemes are used as driver names directly. RegisterScheme adds
// more.
//
// # Sessions
//
//	connection := ps.New(config)
//	if err := connection.Connect(ctx, "default"); err != nil {
//	    log.Fatal(err)
//	}
//	defer connection.Close()
//
// # Transactions
//
// One transaction per session, no nesting:
//
//	connection.Begin(ctx)
//	stmt, _ := connection.Prepare(ctx, "INSERT INTO t (a) VALUES (?)")
//	stmt.ExecContext(ctx, 1)
//	connection.Rollback()
//
// # Configuration
//
// LoadConfig reads the JSON configuration from a path, an http(s) URL or
// an s3://bucket/key object.
package ps
