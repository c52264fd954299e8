// Package db provides the statement engine for GateDB.
//
// An Engine is one session: it owns a ps.Connection, runs statements
// through a prepare, bind and execute cycle and keeps the diagnostics of
// its latest execution.
//
// # Engine Usage
//
//	engine := db.NewEngine(ps.New(config), identity, logger)
//	if err := engine.Connect(ctx, "default"); err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Close()
//
//	result, err := engine.Select(ctx, "SELECT * FROM users WHERE id = :id", core.Named{"id": 1})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result.Display(os.Stdout)
//
// Select, Insert, Update and Delete only accept statements of their own
// shape; Statement accepts DDL. Rejected statements never reach the
// database and wrap sql.ErrStatementRejected.
//
// # Fetch Shape
//
// A Result with no rows fetches as nil, one row as a core.Record and more
// rows as a []core.Record. Every string in a fetched value is HTML escaped.
//
// # Diagnostics
//
// LastError returns the statement and connection diagnostics of the latest
// execution. Prepare failures are reported on the connection, execute
// failures on the statement.
package db
