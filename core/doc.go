// Package core provides core types used throughout GateDB.
//
// The package defines the connection configuration (Config and Zone), the
// fetch mode applied to result rows, the Record type, statement parameter
// bindings and the diagnostic types kept by the error tracker.
//
// # Configuration
//
// A Config maps zone names to connection profiles:
//
//	config := core.Config{
//	    Fetch: core.FetchAssoc,
//	    Connections: map[string]core.Zone{
//	        "default": {Scheme: "pgsql", Host: "localhost", Port: "5432", Database: "app", User: "app"},
//	        "archive": {Scheme: "duckdb", Database: "/var/lib/app/archive.duckdb"},
//	    },
//	}
//
// # Bindings
//
// Statement parameters are either named or positional:
//
//	core.Named{"id": 1, "name": "Alice"}  // ... WHERE id = :id
//	core.Positional{1, "Alice"}           // ... WHERE id = ?
//
// # Identity
//
// Identity identifies who a session runs for:
//
//	identity := core.Identity{
//	    Name:  "John Doe",
//	    Email: "john@example.com",
//	}
package core
