// Package sql gatekeeps and assembles SQL text for GateDB.
//
// It does not parse SQL into a syntax tree. The lexer tokenizes statements,
// the validator checks a statement against the shape accepted for its kind,
// and the builder turns a QuerySpec into SQL text.
//
// # Validation
//
//	if err := sql.Validate(sql.UpdateKind, "UPDATE users SET name = :name WHERE id = :id"); err != nil {
//	    // errors.Is(err, sql.ErrStatementRejected)
//	}
//
// Classify reports the kind of a raw statement from its leading keyword:
//
//	sql.Classify("select * from users") // sql.SelectKind
//
// # Building
//
//	query, err := sql.Build(sql.QuerySpec{
//	    Table: "users",
//	    Where: "active = 1",
//	    Order: sql.OrderBy(sql.Descending, "created"),
//	    Limit: sql.Page(20, 10),
//	})
//	// SELECT * FROM users WHERE active = 1 ORDER BY created DESC LIMIT 20, 10
//
// Insert and update values are written without quotes after escaping, so
// callers usually pass sql.Param values and bind them at execution.
package sql
