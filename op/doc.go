// Package op provides record access to a single table over a session.
//
// TableOp builds plain statements and hands the driver's values back as
// core.Record without mapping them onto types.
//
//	users := op.GetTable("users", connection)
//
//	count, _ := users.Count(ctx)
//	all, _ := users.All(ctx)
//	adults, _ := users.Where(ctx, "age >= :age", core.Named{"age": 18})
//
//	for record, err := range users.Scan(ctx, "", nil) {
//	    if err != nil {
//	        break
//	    }
//	    fmt.Println(record["name"])
//	}
//
//	users.Insert(ctx, sql.Fields{{Column: "name", Value: "Ada"}})
//
// Engine.Table returns a TableOp bound to the engine's session.
package op
