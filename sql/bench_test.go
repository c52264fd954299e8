package sql

import "testing"

var benchmarkStatements = []struct {
	name  string
	kind  Kind
	query string
}{
	{"SimpleSelect", SelectKind, "SELECT * FROM users"},
	{"SelectWithWhere", SelectKind, "SELECT * FROM users WHERE age > 30"},
	{"SelectComplex", SelectKind, "SELECT id, name FROM users WHERE age > 25 AND city = 'City5' ORDER BY name ASC LIMIT 10"},
	{"Insert", InsertKind, "INSERT INTO users (id, name, age, city) VALUES (1, 'Test', 25, 'NYC')"},
	{"InsertNamed", InsertKind, "INSERT INTO users (id, name) VALUES (:id, :name)"},
	{"Update", UpdateKind, "UPDATE users SET age = 30 WHERE id = 1"},
	{"Delete", DeleteKind, "DELETE FROM users WHERE id = 1"},
	{"CreateTable", DDLKind, "CREATE TABLE users (id BIGINT PRIMARY KEY, name VARCHAR)"},
}

func BenchmarkLexer(b *testing.B) {
	query := "SELECT id, name FROM users WHERE age > 25 AND city = 'City5' ORDER BY name ASC LIMIT 10"
	for i := 0; i < b.N; i++ {
		tokenize(query)
	}
}

func BenchmarkValidate(b *testing.B) {
	for _, statement := range benchmarkStatements {
		b.Run(statement.name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if err := Validate(statement.kind, statement.query); err != nil {
					b.Fatalf("Validate error: %v", err)
				}
			}
		})
	}
}

func BenchmarkClassify(b *testing.B) {
	for i := 0; i < b.N; i++ {
		for _, statement := range benchmarkStatements {
			if kind := Classify(statement.query); kind != statement.kind {
				b.Fatalf("Classify(%q) = %s, want %s", statement.query, kind, statement.kind)
			}
		}
	}
}

func BenchmarkBuild(b *testing.B) {
	specs := map[string]QuerySpec{
		"Select": {
			Kind:    SelectKind,
			Table:   "users",
			Columns: []string{"id", "name"},
			Where:   "age > 25",
			Order:   OrderBy(Descending, "age"),
			Limit:   Page(20, 10),
		},
		"Insert": {
			Kind:  InsertKind,
			Table: "users",
			Data:  Fields{{"name", "O'Brien"}, {"age", 42}, {"city", Param("city")}},
		},
		"Update": {
			Kind:  UpdateKind,
			Table: "users",
			Data:  Fields{{"age", 43}},
			Where: "id = 1",
		},
	}

	for name, spec := range specs {
		b.Run(name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := Build(spec); err != nil {
					b.Fatalf("Build error: %v", err)
				}
			}
		})
	}
}
