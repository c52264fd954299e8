package db

import (
	"context"
	"io"
	"log"
	"strconv"
	"testing"

	"github.com/nickyhof/GateDB/core"
	"github.com/nickyhof/GateDB/ps"
	"github.com/nickyhof/GateDB/sql"
)

// setupBenchmarkEngine creates a session with 1000 users.
func setupBenchmarkEngine(b *testing.B) *Engine {
	b.Helper()
	ctx := context.Background()

	engine := NewEngine(ps.New(testConfig(core.FetchAssoc)), core.Identity{Name: "benchmark", Email: "bench@test.com"}, log.New(io.Discard, "", 0))
	if err := engine.Connect(ctx, ""); err != nil {
		b.Fatalf("Failed to connect: %v", err)
	}
	b.Cleanup(func() { engine.Close() })

	if _, err := engine.Statement(ctx, "CREATE TABLE users (id BIGINT PRIMARY KEY, name VARCHAR, age BIGINT, city VARCHAR)"); err != nil {
		b.Fatalf("Failed to create table: %v", err)
	}

	batch := make([]core.Bindings, 0, 1000)
	for i := 1; i <= 1000; i++ {
		batch = append(batch, core.Positional{i, "User" + strconv.Itoa(i), 20 + i%50, "City" + strconv.Itoa(i%10)})
	}
	if _, err := engine.Insert(ctx, "INSERT INTO users (id, name, age, city) VALUES (?, ?, ?, ?)", batch...); err != nil {
		b.Fatalf("Failed to insert: %v", err)
	}

	return engine
}

func BenchmarkSelect(b *testing.B) {
	engine := setupBenchmarkEngine(b)
	ctx := context.Background()

	queries := []struct {
		name     string
		query    string
		bindings core.Bindings
	}{
		{"All", "SELECT * FROM users", nil},
		{"Where", "SELECT * FROM users WHERE age > ?", core.Positional{40}},
		{"Named", "SELECT * FROM users WHERE city = :city", core.Named{"city": "City3"}},
		{"OrderBy", "SELECT * FROM users ORDER BY age DESC", nil},
		{"Limit", "SELECT * FROM users LIMIT 10", nil},
		{"Single", "SELECT * FROM users WHERE id = ?", core.Positional{500}},
		{"GroupBy", "SELECT city, count(*) AS n FROM users GROUP BY city", nil},
	}

	for _, q := range queries {
		b.Run(q.name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := engine.Select(ctx, q.query, q.bindings); err != nil {
					b.Fatalf("Select error: %v", err)
				}
			}
		})
	}
}

func BenchmarkInsert(b *testing.B) {
	engine := setupBenchmarkEngine(b)
	ctx := context.Background()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := engine.Insert(ctx, "INSERT INTO users (id, name, age, city) VALUES (?, ?, ?, ?)", core.Positional{10000 + i, "Bench", 30, "NYC"}); err != nil {
			b.Fatalf("Insert error: %v", err)
		}
	}
}

func BenchmarkUpdate(b *testing.B) {
	engine := setupBenchmarkEngine(b)
	ctx := context.Background()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := engine.Update(ctx, "UPDATE users SET age = ? WHERE id = ?", core.Positional{99, i%1000 + 1}); err != nil {
			b.Fatalf("Update error: %v", err)
		}
	}
}

func BenchmarkQuery(b *testing.B) {
	engine := setupBenchmarkEngine(b)
	ctx := context.Background()
	spec := sql.QuerySpec{
		Kind:    sql.SelectKind,
		Table:   "users",
		Columns: []string{"id", "name"},
		Where:   "age > :age",
		Order:   sql.OrderBy(sql.Ascending, "id"),
		Limit:   sql.Take(50),
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := engine.Query(ctx, spec, core.Named{"age": 30}, ReturnRows); err != nil {
			b.Fatalf("Query error: %v", err)
		}
	}
}

func BenchmarkSanitize(b *testing.B) {
	rows := make([]core.Record, 100)
	for i := range rows {
		rows[i] = core.Record{"id": int64(i), "name": "<b>User & co</b>", "city": "City"}
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		sanitize(rows)
	}
}
