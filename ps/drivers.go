package ps

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/nickyhof/GateDB/core"
)

// Scheme describes how a zone scheme maps onto a database/sql driver.
type Scheme struct {
	// Driver is the registered database/sql driver name.
	Driver string
	// DSN builds the data source name for a zone.
	DSN func(zone core.Zone) string
	// Init runs once on every new session.
	Init []string
	// LastInsertID is a single-value query that reads the id generated by
	// the latest insert on the session. Schemes without one use
	// sql.Result.LastInsertId.
	LastInsertID string
}

var utf8Init = []string{"SET client_encoding TO 'UTF8'"}

const pgLastInsertID = "SELECT lastval()"

var (
	schemesMu sync.RWMutex
	schemes   = map[string]Scheme{
		"pgsql":    {Driver: "pgx", DSN: keywordDSN, Init: utf8Init, LastInsertID: pgLastInsertID},
		"postgres": {Driver: "postgres", DSN: keywordDSN, Init: utf8Init, LastInsertID: pgLastInsertID},
		"duckdb":   {Driver: "duckdb", DSN: func(zone core.Zone) string { return zone.Database }},
	}
)

func init() {
	sqlx.BindDriver("duckdb", sqlx.QUESTION)
}

// RegisterScheme adds or replaces a scheme.
func RegisterScheme(name string, scheme Scheme) {
	schemesMu.Lock()
	defer schemesMu.Unlock()
	schemes[strings.ToLower(name)] = scheme
}

// Schemes lists the registered scheme names.
func Schemes() []string {
	schemesMu.RLock()
	defer schemesMu.RUnlock()

	names := make([]string, 0, len(schemes))
	for name := range schemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// lookupScheme resolves the scheme of zone. Unregistered schemes are used
// as driver names with a semicolon separated DSN.
func lookupScheme(zone core.Zone) (Scheme, error) {
	name := strings.ToLower(strings.TrimSpace(zone.Scheme))
	if name == "" {
		return Scheme{}, fmt.Errorf("%w: zone has no scheme", ErrConfiguration)
	}

	schemesMu.RLock()
	scheme, ok := schemes[name]
	schemesMu.RUnlock()

	if !ok {
		scheme = Scheme{Driver: name, DSN: semicolonDSN}
	}
	if zone.Driver != "" {
		scheme.Driver = zone.Driver
	}
	if scheme.DSN == nil {
		scheme.DSN = semicolonDSN
	}
	return scheme, nil
}

func dsnPairs(zone core.Zone) [][2]string {
	pairs := [][2]string{
		{"host", zone.Host},
		{"port", zone.Port},
		{"dbname", zone.Database},
		{"user", zone.User},
		{"password", zone.Password},
	}
	var out [][2]string
	for _, pair := range pairs {
		if pair[1] != "" {
			out = append(out, pair)
		}
	}
	return out
}

// keywordDSN renders host=... port=... in the libpq keyword format.
func keywordDSN(zone core.Zone) string {
	var parts []string
	for _, pair := range dsnPairs(zone) {
		parts = append(parts, pair[0]+"="+quoteKeywordValue(pair[1]))
	}
	return strings.Join(parts, " ")
}

func quoteKeywordValue(value string) string {
	if !strings.ContainsAny(value, ` '\`) {
		return value
	}
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(value)
	return "'" + escaped + "'"
}

func semicolonDSN(zone core.Zone) string {
	var parts []string
	for _, pair := range dsnPairs(zone) {
		parts = append(parts, pair[0]+"="+pair[1])
	}
	return strings.Join(parts, ";")
}
