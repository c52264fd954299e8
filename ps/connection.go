package ps

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/nickyhof/GateDB/core"
)

var (
	ErrConfiguration = errors.New("connection configuration error")
	ErrConnectFailed = errors.New("connection failed")
	ErrNotConnected  = errors.New("not connected")
	ErrInvalidZone   = errors.New("invalid zone")
)

// Phase is the step of a statement cycle that failed.
type Phase int

const (
	PhasePrepare Phase = iota
	PhaseExecute
)

func (phase Phase) String() string {
	if phase == PhasePrepare {
		return "prepare"
	}
	return "execute"
}

// StatementError is a driver failure tagged with the phase it happened in.
type StatementError struct {
	Phase Phase
	Err   error
}

func (e *StatementError) Error() string {
	return e.Phase.String() + ": " + e.Err.Error()
}

func (e *StatementError) Unwrap() error {
	return e.Err
}

// Connection owns a single pinned database session for one zone.
// It is not safe for concurrent use; give each caller its own Connection.
type Connection struct {
	config *core.Config
	db     *sqlx.DB
	conn   *sqlx.Conn
	tx     *sqlx.Tx
	zone   string
	scheme Scheme
	fetch  core.FetchMode
}

// New returns an unconnected Connection over config.
func New(config *core.Config) *Connection {
	return &Connection{config: config}
}

// Connect opens a session to zone. It is a no-op when already connected.
// An empty zone selects core.DefaultZone.
func (connection *Connection) Connect(ctx context.Context, zone string) error {
	if connection.conn != nil {
		return nil
	}
	if zone == "" {
		zone = core.DefaultZone
	}

	profile, ok := connection.config.Zone(zone)
	if !ok {
		return fmt.Errorf("%w: zone %q is not configured", ErrConfiguration, zone)
	}

	scheme, err := lookupScheme(profile)
	if err != nil {
		return err
	}

	db, err := sqlx.Open(scheme.Driver, scheme.DSN(profile))
	if err != nil {
		return fmt.Errorf("%w: zone %q: %v", ErrConnectFailed, zone, err)
	}

	conn, err := db.Connx(ctx)
	if err != nil {
		db.Close()
		return fmt.Errorf("%w: zone %q: %v", ErrConnectFailed, zone, err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		db.Close()
		return fmt.Errorf("%w: zone %q: %v", ErrConnectFailed, zone, err)
	}

	for _, statement := range scheme.Init {
		if _, err := conn.ExecContext(ctx, statement); err != nil {
			conn.Close()
			db.Close()
			return fmt.Errorf("%w: zone %q: %s: %v", ErrConnectFailed, zone, statement, err)
		}
	}

	connection.db = db
	connection.conn = conn
	connection.zone = zone
	connection.scheme = scheme
	connection.fetch = connection.config.Fetch
	return nil
}

// SwitchTo replaces the current session with one to zone. The current
// session is kept when zone is blank or not configured.
func (connection *Connection) SwitchTo(ctx context.Context, zone string) error {
	if err := connection.Verify(); err != nil {
		return err
	}
	if strings.TrimSpace(zone) == "" {
		return fmt.Errorf("%w: zone name is empty", ErrInvalidZone)
	}
	if _, ok := connection.config.Zone(zone); !ok {
		return fmt.Errorf("%w: zone %q is not configured", ErrConfiguration, zone)
	}

	if err := connection.Close(); err != nil {
		return err
	}
	return connection.Connect(ctx, zone)
}

// Verify returns ErrNotConnected when there is no live session.
func (connection *Connection) Verify() error {
	if connection == nil || connection.conn == nil {
		return ErrNotConnected
	}
	return nil
}

// Close rolls back any open transaction and releases the session.
func (connection *Connection) Close() error {
	if connection.conn == nil {
		return nil
	}

	var errs []error
	if connection.tx != nil {
		if err := connection.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			errs = append(errs, err)
		}
		connection.tx = nil
	}
	if err := connection.conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		errs = append(errs, err)
	}
	if err := connection.db.Close(); err != nil {
		errs = append(errs, err)
	}

	connection.conn = nil
	connection.db = nil
	connection.zone = ""
	return errors.Join(errs...)
}

// Zone returns the connected zone name, or "" when unconnected.
func (connection *Connection) Zone() string {
	return connection.zone
}

func (connection *Connection) FetchMode() core.FetchMode {
	return connection.fetch
}

// DriverName returns the database/sql driver of the session.
func (connection *Connection) DriverName() string {
	if connection.conn == nil {
		return ""
	}
	return connection.scheme.Driver
}

// LastInsertID returns the id generated by the latest insert. Schemes with
// a LastInsertID query run it on the session, inside the open transaction
// if any; the others read result, which may be nil before any write.
func (connection *Connection) LastInsertID(ctx context.Context, result sql.Result) (int64, error) {
	if err := connection.Verify(); err != nil {
		return 0, err
	}

	if query := connection.scheme.LastInsertID; query != "" {
		var row *sqlx.Row
		if connection.tx != nil {
			row = connection.tx.QueryRowxContext(ctx, query)
		} else {
			row = connection.conn.QueryRowxContext(ctx, query)
		}
		var id int64
		if err := row.Scan(&id); err != nil {
			return 0, fmt.Errorf("%s: %w", query, err)
		}
		return id, nil
	}

	if result == nil {
		return 0, nil
	}
	return result.LastInsertId()
}

// Bind rewrites query for the session driver and flattens bindings into
// driver arguments. Named bindings fill :name placeholders; positional
// bindings fill ? placeholders.
func (connection *Connection) Bind(query string, bindings core.Bindings) (string, []any, error) {
	if err := connection.Verify(); err != nil {
		return "", nil, err
	}

	switch b := bindings.(type) {
	case nil:
		return query, nil, nil
	case core.Named:
		if len(b) == 0 {
			return query, nil, nil
		}
		bound, args, err := sqlx.Named(query, map[string]any(b))
		if err != nil {
			return "", nil, err
		}
		return connection.conn.Rebind(bound), args, nil
	case core.Positional:
		return connection.conn.Rebind(query), []any(b), nil
	default:
		return "", nil, fmt.Errorf("unsupported bindings %T", bindings)
	}
}

// Prepare prepares query on the session, inside the open transaction if
// there is one.
func (connection *Connection) Prepare(ctx context.Context, query string) (*sqlx.Stmt, error) {
	if err := connection.Verify(); err != nil {
		return nil, err
	}

	var (
		stmt *sqlx.Stmt
		err  error
	)
	if connection.tx != nil {
		stmt, err = connection.tx.PreparexContext(ctx, query)
	} else {
		stmt, err = connection.conn.PreparexContext(ctx, query)
	}
	if err != nil {
		return nil, &StatementError{Phase: PhasePrepare, Err: err}
	}
	return stmt, nil
}

// ExecDirect runs query without preparing it.
func (connection *Connection) ExecDirect(ctx context.Context, query string) (sql.Result, error) {
	if err := connection.Verify(); err != nil {
		return nil, err
	}

	var (
		result sql.Result
		err    error
	)
	if connection.tx != nil {
		result, err = connection.tx.ExecContext(ctx, query)
	} else {
		result, err = connection.conn.ExecContext(ctx, query)
	}
	if err != nil {
		return nil, &StatementError{Phase: PhaseExecute, Err: err}
	}
	return result, nil
}
