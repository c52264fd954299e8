package main

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/nickyhof/GateDB"
	"github.com/nickyhof/GateDB/core"
	"github.com/nickyhof/GateDB/db"
	"github.com/nickyhof/GateDB/sql"
)

var errAuthRequired = errors.New("authentication required: send AUTH JWT <token>")

// Server is a TCP SQL gateway. Every client gets its own session.
type Server struct {
	listener   net.Listener
	instance   *GateDB.Instance
	identity   core.Identity
	zone       string
	authConfig *AuthConfig
	tlsEnabled bool

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewServer creates a server whose sessions run as identity against zone.
func NewServer(instance *GateDB.Instance, identity core.Identity, zone string) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		instance: instance,
		identity: identity,
		zone:     zone,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// NewServerWithAuth creates a server that requires AUTH before any query
// when authConfig is enabled. Sessions run as the authenticated identity.
func NewServerWithAuth(instance *GateDB.Instance, identity core.Identity, zone string, authConfig *AuthConfig) *Server {
	server := NewServer(instance, identity, zone)
	server.authConfig = authConfig
	return server
}

// Start begins listening for connections on the specified address.
func (s *Server) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.listener = listener

	log.Printf("SQL Gateway listening on %s", listener.Addr())

	go s.acceptLoop()
	return nil
}

// StartTLS is Start over TLS with the given certificate pair.
func (s *Server) StartTLS(addr, certFile, keyFile string) error {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return fmt.Errorf("failed to load TLS certificate: %w", err)
	}

	listener, err := tls.Listen("tcp", addr, &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	})
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.listener = listener
	s.tlsEnabled = true

	log.Printf("SQL Gateway listening on %s (TLS)", listener.Addr())

	go s.acceptLoop()
	return nil
}

// TLSEnabled reports whether the server was started with StartTLS.
func (s *Server) TLSEnabled() bool {
	return s.tlsEnabled
}

// AuthEnabled reports whether clients must authenticate.
func (s *Server) AuthEnabled() bool {
	return s.authConfig != nil && s.authConfig.Enabled
}

// Stop gracefully shuts down the server. Open transactions are rolled back.
func (s *Server) Stop() error {
	close(s.done)
	s.cancel()
	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	return nil
}

// Addr returns the server's listening address.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				log.Printf("Accept error: %v", err)
				continue
			}
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

// session is the per-client state.
type session struct {
	state  ConnectionState
	engine *db.Engine
}

func (sess *session) close() {
	if sess.engine != nil {
		sess.engine.Close()
		sess.engine = nil
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	log.Printf("Client connected: %s", conn.RemoteAddr())

	sess := &session{}
	defer sess.close()

	// Unblock the reader on shutdown.
	finished := make(chan struct{})
	defer close(finished)
	go func() {
		select {
		case <-s.done:
			conn.Close()
		case <-finished:
		}
	}()

	reader := bufio.NewReader(conn)

	for {
		select {
		case <-s.done:
			return
		default:
		}

		// Read until newline (one request per line)
		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF && !errors.Is(err, net.ErrClosed) {
				log.Printf("Read error from %s: %v", conn.RemoteAddr(), err)
			}
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Handle special commands
		if strings.EqualFold(line, "quit") || strings.EqualFold(line, "exit") {
			log.Printf("Client disconnected: %s", conn.RemoteAddr())
			return
		}

		response := s.handleLine(line, sess)

		data, err := EncodeResponse(response)
		if err != nil {
			log.Printf("Failed to encode response: %v", err)
			continue
		}

		_, err = conn.Write(data)
		if err != nil {
			log.Printf("Write error to %s: %v", conn.RemoteAddr(), err)
			return
		}
	}
}

func (s *Server) handleLine(line string, sess *session) Response {
	if strings.HasPrefix(strings.ToUpper(line), "AUTH ") {
		if !s.AuthEnabled() {
			return errorResponse("auth", errors.New("authentication not enabled"))
		}
		response := s.handleAuth(line, &sess.state)
		if response.Success {
			// A new identity gets a new session.
			sess.close()
		}
		return response
	}

	if s.AuthEnabled() {
		if !sess.state.IsAuthenticated() {
			return errorResponse("", errAuthRequired)
		}
		if !sess.state.tokenExpiry.IsZero() && time.Now().After(sess.state.tokenExpiry) {
			sess.state = ConnectionState{}
			sess.close()
			return errorResponse("auth", errors.New("token expired"))
		}
	}

	req, err := DecodeRequest([]byte(line))
	if err != nil {
		return errorResponse("", fmt.Errorf("invalid request: %w", err))
	}

	engine, err := s.engineFor(sess)
	if err != nil {
		return errorResponse("", err)
	}

	response := s.execute(engine, req)
	if engine.Zone() == "" {
		// A failed zone switch leaves the engine unconnected; the next
		// request reconnects to the server zone.
		sess.close()
	}
	return response
}

// engineFor returns the client's session, connecting it on first use.
func (s *Server) engineFor(sess *session) (*db.Engine, error) {
	if sess.engine != nil {
		return sess.engine, nil
	}

	identity := s.identity
	if sess.state.IsAuthenticated() {
		identity = *sess.state.Identity()
	}

	engine, err := s.instance.Connect(s.ctx, identity, s.zone)
	if err != nil {
		return nil, err
	}
	sess.engine = engine
	return engine, nil
}

func (s *Server) execute(engine *db.Engine, req Request) Response {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return errorResponse("", errors.New("empty query"))
	}

	if strings.EqualFold(strings.TrimSuffix(query, ";"), "errors") {
		return resultResponse("errors", engine.LastError())
	}

	ctx := s.ctx
	start := time.Now()

	switch sql.Classify(query) {
	case sql.SelectKind:
		bindings, err := req.Bindings()
		if err != nil {
			return errorResponse("", err)
		}
		result, err := engine.Select(ctx, query, bindings)
		if err != nil {
			return errorResponse("query", err)
		}
		return resultResponse("query", QueryResponse{
			Columns: result.Columns,
			Data:    result.Value(),
			Shape:   result.Shape().String(),
			TimeMs:  result.ExecutionTimeSec * 1000,
		})

	case sql.InsertKind:
		batch, err := req.BatchBindings()
		if err != nil {
			return errorResponse("", err)
		}
		affected, err := engine.Insert(ctx, query, batch...)
		return execResponse(affected, start, err)

	case sql.UpdateKind:
		bindings, err := req.Bindings()
		if err != nil {
			return errorResponse("", err)
		}
		affected, err := engine.Update(ctx, query, bindings)
		return execResponse(affected, start, err)

	case sql.DeleteKind:
		bindings, err := req.Bindings()
		if err != nil {
			return errorResponse("", err)
		}
		affected, err := engine.Delete(ctx, query, bindings)
		return execResponse(affected, start, err)

	case sql.DDLKind:
		affected, err := engine.Statement(ctx, query)
		return execResponse(affected, start, err)

	case sql.BeginKind:
		// The transaction outlives this request, so it is bound to the server.
		return transactionResponse(engine, engine.Begin(s.ctx))

	case sql.CommitKind:
		return transactionResponse(engine, engine.Commit())

	case sql.RollbackKind:
		return transactionResponse(engine, engine.Rollback())

	case sql.UseKind:
		zone, err := parseUse(query)
		if err != nil {
			return errorResponse("zone", err)
		}
		if err := engine.SwitchTo(ctx, zone); err != nil {
			return errorResponse("zone", err)
		}
		log.Printf("Session %s switched to zone %s", engine.Identity(), zone)
		return resultResponse("zone", ZoneResponse{Zone: engine.Zone()})

	default:
		return errorResponse("", fmt.Errorf("unsupported statement: %s", firstWord(query)))
	}
}

// parseUse extracts the zone name from USE <zone>.
func parseUse(query string) (string, error) {
	fields := strings.Fields(strings.TrimSuffix(strings.TrimSpace(query), ";"))
	if len(fields) != 2 {
		return "", errors.New("invalid USE command: expected USE <zone>")
	}
	return strings.Trim(fields[1], "`\"'"), nil
}

func firstWord(query string) string {
	if fields := strings.Fields(query); len(fields) > 0 {
		return strings.ToUpper(fields[0])
	}
	return ""
}

func execResponse(affected int64, start time.Time, err error) Response {
	if err != nil {
		return errorResponse("exec", err)
	}
	return resultResponse("exec", ExecResponse{
		RowsAffected: affected,
		TimeMs:       float64(time.Since(start).Microseconds()) / 1000,
	})
}

func transactionResponse(engine *db.Engine, err error) Response {
	if err != nil {
		return errorResponse("transaction", err)
	}
	return resultResponse("transaction", TransactionResponse{InTransaction: engine.InTransaction()})
}

func resultResponse(kind string, result any) Response {
	data, err := json.Marshal(result)
	if err != nil {
		return errorResponse(kind, fmt.Errorf("failed to encode result: %w", err))
	}
	return Response{
		Success: true,
		Type:    kind,
		Result:  data,
	}
}

func errorResponse(kind string, err error) Response {
	return Response{
		Success: false,
		Type:    kind,
		Error:   err.Error(),
	}
}
