package main

/*
#include <stdlib.h>
*/
import "C"
import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unsafe"

	"github.com/nickyhof/GateDB"
	"github.com/nickyhof/GateDB/core"
	"github.com/nickyhof/GateDB/db"
	"github.com/nickyhof/GateDB/sql"
)

// Handle is one open session
type Handle struct {
	engine *db.Engine
}

var (
	handlesMu  sync.Mutex
	handles    = make(map[int]*Handle)
	nextHandle = 1
)

// Response mirrors the server protocol for consistency
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Type    string          `json:"type,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
}

type QueryResponse struct {
	Columns         []string `json:"columns"`
	Data            any      `json:"data"`
	Shape           string   `json:"shape"`
	ExecutionTimeMs float64  `json:"execution_time_ms"`
}

type ExecResponse struct {
	RowsAffected int64 `json:"rows_affected"`
}

var identity = core.Identity{
	Name:  "GateDB Bindings",
	Email: "bindings@gatedb.local",
}

func register(engine *db.Engine) C.int {
	handlesMu.Lock()
	defer handlesMu.Unlock()

	handle := nextHandle
	nextHandle++
	handles[handle] = &Handle{engine: engine}
	return C.int(handle)
}

func lookup(handle C.int) (*Handle, bool) {
	handlesMu.Lock()
	defer handlesMu.Unlock()
	h, ok := handles[int(handle)]
	return h, ok
}

func open(config *core.Config, zone string) C.int {
	engine, err := GateDB.Open(config).Connect(context.Background(), identity, zone)
	if err != nil {
		return -1
	}
	return register(engine)
}

//export gatedb_open_memory
func gatedb_open_memory() C.int {
	return open(&core.Config{Connections: map[string]core.Zone{"default": {Scheme: "duckdb"}}}, "default")
}

//export gatedb_open_config
func gatedb_open_config(configJSON *C.char, zone *C.char) C.int {
	var config core.Config
	if err := json.Unmarshal([]byte(C.GoString(configJSON)), &config); err != nil {
		return -1
	}
	return open(&config, C.GoString(zone))
}

//export gatedb_close
func gatedb_close(handle C.int) {
	handlesMu.Lock()
	h, ok := handles[int(handle)]
	delete(handles, int(handle))
	handlesMu.Unlock()

	if ok {
		h.engine.Close()
	}
}

// gatedb_execute runs one statement. params is a JSON object or array, or
// NULL.
//
//export gatedb_execute
func gatedb_execute(handle C.int, query *C.char, params *C.char) *C.char {
	h, ok := lookup(handle)
	if !ok {
		return makeErrorResponse("Invalid handle")
	}

	var bindings core.Bindings
	if params != nil {
		decoded, err := decodeParams(C.GoString(params))
		if err != nil {
			return makeErrorResponse(err.Error())
		}
		bindings = decoded
	}

	resp, err := execute(h.engine, C.GoString(query), bindings)
	if err != nil {
		return makeErrorResponse(err.Error())
	}
	return makeResponse(resp)
}

//export gatedb_errors
func gatedb_errors(handle C.int) *C.char {
	h, ok := lookup(handle)
	if !ok {
		return makeErrorResponse("Invalid handle")
	}
	data, _ := json.Marshal(h.engine.LastError())
	return makeResponse(Response{Success: true, Type: "errors", Result: data})
}

//export gatedb_free
func gatedb_free(ptr *C.char) {
	C.free(unsafe.Pointer(ptr))
}

func execute(engine *db.Engine, query string, bindings core.Bindings) (Response, error) {
	ctx := context.Background()

	var affected int64
	var err error

	switch sql.Classify(query) {
	case sql.SelectKind:
		result, err := engine.Select(ctx, query, bindings)
		if err != nil {
			return Response{}, err
		}
		data, _ := json.Marshal(QueryResponse{
			Columns:         result.Columns,
			Data:            result.Value(),
			Shape:           result.Shape().String(),
			ExecutionTimeMs: result.ExecutionTimeSec * 1000,
		})
		return Response{Success: true, Type: "query", Result: data}, nil
	case sql.InsertKind:
		affected, err = engine.Insert(ctx, query, bindings)
	case sql.UpdateKind:
		affected, err = engine.Update(ctx, query, bindings)
	case sql.DeleteKind:
		affected, err = engine.Delete(ctx, query, bindings)
	case sql.DDLKind:
		affected, err = engine.Statement(ctx, query)
	case sql.BeginKind:
		err = engine.Begin(ctx)
	case sql.CommitKind:
		err = engine.Commit()
	case sql.RollbackKind:
		err = engine.Rollback()
	case sql.UseKind:
		fields := strings.Fields(strings.TrimSuffix(query, ";"))
		if len(fields) != 2 {
			return Response{}, errors.New("usage: USE <zone>")
		}
		err = engine.SwitchTo(ctx, fields[1])
	default:
		return Response{}, fmt.Errorf("unsupported statement: %s", sql.Classify(query))
	}
	if err != nil {
		return Response{}, err
	}

	data, _ := json.Marshal(ExecResponse{RowsAffected: affected})
	return Response{Success: true, Type: "exec", Result: data}, nil
}

func decodeParams(raw string) (core.Bindings, error) {
	if raw == "" || raw == "null" {
		return nil, nil
	}

	var named map[string]any
	if err := json.Unmarshal([]byte(raw), &named); err == nil {
		return core.Named(named), nil
	}

	var positional []any
	if err := json.Unmarshal([]byte(raw), &positional); err == nil {
		return core.Positional(positional), nil
	}

	return nil, errors.New("invalid params: expected a JSON object or array")
}

func makeResponse(resp Response) *C.char {
	jsonData, _ := json.Marshal(resp)
	return C.CString(string(jsonData))
}

func makeErrorResponse(msg string) *C.char {
	return makeResponse(Response{
		Success: false,
		Error:   msg,
	})
}

func main() {}
