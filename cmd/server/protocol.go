// Package main provides the TCP gateway server for GateDB.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/nickyhof/GateDB/core"
)

// Request is one statement from the client. A line that is not a JSON
// object is taken as the Query itself.
type Request struct {
	Query string `json:"query"`
	// Params is an object for :name placeholders or an array for ?.
	Params json.RawMessage `json:"params,omitempty"`
	// Batch runs an INSERT once per parameter set.
	Batch []json.RawMessage `json:"batch,omitempty"`
}

// Response is the server's answer to one request.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Type    string          `json:"type,omitempty"` // query, exec, transaction, zone, errors or auth
	Result  json.RawMessage `json:"result,omitempty"`
}

// QueryResponse carries fetched rows. Data is null, a record or a list of
// records.
type QueryResponse struct {
	Columns []string `json:"columns"`
	Data    any      `json:"data"`
	Shape   string   `json:"shape"`
	TimeMs  float64  `json:"time_ms"`
}

// ExecResponse carries the outcome of a write or DDL statement.
type ExecResponse struct {
	RowsAffected int64   `json:"rows_affected"`
	TimeMs       float64 `json:"time_ms,omitempty"`
}

type TransactionResponse struct {
	InTransaction bool `json:"in_transaction"`
}

type ZoneResponse struct {
	Zone string `json:"zone"`
}

// AuthResponse contains authentication result.
type AuthResponse struct {
	Authenticated bool   `json:"authenticated"`
	Identity      string `json:"identity"`
	ExpiresIn     int    `json:"expires_in,omitempty"`
}

// EncodeResponse serializes a Response to JSON with a newline.
func EncodeResponse(resp Response) ([]byte, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// DecodeRequest parses one request line.
func DecodeRequest(data []byte) (Request, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return Request{Query: string(data)}, nil
	}

	var req Request
	err := json.Unmarshal(data, &req)
	return req, err
}

// Bindings returns the single parameter set of the request, or nil.
func (req Request) Bindings() (core.Bindings, error) {
	return decodeBindings(req.Params)
}

// BatchBindings returns every parameter set of the request. A request
// with params and no batch yields one set.
func (req Request) BatchBindings() ([]core.Bindings, error) {
	if len(req.Batch) == 0 {
		bindings, err := req.Bindings()
		if err != nil || bindings == nil {
			return nil, err
		}
		return []core.Bindings{bindings}, nil
	}

	batch := make([]core.Bindings, 0, len(req.Batch))
	for i, raw := range req.Batch {
		bindings, err := decodeBindings(raw)
		if err != nil {
			return nil, fmt.Errorf("batch[%d]: %w", i, err)
		}
		if bindings == nil {
			return nil, fmt.Errorf("batch[%d]: empty parameter set", i)
		}
		batch = append(batch, bindings)
	}
	return batch, nil
}

func decodeBindings(raw json.RawMessage) (core.Bindings, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	switch raw[0] {
	case '{':
		var named map[string]any
		if err := decoder.Decode(&named); err != nil {
			return nil, fmt.Errorf("invalid params: %w", err)
		}
		for key, value := range named {
			named[key] = jsonValue(value)
		}
		return core.Named(named), nil
	case '[':
		var positional []any
		if err := decoder.Decode(&positional); err != nil {
			return nil, fmt.Errorf("invalid params: %w", err)
		}
		for i, value := range positional {
			positional[i] = jsonValue(value)
		}
		return core.Positional(positional), nil
	default:
		return nil, fmt.Errorf("invalid params: expected an object or an array")
	}
}

// jsonValue turns a decoded number into an int64 when it is integral.
func jsonValue(value any) any {
	number, ok := value.(json.Number)
	if !ok {
		return value
	}
	if i, err := number.Int64(); err == nil {
		return i
	}
	if f, err := number.Float64(); err == nil {
		return f
	}
	return number.String()
}
