package transport

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
)

// JSON-RPC 2.0 error codes. ErrDomain carries a classified billing failure
// whose stable code travels in the error data.
const (
	ErrParseCode      = -32700
	ErrInvalidReq     = -32600
	ErrMethodNotFound = -32601
	ErrInvalidParams  = -32602
	ErrInternal       = -32603
	ErrDomain         = -32000
)

// MaxRequestBytes bounds a single RPC body.
const MaxRequestBytes = 1 << 20

// Request is a JSON-RPC 2.0 call. Batches are not accepted.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
}

// Notification reports a call without an id; it gets no response body.
func (r Request) Notification() bool {
	return len(r.ID) == 0
}

// Response is a JSON-RPC 2.0 reply carrying either Result or Error.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string { return e.Message }

// ParseRequest reads one call from body. The returned error is ready to
// be written back to the caller.
func ParseRequest(body io.Reader) (Request, *Error) {
	raw, err := io.ReadAll(io.LimitReader(body, MaxRequestBytes+1))
	if err != nil {
		return Request{}, &Error{Code: ErrParseCode, Message: "parse error: " + err.Error()}
	}
	if len(raw) > MaxRequestBytes {
		return Request{}, &Error{Code: ErrInvalidReq, Message: "request too large"}
	}

	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
			return Request{}, &Error{Code: ErrInvalidReq, Message: "batch requests are not supported"}
		}
		return Request{}, &Error{Code: ErrParseCode, Message: "parse error: " + err.Error()}
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		return req, &Error{Code: ErrInvalidReq, Message: "invalid request"}
	}
	if p := bytes.TrimSpace(req.Params); len(p) > 0 && p[0] != '{' && string(p) != "null" {
		return req, &Error{Code: ErrInvalidParams, Message: "params must be an object"}
	}
	return req, nil
}

// WriteResult replies with a result.
func WriteResult(w http.ResponseWriter, id json.RawMessage, result any) {
	writeResponse(w, Response{JSONRPC: "2.0", Result: result, ID: id})
}

// WriteError replies with an error object.
func WriteError(w http.ResponseWriter, id json.RawMessage, rpcErr *Error) {
	writeResponse(w, Response{JSONRPC: "2.0", Error: rpcErr, ID: id})
}

func writeResponse(w http.ResponseWriter, resp Response) {
	if len(resp.ID) == 0 {
		resp.ID = json.RawMessage("null")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}
