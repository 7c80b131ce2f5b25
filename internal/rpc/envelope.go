// Package rpc implements the newline-delimited JSON-RPC 2.0 bridge that serves the tools.
package rpc

import (
	"encoding/json"
	"fmt"
)

// Version is the JSON-RPC protocol version written on every response.
const Version = "2.0"

// Standard JSON-RPC error codes.
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Request is an incoming JSON-RPC message. A nil ID means the id key was absent
// and the message is a notification. A present null id is kept as the raw
// bytes "null" and still gets a response.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
}

// IsNotification reports whether the request carries no id.
func (r *Request) IsNotification() bool {
	return r.ID == nil
}

// Response is an outgoing JSON-RPC message. Exactly one of Result and Error is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a JSON-RPC error object.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// ParseError reports a line that is not a valid request.
func ParseError() *Error {
	return &Error{Code: CodeParseError, Message: "Parse error"}
}

// MethodNotFound reports an unknown request method.
func MethodNotFound(method string) *Error {
	return &Error{Code: CodeMethodNotFound, Message: "Method not found: " + method}
}

// InvalidParams reports unusable request params.
func InvalidParams(msg string) *Error {
	return &Error{Code: CodeInvalidParams, Message: msg}
}

// InternalError reports a failure to produce a result.
func InternalError(msg string) *Error {
	return &Error{Code: CodeInternalError, Message: msg}
}

func success(id json.RawMessage, result json.RawMessage) *Response {
	return &Response{JSONRPC: Version, ID: id, Result: result}
}

func failure(id json.RawMessage, err *Error) *Response {
	return &Response{JSONRPC: Version, ID: id, Error: err}
}
