// Package jsonrpc implements the envelope the server speaks: JSON-RPC
// 2.0 request validation, method dispatch and response building.
package jsonrpc

import (
	"encoding/json"
	"fmt"
)

const Version = "2.0"

// Standard JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Request is one validated call. ID stays raw JSON so the response can
// echo it byte-exactly whatever its type; a nil ID marks a notification.
// Params is nil when the request omitted them.
type Request struct {
	Version string
	Method  string
	ID      json.RawMessage
	Params  json.RawMessage
}

// Notification reports whether the request expects no response.
func (r *Request) Notification() bool { return len(r.ID) == 0 }

// ErrorObject is the error member of a response. Handlers may return
// one as their error to control the code on the wire; anything else
// they return is wrapped as an internal error by the dispatcher.
type ErrorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *ErrorObject) Error() string {
	return fmt.Sprintf("jsonrpc: %d %s", e.Code, e.Message)
}

// InvalidParams builds the error a handler returns when it rejects the
// request's params value.
func InvalidParams(msg string) *ErrorObject {
	return &ErrorObject{Code: CodeInvalidParams, Message: msg}
}
