package jsonrpc

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ParseError reports payload bytes that are not a JSON object. No
// identifier is recoverable from such a payload.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "jsonrpc: parse error: " + e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

// InvalidRequestError reports an object missing required request fields
// or carrying them with the wrong type. ID holds whatever identifier
// could still be recovered, so the loop can answer with an error
// response instead of dropping the request.
type InvalidRequestError struct {
	Reason string
	ID     json.RawMessage
}

func (e *InvalidRequestError) Error() string { return "jsonrpc: invalid request: " + e.Reason }

// Parse validates the payload of one frame into a Request. An id of
// JSON null counts as absent: the original never answers null ids and
// neither do we.
func Parse(payload []byte) (*Request, error) {
	trimmed := bytes.TrimLeft(payload, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &ParseError{Err: errors.New("payload is not a JSON object")}
	}

	var raw struct {
		Version json.RawMessage `json:"jsonrpc"`
		Method  json.RawMessage `json:"method"`
		ID      json.RawMessage `json:"id"`
		Params  json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, &ParseError{Err: err}
	}

	id := raw.ID
	if bytes.Equal(bytes.TrimSpace(id), []byte("null")) {
		id = nil
	}

	var version string
	if raw.Version != nil {
		if err := json.Unmarshal(raw.Version, &version); err != nil || version != Version {
			return nil, &InvalidRequestError{Reason: `jsonrpc version must be "2.0"`, ID: id}
		}
	}

	if raw.Method == nil {
		return nil, &InvalidRequestError{Reason: "method is missing", ID: id}
	}
	var method string
	if err := json.Unmarshal(raw.Method, &method); err != nil {
		return nil, &InvalidRequestError{Reason: "method is not a string", ID: id}
	}
	if method == "" {
		return nil, &InvalidRequestError{Reason: "method is empty", ID: id}
	}

	if raw.Params != nil {
		p := bytes.TrimSpace(raw.Params)
		if len(p) > 0 && p[0] != '{' && p[0] != '[' && !bytes.Equal(p, []byte("null")) {
			return nil, &InvalidRequestError{Reason: "params is not a structured value", ID: id}
		}
	}

	return &Request{
		Version: version,
		Method:  method,
		ID:      id,
		Params:  raw.Params,
	}, nil
}
