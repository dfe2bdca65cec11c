package jsonrpc

import "encoding/json"

// Distinct marshal shapes keep exactly one of result/error on the wire
// and let falsy results (false, 0, "", null) survive; a shared struct
// with omitempty would drop them.
type successResponse struct {
	Version string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result"`
}

type errorResponse struct {
	Version string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Error   *ErrorObject    `json:"error"`
}

// BuildResponse serializes the response for one answered request. The
// id is echoed byte-exactly. An unencodable result downgrades to an
// internal-error response on a second encode pass; an error object with
// unencodable data is retried with the data stripped. Notifications are
// the caller's check: they never reach this function.
func BuildResponse(id json.RawMessage, result any, errObj *ErrorObject) ([]byte, error) {
	if errObj != nil {
		out, err := json.Marshal(errorResponse{Version: Version, ID: id, Error: errObj})
		if err == nil {
			return out, nil
		}
		stripped := &ErrorObject{Code: errObj.Code, Message: errObj.Message}
		return json.Marshal(errorResponse{Version: Version, ID: id, Error: stripped})
	}

	out, err := json.Marshal(successResponse{Version: Version, ID: id, Result: result})
	if err == nil {
		return out, nil
	}
	fallback := &ErrorObject{
		Code:    CodeInternalError,
		Message: "result not serializable",
		Data:    err.Error(),
	}
	return json.Marshal(errorResponse{Version: Version, ID: id, Error: fallback})
}
