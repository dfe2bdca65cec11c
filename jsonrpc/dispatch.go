package jsonrpc

import (
	"errors"
	"fmt"
)

// Dispatch resolves and invokes the request's method. It never returns
// a Go error: every failure comes back as an *ErrorObject, so the loop
// has nothing to unwind. Handlers signal failure by returning an error;
// the recover below is containment for misbehaving handlers, not a
// signaling channel.
func Dispatch(reg *Registry, req *Request) (result any, errObj *ErrorObject) {
	h, ok := reg.Lookup(req.Method)
	if !ok {
		return nil, &ErrorObject{
			Code:    CodeMethodNotFound,
			Message: "method not found",
			Data:    req.Method,
		}
	}

	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			errObj = &ErrorObject{
				Code:    CodeInternalError,
				Message: "internal error",
				Data:    fmt.Sprintf("handler panic: %v", rec),
			}
		}
	}()

	res, err := h(req.Params)
	if err != nil {
		var eo *ErrorObject
		if errors.As(err, &eo) {
			return nil, eo
		}
		return nil, &ErrorObject{
			Code:    CodeInternalError,
			Message: "internal error",
			Data:    err.Error(),
		}
	}
	return res, nil
}
