package jsonrpc

import (
	"encoding/json"
	"sort"
)

// Handler is one callable method. Params is the raw params value of the
// request, nil when absent. A returned *ErrorObject reaches the wire
// verbatim; any other error is wrapped as an internal error.
type Handler func(params json.RawMessage) (any, error)

// Registry maps method names to handlers. Build it completely before
// the server starts; it is read-only for the rest of the run, so
// lookups need no locking.
type Registry struct {
	methods map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{methods: make(map[string]Handler)}
}

// Register binds a handler to a method name, replacing any previous
// binding for that name.
func (r *Registry) Register(name string, h Handler) {
	r.methods[name] = h
}

func (r *Registry) Lookup(name string) (Handler, bool) {
	h, ok := r.methods[name]
	return h, ok
}

// Methods returns the registered method names in sorted order.
func (r *Registry) Methods() []string {
	names := make([]string, 0, len(r.methods))
	for name := range r.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
