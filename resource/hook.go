package resource

import (
	"context"
	"net/http"
	"net/url"
)

// Request carries the inputs of one operation call.
type Request struct {
	Operation Operation
	// Key is the primary key for retrieve, edit and delete.
	Key string
	// Query holds browse filters and page, and any marker a hook looks for.
	Query url.Values
	// Header is the transport header, if any.
	Header http.Header
	// Payload is the decoded body for add and edit.
	Payload map[string]interface{}
	// Partial marks an edit that only carries the fields to change.
	Partial bool
}

// Hook runs before an operation. A non-nil error aborts the call and is
// returned unchanged; otherwise the next hook, and finally the default
// handler, runs.
type Hook func(ctx context.Context, req *Request) error

// HookOption is a hook bound to a set of operations.
type HookOption struct {
	ops  OperationSet
	hook Hook
}

// Before returns a hook that only runs for the given operations.
// With no operations it runs for all of them.
func Before(hook Hook, ops ...Operation) HookOption {
	return HookOption{ops: NewOperationSet(ops...), hook: hook}
}

// RejectQueryMarker rejects any request whose query carries marker with a
// 400 and message.
func RejectQueryMarker(marker, message string) Hook {
	return func(_ context.Context, req *Request) error {
		if _, ok := req.Query[marker]; ok {
			return BadRequest(message)
		}
		return nil
	}
}

type handlerFunc func(ctx context.Context, req *Request) (interface{}, error)

// chain wraps next so that every hook registered for op runs first, in
// registration order.
func chain(hooks []HookOption, op Operation, next handlerFunc) handlerFunc {
	var matched []Hook
	for _, h := range hooks {
		if len(h.ops) == 0 || h.ops.Has(op) {
			matched = append(matched, h.hook)
		}
	}
	if len(matched) == 0 {
		return next
	}

	return func(ctx context.Context, req *Request) (interface{}, error) {
		for _, h := range matched {
			if err := h(ctx, req); err != nil {
				return nil, err
			}
		}
		return next(ctx, req)
	}
}
