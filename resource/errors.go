package resource

import (
	"fmt"
	"net/http"

	"github.com/xcono/bread/schema"
)

// ValidationError lists every rejected field of a request.
type ValidationError = schema.ValidationError

// FieldError describes a single rejected field.
type FieldError = schema.FieldError

// NotFoundError is returned when a primary key does not exist.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.Key)
}

// OperationDisabledError is returned when an operation that is not enabled
// is invoked. Routing never exposes disabled operations, so this signals a
// programming error.
type OperationDisabledError struct {
	Resource  string
	Operation Operation
}

func (e *OperationDisabledError) Error() string {
	return fmt.Sprintf("%s: operation %s is not enabled", e.Resource, e.Operation)
}

// StoreError wraps a backing store failure. Its detail is for logs only.
type StoreError struct {
	Resource  string
	Operation Operation
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: store failed: %v", e.Resource, e.Operation, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// RequestError is a user-visible rejection with its own HTTP status,
// typically raised by a hook.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string { return e.Message }

// Reject builds a RequestError.
func Reject(status int, message string) error {
	return &RequestError{Status: status, Message: message}
}

// BadRequest builds a 400 RequestError.
func BadRequest(message string) error {
	return Reject(http.StatusBadRequest, message)
}
