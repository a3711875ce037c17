package response

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/xcono/bread/resource"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"
)

// Error is the body of every failed request
type Error struct {
	Error   string                `json:"error"`
	Code    string                `json:"code"`
	Details []resource.FieldError `json:"details,omitempty"`
}

// WriteError writes a standardized error response
func WriteError(w http.ResponseWriter, statusCode int, message string, details ...resource.FieldError) {
	httpx.WriteJson(w, statusCode, Error{
		Error:   message,
		Code:    fmt.Sprintf("BREAD%d", statusCode),
		Details: details,
	})
}

// WriteBadRequest writes a 400 Bad Request error
func WriteBadRequest(w http.ResponseWriter, message string, details ...resource.FieldError) {
	WriteError(w, http.StatusBadRequest, message, details...)
}

// WriteNotFound writes a 404 Not Found error
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message)
}

// WriteInternalServerError writes a 500 without internal detail
func WriteInternalServerError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, "internal server error")
}

// WriteErr maps an operation error to its status. Store failures were
// logged where they happened; anything unrecognised is logged here.
func WriteErr(ctx context.Context, w http.ResponseWriter, err error) {
	var (
		verr *resource.ValidationError
		nf   *resource.NotFoundError
		rerr *resource.RequestError
		serr *resource.StoreError
	)

	switch {
	case errors.As(err, &verr):
		WriteBadRequest(w, "validation failed", verr.Errors...)
	case errors.As(err, &nf):
		WriteNotFound(w, nf.Error())
	case errors.As(err, &rerr):
		WriteError(w, rerr.Status, rerr.Message)
	case errors.As(err, &serr):
		WriteInternalServerError(w)
	default:
		logx.WithContext(ctx).Errorf("unhandled error: %v", err)
		WriteInternalServerError(w)
	}
}
