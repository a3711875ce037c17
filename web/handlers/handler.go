package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/xcono/bread/resource"
	"github.com/xcono/bread/web/response"
	"github.com/zeromicro/go-zero/rest/pathvar"
)

// Handler serves the operations of one resource over HTTP
type Handler struct {
	res *resource.Resource
}

// NewHandler creates a handler for res
func NewHandler(res *resource.Resource) *Handler {
	return &Handler{res: res}
}

// Browse handles GET on the collection
func (h *Handler) Browse(w http.ResponseWriter, r *http.Request) {
	page, err := h.res.Browse(r.Context(), newRequest(r))
	if err != nil {
		response.WriteErr(r.Context(), w, err)
		return
	}
	response.WritePage(w, page)
}

// Retrieve handles GET on a single record
func (h *Handler) Retrieve(w http.ResponseWriter, r *http.Request) {
	rec, err := h.res.Retrieve(r.Context(), newRequest(r))
	if err != nil {
		response.WriteErr(r.Context(), w, err)
		return
	}
	response.WriteSuccess(w, rec)
}

// Add handles POST on the collection
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	req := newRequest(r)
	if !decodeBody(w, r, req) {
		return
	}

	rec, err := h.res.Add(r.Context(), req)
	if err != nil {
		response.WriteErr(r.Context(), w, err)
		return
	}
	response.WriteCreated(w, rec)
}

// Patch handles a partial update
func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	h.edit(w, r, true)
}

// Put handles a full update
func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	h.edit(w, r, false)
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request, partial bool) {
	req := newRequest(r)
	req.Partial = partial
	if !decodeBody(w, r, req) {
		return
	}

	rec, err := h.res.Edit(r.Context(), req)
	if err != nil {
		response.WriteErr(r.Context(), w, err)
		return
	}
	response.WriteSuccess(w, rec)
}

// Delete handles DELETE on a single record
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.res.Delete(r.Context(), newRequest(r)); err != nil {
		response.WriteErr(r.Context(), w, err)
		return
	}
	response.WriteOK(w)
}

func newRequest(r *http.Request) *resource.Request {
	return &resource.Request{
		Key:    pathvar.Vars(r)[KeyParam],
		Query:  r.URL.Query(),
		Header: r.Header,
	}
}

// decodeBody reads a JSON object into req.Payload. Numbers stay json.Number
// so the schema decides between integers and floats.
func decodeBody(w http.ResponseWriter, r *http.Request, req *resource.Request) bool {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var payload map[string]interface{}
	err := dec.Decode(&payload)
	if err == nil && dec.More() {
		err = errors.New("trailing data")
	}
	if errors.Is(err, io.EOF) || (err == nil && payload == nil) {
		err = errors.New("a JSON object is required")
	}
	if err != nil {
		response.WriteBadRequest(w, "invalid request body", resource.FieldError{Field: "body", Message: err.Error()})
		return false
	}

	req.Payload = payload
	return true
}
