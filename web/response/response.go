package response

import (
	"net/http"

	"github.com/xcono/bread/resource"
	"github.com/zeromicro/go-zero/rest/httpx"
)

// Response wraps a single record
type Response struct {
	Data interface{} `json:"data"`
}

// Status is the body of operations that return no record
type Status struct {
	Status string `json:"status"`
}

// WriteSuccess writes a 200 with the record wrapped under "data"
func WriteSuccess(w http.ResponseWriter, data interface{}) {
	httpx.WriteJson(w, http.StatusOK, Response{Data: data})
}

// WriteCreated writes a 201 Created response
func WriteCreated(w http.ResponseWriter, data interface{}) {
	httpx.WriteJson(w, http.StatusCreated, Response{Data: data})
}

// WritePage writes a browse result
func WritePage(w http.ResponseWriter, page *resource.Page) {
	httpx.WriteJson(w, http.StatusOK, page)
}

// WriteOK writes {"status":"ok"}
func WriteOK(w http.ResponseWriter) {
	httpx.WriteJson(w, http.StatusOK, Status{Status: "ok"})
}
