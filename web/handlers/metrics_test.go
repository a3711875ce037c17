package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xcono/bread/resource"
)

func TestInstrumentKeepsResponse(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{name: "implicit ok", status: 0},
		{name: "created", status: http.StatusCreated},
		{name: "not found", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen int
			h := instrument("organisations", resource.Browse, func(w http.ResponseWriter, r *http.Request) {
				if tt.status != 0 {
					w.WriteHeader(tt.status)
				}
				_, _ = w.Write([]byte("body"))
				seen = w.(*statusWriter).code
			})

			rec := httptest.NewRecorder()
			h(rec, httptest.NewRequest(http.MethodGet, "/organisations", nil))

			want := tt.status
			if want == 0 {
				want = http.StatusOK
			}
			if rec.Code != want || seen != want {
				t.Errorf("expected status %d, got recorder %d and writer %d", want, rec.Code, seen)
			}
			if rec.Body.String() != "body" {
				t.Errorf("expected body to pass through, got %q", rec.Body.String())
			}
		})
	}
}
