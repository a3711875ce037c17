package handlers

import (
	"net/http"
	"strconv"

	"github.com/xcono/bread/resource"
	"github.com/zeromicro/go-zero/core/metric"
	"github.com/zeromicro/go-zero/core/timex"
)

const metricNamespace = "bread"

var (
	requestDuration = metric.NewHistogramVec(&metric.HistogramVecOpts{
		Namespace: metricNamespace,
		Subsystem: "resource",
		Name:      "duration_ms",
		Help:      "resource operation duration(ms).",
		Labels:    []string{"resource", "operation"},
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	})

	requestTotal = metric.NewCounterVec(&metric.CounterVecOpts{
		Namespace: metricNamespace,
		Subsystem: "resource",
		Name:      "requests_total",
		Help:      "resource operation count.",
		Labels:    []string{"resource", "operation", "code"},
	})
)

// statusWriter remembers the status written by a handler
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// instrument counts and times every call of next under the resource name and operation.
// Metrics are only exported when the server runs with DevServer enabled.
func instrument(name string, op resource.Operation, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := timex.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next(sw, r)

		requestDuration.Observe(timex.Since(start).Milliseconds(), name, string(op))
		requestTotal.Inc(name, string(op), strconv.Itoa(sw.code))
	}
}
