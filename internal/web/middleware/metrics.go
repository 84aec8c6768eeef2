package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// RequestRecorder receives HTTP request measurements
type RequestRecorder interface {
	IncInFlight()
	DecInFlight()
	RecordHTTPRequest(method, route, status string, duration time.Duration)
}

// Metrics records every request under its chi route pattern, so
// /jobs/edit/1 and /jobs/edit/2 share the series of /jobs/edit/{job_id}.
func Metrics(recorder RequestRecorder) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			recorder.IncInFlight()
			defer recorder.DecInFlight()

			start := time.Now()
			ww := wrap(w, r)
			next.ServeHTTP(ww, r)

			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			recorder.RecordHTTPRequest(r.Method, route, strconv.Itoa(status(ww)), time.Since(start))
		})
	}
}
