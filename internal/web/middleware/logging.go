package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogEntry describes one completed request
type LogEntry struct {
	RequestID    string
	Method       string
	Path         string
	StatusCode   int
	Duration     time.Duration
	BytesWritten int
	RemoteAddr   string
}

// AccessLogConfig configures AccessLog
type AccessLogConfig struct {
	// Sink receives one entry per completed request
	Sink func(LogEntry)
	// Skip lists paths that are never logged
	Skip PathSet
}

// AccessLog reports every completed request to config.Sink
func AccessLog(config AccessLogConfig) Middleware {
	return func(next http.Handler) http.Handler {
		if config.Sink == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.Skip.Contains(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			ww := wrap(w, r)
			next.ServeHTTP(ww, r)

			config.Sink(LogEntry{
				RequestID:    GetRequestID(r.Context()),
				Method:       r.Method,
				Path:         r.URL.Path,
				StatusCode:   status(ww),
				Duration:     time.Since(start),
				BytesWritten: ww.BytesWritten(),
				RemoteAddr:   r.RemoteAddr,
			})
		})
	}
}

// ZapLogger writes log entries to logger: 5xx at error level, 4xx at warn
// level and the rest at info level.
func ZapLogger(logger *zap.Logger) func(LogEntry) {
	return func(e LogEntry) {
		level := zapcore.InfoLevel
		if e.StatusCode >= http.StatusInternalServerError {
			level = zapcore.ErrorLevel
		} else if e.StatusCode >= http.StatusBadRequest {
			level = zapcore.WarnLevel
		}
		logger.Log(level, "request",
			zap.String("request_id", e.RequestID),
			zap.String("method", e.Method),
			zap.String("path", e.Path),
			zap.Int("status", e.StatusCode),
			zap.Duration("duration", e.Duration),
			zap.Int("bytes", e.BytesWritten),
			zap.String("remote_addr", e.RemoteAddr),
		)
	}
}

// wrap returns w as a chi WrapResponseWriter, reusing one installed by an
// outer middleware.
func wrap(w http.ResponseWriter, r *http.Request) chimw.WrapResponseWriter {
	if ww, ok := w.(chimw.WrapResponseWriter); ok {
		return ww
	}
	return chimw.NewWrapResponseWriter(w, r.ProtoMajor)
}

// status treats a handler that never wrote a header as 200
func status(ww chimw.WrapResponseWriter) int {
	if code := ww.Status(); code != 0 {
		return code
	}
	return http.StatusOK
}
