package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"
)

// RecoveryConfig holds configuration for the recovery middleware
type RecoveryConfig struct {
	// Logger receives the recovered value and the goroutine stack
	Logger func(r *http.Request, err error, stack []byte)
	// ResponseHandler writes the response after a panic
	ResponseHandler func(w http.ResponseWriter, r *http.Request, err error)
}

// Recovery turns a panicking handler into a 500 response logged with its
// stack.
func Recovery(logger *zap.Logger) Middleware {
	return RecoveryWithConfig(RecoveryConfig{
		Logger: func(r *http.Request, err error, stack []byte) {
			logger.Error("panic recovered",
				zap.String("request_id", GetRequestID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err),
				zap.ByteString("stack", stack),
			)
		},
	})
}

// RecoveryWithConfig creates a recovery middleware with custom configuration
func RecoveryWithConfig(config RecoveryConfig) Middleware {
	respond := config.ResponseHandler
	if respond == nil {
		respond = defaultRecoveryResponse
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				err, ok := v.(error)
				if !ok {
					err = fmt.Errorf("panic: %v", v)
				}
				if config.Logger != nil {
					config.Logger(r, err, debug.Stack())
				}
				respond(w, r, err)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func defaultRecoveryResponse(w http.ResponseWriter, _ *http.Request, _ error) {
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
