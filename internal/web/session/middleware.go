package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type contextKey int

const sessionKey contextKey = iota

// Middleware loads the session named by the request cookie, or starts a new
// one, and saves it before the response header is written when the handler
// changed it.
func Middleware(config *Config, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sess *Session
			if cookie, err := r.Cookie(config.CookieName); err == nil && cookie.Value != "" {
				sess, err = config.Store.Get(r.Context(), cookie.Value)
				if err != nil && !errors.Is(err, ErrSessionNotFound) && !errors.Is(err, ErrSessionExpired) {
					logger.Warn("session load failed", zap.Error(err))
				}
			}

			if sess == nil {
				id, err := generateSessionID()
				if err != nil {
					http.Error(w, "failed to start session", http.StatusInternalServerError)
					return
				}
				sess = NewSession(id, config.ttl())
				http.SetCookie(w, &http.Cookie{
					Name:     config.CookieName,
					Value:    id,
					Path:     config.CookiePath,
					MaxAge:   config.MaxAge,
					HttpOnly: true,
					Secure:   config.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			sw := &sessionWriter{
				ResponseWriter: w,
				session:        sess,
				save: func() {
					saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
					defer cancel()
					if err := config.Store.Set(saveCtx, sess.ID, sess, config.ttl()); err != nil {
						logger.Error("session save failed", zap.Error(err))
					}
				},
			}

			next.ServeHTTP(sw, r.WithContext(ctx))
			sw.flush()
		})
	}
}

// sessionWriter saves a changed session just before the header goes out
type sessionWriter struct {
	http.ResponseWriter
	session *Session
	save    func()
	saved   bool
}

func (sw *sessionWriter) flush() {
	if sw.saved {
		return
	}
	sw.saved = true
	if sw.session.dirty {
		sw.save()
		sw.session.dirty = false
	}
}

func (sw *sessionWriter) WriteHeader(statusCode int) {
	sw.flush()
	sw.ResponseWriter.WriteHeader(statusCode)
}

func (sw *sessionWriter) Write(b []byte) (int, error) {
	sw.flush()
	return sw.ResponseWriter.Write(b)
}

// Unwrap exposes the wrapped writer to http.ResponseController
func (sw *sessionWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

// FromContext returns the session of the request, or nil
func FromContext(ctx context.Context) *Session {
	if sess, ok := ctx.Value(sessionKey).(*Session); ok {
		return sess
	}
	return nil
}

// generateSessionID returns 32 random bytes, URL-safe encoded
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
