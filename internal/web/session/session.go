// Package session keeps a cookie-identified session per browser. Sessions
// carry the flash messages shown on the page after a redirect.
package session

import (
	"context"
	"errors"
	"slices"
	"time"
)

var (
	// ErrSessionNotFound means the store holds no session under the ID
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired means the stored session outlived its TTL
	ErrSessionExpired = errors.New("session expired")
)

// Store persists sessions between requests
type Store interface {
	Get(ctx context.Context, sessionID string) (*Session, error)
	Set(ctx context.Context, sessionID string, session *Session, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) error
	Close() error
}

// Flash is a message queued for the next rendered page. Kind is one of the
// Flash* constants and is used as its CSS class.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Session is the server-side state of one browser. The middleware saves it
// only when AddFlash or TakeFlashes changed it.
type Session struct {
	ID        string    `json:"id"`
	Flashes   []Flash   `json:"flashes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`

	dirty bool
}

// NewSession starts a session that expires after ttl
func NewSession(id string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{ID: id, CreatedAt: now, ExpiresAt: now.Add(ttl)}
}

// IsExpired reports whether the session is past its expiry
func (s *Session) IsExpired() bool {
	return !time.Now().Before(s.ExpiresAt)
}

// AddFlash queues a message
func (s *Session) AddFlash(kind, message string) {
	s.Flashes = append(s.Flashes, Flash{Kind: kind, Message: message})
	s.dirty = true
}

// TakeFlashes drains the queued messages
func (s *Session) TakeFlashes() []Flash {
	if len(s.Flashes) == 0 {
		return nil
	}
	taken := s.Flashes
	s.Flashes, s.dirty = nil, true
	return taken
}

func (s *Session) clone() *Session {
	c := *s
	c.Flashes = slices.Clone(s.Flashes)
	c.dirty = false
	return &c
}

// Config describes the session cookie and where sessions are kept
type Config struct {
	CookieName string
	CookiePath string
	MaxAge     int // seconds, also the store TTL
	Secure     bool
	Store      Store
}

// DefaultConfig keeps sessions in store for a day
func DefaultConfig(store Store) *Config {
	return &Config{
		CookieName: "careboard_session",
		CookiePath: "/",
		MaxAge:     int((24 * time.Hour).Seconds()),
		Store:      store,
	}
}

func (c *Config) ttl() time.Duration {
	return time.Duration(c.MaxAge) * time.Second
}
