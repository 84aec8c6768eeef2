// Package server runs the HTTP server and shuts it down gracefully.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

// Config holds the listen address, handler and limits of a Server
type Config struct {
	Address string
	Handler http.Handler

	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	MaxHeaderBytes    int
}

// DefaultConfig serves handler on :5000
func DefaultConfig(handler http.Handler) *Config {
	return &Config{
		Address:           ":5000",
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}

// Server is an http.Server that binds its listener separately from serving,
// so the bound address is known before the first request.
type Server struct {
	http *http.Server

	mu sync.Mutex
	ln net.Listener
}

// New validates config and builds a server that is not yet listening
func New(config *Config) (*Server, error) {
	switch {
	case config == nil:
		return nil, errors.New("server: config is required")
	case config.Handler == nil:
		return nil, errors.New("server: handler is required")
	}

	return &Server{http: &http.Server{
		Addr:              config.Address,
		Handler:           config.Handler,
		ReadTimeout:       config.ReadTimeout,
		WriteTimeout:      config.WriteTimeout,
		IdleTimeout:       config.IdleTimeout,
		ReadHeaderTimeout: config.ReadHeaderTimeout,
		MaxHeaderBytes:    config.MaxHeaderBytes,
	}}, nil
}

// Listen binds the configured address. Later calls are no-ops.
func (s *Server) Listen() error {
	_, err := s.listener()
	return err
}

func (s *Server) listener() (net.Listener, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ln == nil {
		ln, err := net.Listen("tcp", s.http.Addr)
		if err != nil {
			return nil, fmt.Errorf("listen on %s: %w", s.http.Addr, err)
		}
		s.ln = ln
	}
	return s.ln, nil
}

// Serve accepts connections until Shutdown or Close, binding first if
// needed. A graceful stop returns nil.
func (s *Server) Serve() error {
	ln, err := s.listener()
	if err != nil {
		return err
	}
	if err := s.http.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Close drops every connection at once and releases the listener even when
// Serve never ran.
func (s *Server) Close() error {
	err := s.http.Close()

	s.mu.Lock()
	if s.ln != nil {
		_ = s.ln.Close()
	}
	s.mu.Unlock()
	return err
}

// Addr is the bound address once listening, else the configured one
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ln == nil {
		return s.http.Addr
	}
	return s.ln.Addr().String()
}
