package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. Sessions are lost on
// restart.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	stopChan chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// NewMemoryStore creates an in-memory store that drops expired sessions
// every cleanupInterval.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]*Session),
		stopChan: make(chan struct{}),
	}
	if cleanupInterval > 0 {
		s.wg.Add(1)
		go s.cleanup(cleanupInterval)
	}
	return s
}

// Get returns a copy of the stored session
func (s *MemoryStore) Get(_ context.Context, sessionID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.IsExpired() {
		delete(s.sessions, sessionID)
		return nil, ErrSessionExpired
	}
	return sess.clone(), nil
}

// Set stores a copy of session
func (s *MemoryStore) Set(_ context.Context, sessionID string, session *Session, ttl time.Duration) error {
	stored := session.clone()
	stored.ExpiresAt = time.Now().Add(ttl)

	s.mu.Lock()
	s.sessions[sessionID] = stored
	s.mu.Unlock()
	return nil
}

// Delete removes a session from memory
func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

// Close stops the cleanup goroutine and drops every session
func (s *MemoryStore) Close() error {
	s.once.Do(func() {
		close(s.stopChan)
		s.wg.Wait()

		s.mu.Lock()
		s.sessions = make(map[string]*Session)
		s.mu.Unlock()
	})
	return nil
}

// Count returns the number of stored sessions
func (s *MemoryStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *MemoryStore) cleanup(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.removeExpired()
		}
	}
}

func (s *MemoryStore) removeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.IsExpired() {
			delete(s.sessions, id)
		}
	}
}
