package mcp12306

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type sessionInfo struct {
	ConnectedAt     time.Time
	UserAgent       string
	ClientAddr      string
	Initialized     bool
	ProtocolVersion string
}

// sessionStore tracks live MCP sessions, keyed by the uuid handed out in the
// Mcp-Session-Id header during initialize.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionInfo
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: map[string]*sessionInfo{}}
}

func (s *sessionStore) Create(userAgent, clientAddr, protocolVersion string) string {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &sessionInfo{
		ConnectedAt:     time.Now(),
		UserAgent:       userAgent,
		ClientAddr:      clientAddr,
		ProtocolVersion: protocolVersion,
	}
	return id
}

func (s *sessionStore) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[id]
	return ok
}

func (s *sessionStore) MarkInitialized(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if info, ok := s.sessions[id]; ok {
		info.Initialized = true
	}
}

func (s *sessionStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

func (s *sessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
