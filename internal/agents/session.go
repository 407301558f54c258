package agents

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned by GetSession for unknown ids.
var ErrSessionNotFound = errors.New("session not found")

// State is a concurrency-safe string map shared by the agents of a session.
type State struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewState(initial map[string]string) *State {
	values := make(map[string]string, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return &State{values: values}
}

func (s *State) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *State) Set(key, value string) {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
}

// Snapshot returns a copy of all values.
func (s *State) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

type Session struct {
	ID      string
	AppName string
	UserID  string
	State   *State
}

// InMemorySessionService keeps sessions for the lifetime of the process.
type InMemorySessionService struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewInMemorySessionService() *InMemorySessionService {
	return &InMemorySessionService{sessions: make(map[string]*Session)}
}

// CreateSession registers a new session with a random id.
func (s *InMemorySessionService) CreateSession(ctx context.Context, appName, userID string, state map[string]string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	session := &Session{
		ID:      uuid.NewString(),
		AppName: appName,
		UserID:  userID,
		State:   NewState(state),
	}
	s.mu.Lock()
	s.sessions[sessionKey(appName, userID, session.ID)] = session
	s.mu.Unlock()
	return session, nil
}

func (s *InMemorySessionService) GetSession(ctx context.Context, appName, userID, sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionKey(appName, userID, sessionID)]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *InMemorySessionService) DeleteSession(ctx context.Context, appName, userID, sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionKey(appName, userID, sessionID))
	s.mu.Unlock()
}

func sessionKey(appName, userID, sessionID string) string {
	return appName + "/" + userID + "/" + sessionID
}
