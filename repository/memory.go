package repository

import (
	"context"
	"sync"
	"time"

	"main/model"
)

// MemoryStore is an in-memory SessionStore. It backs tests and lets the
// service boot without MongoDB. Foreign-key safety matches the Mongo
// store: event and alert inserts fail with ErrSessionNotFound when the
// referenced session row is absent.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
	events   map[string][]*model.SessionEvent
	alerts   map[string][]*model.SecurityAlert

	// Test hooks. Unavailable makes the schema probe fail; CreateErr is
	// returned from every CreateSession attempt.
	Unavailable bool
	CreateErr   error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*model.Session),
		events:   make(map[string][]*model.SessionEvent),
		alerts:   make(map[string][]*model.SecurityAlert),
	}
}

func (s *MemoryStore) Available(ctx context.Context) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.Unavailable
}

func (s *MemoryStore) CreateSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.CreateErr != nil {
		return s.CreateErr
	}

	clone := *session
	s.sessions[session.SessionID] = &clone
	return nil
}

func (s *MemoryStore) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	clone := *session
	return &clone, nil
}

func (s *MemoryStore) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[sessionID]
	return ok, nil
}

func (s *MemoryStore) FinalizeSession(ctx context.Context, session *model.Session) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.sessions[session.SessionID]
	if !ok {
		return 0, nil
	}

	stored.EndedAt = session.EndedAt
	stored.DurationSeconds = session.DurationSeconds
	stored.LogoutMethod = session.LogoutMethod
	stored.LogoutReason = session.LogoutReason
	stored.Activity = session.Activity
	stored.SecurityFlags = session.SecurityFlags
	stored.LastActivityAt = session.LastActivityAt
	stored.Status = session.Status
	stored.WriteStatus = session.WriteStatus
	return 1, nil
}

func (s *MemoryStore) MarkCleanupFailed(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stored, ok := s.sessions[sessionID]; ok {
		stored.WriteStatus = model.WriteCleanupFailed
	}
	return nil
}

func (s *MemoryStore) TouchSession(ctx context.Context, sessionID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stored, ok := s.sessions[sessionID]; ok {
		stored.LastActivityAt = at
	}
	return nil
}

func (s *MemoryStore) CountActiveSessions(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, session := range s.sessions {
		if session.UserID == userID && session.Open() {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) InsertEvent(ctx context.Context, event *model.SessionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[event.SessionID]; !ok {
		return ErrSessionNotFound
	}

	clone := *event
	s.events[event.SessionID] = append(s.events[event.SessionID], &clone)
	return nil
}

func (s *MemoryStore) InsertAlert(ctx context.Context, alert *model.SecurityAlert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[alert.SessionID]; !ok {
		return ErrSessionNotFound
	}

	clone := *alert
	s.alerts[alert.SessionID] = append(s.alerts[alert.SessionID], &clone)
	return nil
}

// RemoveSession drops a session row outright, simulating a row deleted
// behind the tracker's back.
func (s *MemoryStore) RemoveSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// SessionEvents returns the persisted events for a session, oldest first.
func (s *MemoryStore) SessionEvents(sessionID string) []*model.SessionEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*model.SessionEvent(nil), s.events[sessionID]...)
}

// SessionAlerts returns the persisted alerts for a session, oldest first.
func (s *MemoryStore) SessionAlerts(sessionID string) []*model.SecurityAlert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*model.SecurityAlert(nil), s.alerts[sessionID]...)
}
