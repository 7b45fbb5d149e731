package store

import (
	"context"
	"sync"
	"time"

	"github.com/dfarias/chaperone/internal/domain"
	"github.com/google/uuid"
)

// MemorySessionStore is a process-local SessionStore for development and
// tests. Values are deep-copied on the way in and out so callers cannot
// mutate shared state.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*domain.DetectorSession
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[uuid.UUID]*domain.DetectorSession)}
}

func (s *MemorySessionStore) Get(_ context.Context, conversationID uuid.UUID) (*domain.DetectorSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[conversationID]
	if !ok {
		return &domain.DetectorSession{ConversationID: conversationID}, nil
	}
	return copySession(sess), nil
}

func (s *MemorySessionStore) Put(_ context.Context, sess *domain.DetectorSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := copySession(sess)
	stored.UpdatedAt = time.Now()
	s.sessions[sess.ConversationID] = stored
	return nil
}

func (s *MemorySessionStore) Clear(_ context.Context, conversationID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, conversationID)
	return nil
}

func copySession(sess *domain.DetectorSession) *domain.DetectorSession {
	out := &domain.DetectorSession{
		ConversationID: sess.ConversationID,
		UpdatedAt:      sess.UpdatedAt,
	}
	out.Replies = append(out.Replies, sess.Replies...)
	out.Amounts = append(out.Amounts, sess.Amounts...)
	out.Entities = append(out.Entities, sess.Entities...)
	return out
}
