// Package store persists chat sessions as a flat JSON list under one
// storage record, through an injected Storage capability.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/educhat-ai/educhat/internal/domain"
)

// SessionsKey names the record holding the serialized session list.
const SessionsKey = "chat-sessions"

// SessionStore owns the persisted list of chat sessions. The most recently
// created session sits at the head of the list.
type SessionStore struct {
	storage  Storage
	mu       sync.Mutex
	sessions []domain.ChatSession
}

// NewSessionStore creates a session store over the given storage.
func NewSessionStore(storage Storage) *SessionStore {
	return &SessionStore{storage: storage}
}

// Load reads the persisted session list. Absent data yields an empty list.
// Date fields arrive as RFC3339 strings and are rehydrated by the JSON
// decoder into time.Time values.
func (s *SessionStore) Load(ctx context.Context) error {
	data, err := s.storage.Get(ctx, SessionsKey)
	if err != nil {
		return fmt.Errorf("failed to load sessions: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(data) == 0 {
		s.sessions = nil
		return nil
	}

	var sessions []domain.ChatSession
	if err := json.Unmarshal(data, &sessions); err != nil {
		return fmt.Errorf("failed to decode sessions: %w", err)
	}

	s.sessions = sessions
	return nil
}

// Sessions returns a snapshot of the session list.
func (s *SessionStore) Sessions() []domain.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.ChatSession, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// Get returns the session with the given id.
func (s *SessionStore) Get(id string) (domain.ChatSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess, true
		}
	}
	return domain.ChatSession{}, false
}

// Save upserts a session (replace by id, else prepend) and rewrites the
// whole list. Storage failures propagate to the caller; there is no
// recovery path for a broken local store.
func (s *SessionStore) Save(ctx context.Context, session domain.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := false
	for i, sess := range s.sessions {
		if sess.ID == session.ID {
			s.sessions[i] = session
			replaced = true
			break
		}
	}
	if !replaced {
		s.sessions = append([]domain.ChatSession{session}, s.sessions...)
	}

	return s.persist(ctx)
}

// Delete removes a session by id and rewrites the list. Deleting an
// unknown id is a no-op.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.sessions[:0]
	for _, sess := range s.sessions {
		if sess.ID != id {
			kept = append(kept, sess)
		}
	}
	s.sessions = kept

	return s.persist(ctx)
}

func (s *SessionStore) persist(ctx context.Context) error {
	data, err := json.Marshal(s.sessions)
	if err != nil {
		return fmt.Errorf("failed to encode sessions: %w", err)
	}
	if err := s.storage.Set(ctx, SessionsKey, data); err != nil {
		return fmt.Errorf("failed to persist sessions: %w", err)
	}
	return nil
}
