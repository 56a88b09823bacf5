package memory

import (
	"context"
	"sync"
	"time"

	"echochats/models"
	"echochats/store"
)

type SessionMemoryStorage struct {
	mu       sync.Mutex
	sessions map[string]models.Session
	now      func() time.Time
}

func NewSessionMemoryStorage() *SessionMemoryStorage {
	return &SessionMemoryStorage{
		sessions: make(map[string]models.Session),
		now:      time.Now,
	}
}

func (s *SessionMemoryStorage) Create(ctx context.Context, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.ID] = *sess
	return nil
}

func (s *SessionMemoryStorage) Get(ctx context.Context, id string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if sess.Expired(s.now()) {
		delete(s.sessions, id)
		return nil, store.ErrNotFound
	}
	return &sess, nil
}

func (s *SessionMemoryStorage) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

func (s *SessionMemoryStorage) DeleteByUsername(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sess := range s.sessions {
		if sess.Username == username {
			delete(s.sessions, id)
		}
	}
	return nil
}
