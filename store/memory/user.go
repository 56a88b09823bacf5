package memory

import (
	"context"
	"sync"

	"echochats/models"
	"echochats/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserMemoryStorage struct {
	mu    sync.Mutex
	users map[string]models.User // username -> user
}

func NewUserMemoryStorage() *UserMemoryStorage {
	return &UserMemoryStorage{users: make(map[string]models.User)}
}

func (s *UserMemoryStorage) Create(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.Username]; ok {
		return store.ErrUsernameTaken
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	s.users[u.Username] = *u
	return nil
}

func (s *UserMemoryStorage) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *UserMemoryStorage) UpdateProfilePic(ctx context.Context, username, profilePic string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return nil
	}
	u.ProfilePic = profilePic
	s.users[username] = u
	return nil
}

func (s *UserMemoryStorage) Delete(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.users, username)
	return nil
}

// Count is used by tests to check that no duplicate records were written.
func (s *UserMemoryStorage) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}
