package memory

import (
	"context"
	"sync"

	"echochats/models"
	"echochats/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentMemoryStorage keeps comments in a slice so that listing follows
// insertion order, like a MongoDB find without a sort.
type CommentMemoryStorage struct {
	mu       sync.Mutex
	comments []*models.Comment
}

func NewCommentMemoryStorage() *CommentMemoryStorage {
	return &CommentMemoryStorage{}
}

func (s *CommentMemoryStorage) List(ctx context.Context, skip, limit int64) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := int64(len(s.comments))
	if skip < 0 {
		skip = 0
	}
	if skip >= total || limit <= 0 {
		return []models.Comment{}, nil
	}

	end := skip + limit
	if end > total {
		end = total
	}

	out := make([]models.Comment, 0, end-skip)
	for _, c := range s.comments[skip:end] {
		out = append(out, copyComment(c))
	}
	return out, nil
}

func (s *CommentMemoryStorage) Create(ctx context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.Replies == nil {
		c.Replies = []models.Reply{}
	}
	stored := copyComment(c)
	s.comments = append(s.comments, &stored)
	return nil
}

func (s *CommentMemoryStorage) Get(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.find(id)
	if c == nil {
		return nil, store.ErrNotFound
	}
	out := copyComment(c)
	return &out, nil
}

func (s *CommentMemoryStorage) Like(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c := s.find(id); c != nil {
		c.Likes++
	}
	return nil
}

func (s *CommentMemoryStorage) AddReply(ctx context.Context, id primitive.ObjectID, r models.Reply) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c := s.find(id); c != nil {
		c.Replies = append(c.Replies, r)
	}
	return nil
}

func (s *CommentMemoryStorage) DeleteOwned(ctx context.Context, id primitive.ObjectID, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.comments {
		if c.ID == id && c.Username == username {
			s.comments = append(s.comments[:i], s.comments[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *CommentMemoryStorage) find(id primitive.ObjectID) *models.Comment {
	for _, c := range s.comments {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func copyComment(c *models.Comment) models.Comment {
	out := *c
	out.Replies = append([]models.Reply{}, c.Replies...)
	return out
}
