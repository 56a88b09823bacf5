// Package store defines the persistence contracts used by the handlers.
// database provides the MongoDB implementation and store/memory an
// in-process one.
package store

import (
	"context"
	"errors"

	"echochats/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrUsernameTaken = errors.New("username already exists")
)

type UserStore interface {
	// Create inserts u and fills in its ID. It returns ErrUsernameTaken when
	// the username is already registered.
	Create(ctx context.Context, u *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateProfilePic(ctx context.Context, username, profilePic string) error
	Delete(ctx context.Context, username string) error
}

type CommentStore interface {
	// List returns up to limit comments in insertion order starting at skip.
	List(ctx context.Context, skip, limit int64) ([]models.Comment, error)
	Create(ctx context.Context, c *models.Comment) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	// Like and AddReply are no-ops for unknown ids.
	Like(ctx context.Context, id primitive.ObjectID) error
	AddReply(ctx context.Context, id primitive.ObjectID, r models.Reply) error
	// DeleteOwned removes the comment only if it belongs to username and
	// reports whether anything was removed.
	DeleteOwned(ctx context.Context, id primitive.ObjectID, username string) (bool, error)
}

type SessionStore interface {
	Create(ctx context.Context, s *models.Session) error
	// Get returns ErrNotFound for unknown and expired sessions.
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteByUsername(ctx context.Context, username string) error
}
