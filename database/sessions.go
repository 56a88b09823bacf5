package database

import (
	"context"
	"errors"
	"time"

	"echochats/models"
	"echochats/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SessionStore keeps login sessions. Expired documents are dropped by the
// TTL index on expires_at; Get also filters them since the TTL monitor only
// runs about once a minute.
type SessionStore struct {
	coll *mongo.Collection
}

func NewSessionStore(db *mongo.Database) *SessionStore {
	return &SessionStore{coll: db.Collection(SessionsCollection)}
}

func (s *SessionStore) Create(ctx context.Context, sess *models.Session) error {
	_, err := s.coll.InsertOne(ctx, sess)
	return err
}

func (s *SessionStore) Get(ctx context.Context, id string) (*models.Session, error) {
	var sess models.Session
	filter := bson.M{"_id": id, "expires_at": bson.M{"$gt": time.Now()}}
	err := s.coll.FindOne(ctx, filter).Decode(&sess)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *SessionStore) DeleteByUsername(ctx context.Context, username string) error {
	_, err := s.coll.DeleteMany(ctx, bson.M{"username": username})
	return err
}
