package database

import (
	"context"
	"errors"

	"echochats/models"
	"echochats/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserStore struct {
	coll *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{coll: db.Collection(UsersCollection)}
}

func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}

	_, err := s.coll.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrUsernameTaken
	}
	return err
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.coll.FindOne(ctx, bson.M{"username": username}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserStore) UpdateProfilePic(ctx context.Context, username, profilePic string) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$set": bson.M{"profile_pic": profilePic}},
	)
	return err
}

func (s *UserStore) Delete(ctx context.Context, username string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"username": username})
	return err
}
