package database

import (
	"context"
	"errors"

	"echochats/models"
	"echochats/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CommentStore struct {
	coll *mongo.Collection
}

func NewCommentStore(db *mongo.Database) *CommentStore {
	return &CommentStore{coll: db.Collection(CommentsCollection)}
}

// List pages through the collection in natural order; no sort is applied.
func (s *CommentStore) List(ctx context.Context, skip, limit int64) ([]models.Comment, error) {
	opts := options.Find().SetSkip(skip).SetLimit(limit)

	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	for i := range comments {
		if comments[i].Replies == nil {
			comments[i].Replies = []models.Reply{}
		}
	}
	return comments, nil
}

func (s *CommentStore) Create(ctx context.Context, c *models.Comment) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.Replies == nil {
		c.Replies = []models.Reply{}
	}

	_, err := s.coll.InsertOne(ctx, c)
	return err
}

func (s *CommentStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var c models.Comment
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CommentStore) Like(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"likes": 1}})
	return err
}

func (s *CommentStore) AddReply(ctx context.Context, id primitive.ObjectID, r models.Reply) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$push": bson.M{"replies": r}})
	return err
}

// DeleteOwned matches on both id and username so the ownership check and the
// delete happen in one operation.
func (s *CommentStore) DeleteOwned(ctx context.Context, id primitive.ObjectID, username string) (bool, error) {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id, "username": username})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
