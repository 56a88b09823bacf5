package database

import (
	"context"
	"testing"
	"time"

	"echochats/models"
	"echochats/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newMock(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func TestEnsureIndexes(t *testing.T) {
	mt := newMock(t)

	mt.Run("creates user and session indexes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse())
		assert.NoError(mt, EnsureIndexes(context.Background(), mt.DB))
	})

	mt.Run("reports index failures", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    85,
			Name:    "IndexOptionsConflict",
			Message: "index exists with different options",
		}))
		err := EnsureIndexes(context.Background(), mt.DB)
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "users.username index")
	})
}

func TestUserStore(t *testing.T) {
	mt := newMock(t)
	ctx := context.Background()
	ns := "EchoChats." + UsersCollection

	mt.Run("create assigns an id", func(mt *mtest.T) {
		s := NewUserStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		u := &models.User{Email: "alice@example.com", Username: "alice", Password: "hash"}
		require.NoError(mt, s.Create(ctx, u))
		assert.False(mt, u.ID.IsZero())
	})

	mt.Run("duplicate username", func(mt *mtest.T) {
		s := NewUserStore(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: EchoChats.users index: username_1",
		}))

		err := s.Create(ctx, &models.User{Username: "alice"})
		assert.ErrorIs(mt, err, store.ErrUsernameTaken)
	})

	mt.Run("find by username", func(mt *mtest.T) {
		s := NewUserStore(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "email", Value: "alice@example.com"},
			{Key: "username", Value: "alice"},
			{Key: "password", Value: "hash"},
			{Key: "profile_pic", Value: "/static/uploads/a.png"},
		}))

		u, err := s.FindByUsername(ctx, "alice")
		require.NoError(mt, err)
		assert.Equal(mt, id, u.ID)
		assert.Equal(mt, "hash", u.Password)
		assert.Equal(mt, "/static/uploads/a.png", u.ProfilePic)
	})

	mt.Run("unknown username", func(mt *mtest.T) {
		s := NewUserStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := s.FindByUsername(ctx, "nobody")
		assert.ErrorIs(mt, err, store.ErrNotFound)
	})

	mt.Run("update and delete", func(mt *mtest.T) {
		s := NewUserStore(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)

		assert.NoError(mt, s.UpdateProfilePic(ctx, "alice", "/static/uploads/b.png"))
		assert.NoError(mt, s.Delete(ctx, "alice"))
	})
}

func TestCommentStore(t *testing.T) {
	mt := newMock(t)
	ctx := context.Background()
	ns := "EchoChats." + CommentsCollection

	mt.Run("list decodes a page", func(mt *mtest.T) {
		s := NewCommentStore(mt.DB)
		first, second := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: first},
				{Key: "username", Value: "alice"},
				{Key: "content", Value: "hello"},
				{Key: "likes", Value: int32(2)},
				{Key: "replies", Value: bson.A{
					bson.D{{Key: "username", Value: "bob"}, {Key: "content", Value: "hi"}, {Key: "likes", Value: 0}},
				}},
				{Key: "profile_pic", Value: "/a.png"},
			},
			bson.D{
				{Key: "_id", Value: second},
				{Key: "username", Value: "bob"},
				{Key: "content", Value: "no replies field"},
				{Key: "likes", Value: 0},
			},
		))

		comments, err := s.List(ctx, 0, 5)
		require.NoError(mt, err)
		require.Len(mt, comments, 2)
		assert.Equal(mt, first, comments[0].ID)
		assert.Equal(mt, int64(2), comments[0].Likes)
		require.Len(mt, comments[0].Replies, 1)
		assert.Equal(mt, "bob", comments[0].Replies[0].Username)
		assert.NotNil(mt, comments[1].Replies)
		assert.Empty(mt, comments[1].Replies)
	})

	mt.Run("empty page", func(mt *mtest.T) {
		s := NewCommentStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		comments, err := s.List(ctx, 50, 5)
		require.NoError(mt, err)
		assert.NotNil(mt, comments)
		assert.Empty(mt, comments)
	})

	mt.Run("create initialises replies", func(mt *mtest.T) {
		s := NewCommentStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		c := &models.Comment{Username: "alice", Content: "hello"}
		require.NoError(mt, s.Create(ctx, c))
		assert.False(mt, c.ID.IsZero())
		assert.NotNil(mt, c.Replies)
	})

	mt.Run("get unknown comment", func(mt *mtest.T) {
		s := NewCommentStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := s.Get(ctx, primitive.NewObjectID())
		assert.ErrorIs(mt, err, store.ErrNotFound)
	})

	mt.Run("like and reply on unknown id are not errors", func(mt *mtest.T) {
		s := NewCommentStore(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
		)

		id := primitive.NewObjectID()
		assert.NoError(mt, s.Like(ctx, id))
		assert.NoError(mt, s.AddReply(ctx, id, models.Reply{Username: "bob", Content: "hi"}))
	})

	mt.Run("delete owned", func(mt *mtest.T) {
		s := NewCommentStore(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)

		id := primitive.NewObjectID()
		deleted, err := s.DeleteOwned(ctx, id, "alice")
		require.NoError(mt, err)
		assert.True(mt, deleted)

		deleted, err = s.DeleteOwned(ctx, id, "mallory")
		require.NoError(mt, err)
		assert.False(mt, deleted)
	})
}

func TestSessionStore(t *testing.T) {
	mt := newMock(t)
	ctx := context.Background()
	ns := "EchoChats." + SessionsCollection

	mt.Run("create and get", func(mt *mtest.T) {
		s := NewSessionStore(mt.DB)
		expires := time.Now().Add(time.Hour).Truncate(time.Millisecond)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
				{Key: "_id", Value: "sid"},
				{Key: "username", Value: "alice"},
				{Key: "expires_at", Value: expires},
			}),
		)

		require.NoError(mt, s.Create(ctx, &models.Session{ID: "sid", Username: "alice", ExpiresAt: expires}))
		sess, err := s.Get(ctx, "sid")
		require.NoError(mt, err)
		assert.Equal(mt, "alice", sess.Username)
		assert.True(mt, expires.Equal(sess.ExpiresAt))
	})

	mt.Run("missing session", func(mt *mtest.T) {
		s := NewSessionStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := s.Get(ctx, "gone")
		assert.ErrorIs(mt, err, store.ErrNotFound)
	})

	mt.Run("delete", func(mt *mtest.T) {
		s := NewSessionStore(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}),
		)

		assert.NoError(mt, s.Delete(ctx, "sid"))
		assert.NoError(mt, s.DeleteByUsername(ctx, "alice"))
	})
}
