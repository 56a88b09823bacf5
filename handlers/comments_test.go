package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"echochats/models"
	"echochats/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestListComments_Pagination(t *testing.T) {
	env := setupTestEnv(t)
	for i := 0; i < 7; i++ {
		env.addComment(t, "alice", fmt.Sprintf("comment %d", i))
	}

	var page1 []models.Comment
	resp := env.serve(httptest.NewRequest(http.MethodGet, "/api/comments", nil), "")
	require.Equal(t, http.StatusOK, resp.Code)
	decode(t, resp, &page1)
	require.Len(t, page1, CommentsPerPage)
	for i, c := range page1 {
		assert.Equal(t, fmt.Sprintf("comment %d", i), c.Content)
	}

	var page2 []models.Comment
	resp = env.serve(httptest.NewRequest(http.MethodGet, "/api/comments?page=2", nil), "")
	require.Equal(t, http.StatusOK, resp.Code)
	decode(t, resp, &page2)
	require.Len(t, page2, 2)
	assert.Equal(t, "comment 5", page2[0].Content)
	assert.Equal(t, "comment 6", page2[1].Content)

	var page3 []models.Comment
	resp = env.serve(httptest.NewRequest(http.MethodGet, "/api/comments?page=3", nil), "")
	require.Equal(t, http.StatusOK, resp.Code)
	decode(t, resp, &page3)
	assert.Empty(t, page3)

	for _, page := range []string{"1000000", "3689348814741910324", "9223372036854775807"} {
		resp = env.serve(httptest.NewRequest(http.MethodGet, "/api/comments?page="+page, nil), "")
		require.Equal(t, http.StatusOK, resp.Code, "page %s", page)
		assert.JSONEq(t, `[]`, resp.Body.String(), "page %s", page)
	}

	var clamped []models.Comment
	resp = env.serve(httptest.NewRequest(http.MethodGet, "/api/comments?page=0", nil), "")
	require.Equal(t, http.StatusOK, resp.Code)
	decode(t, resp, &clamped)
	assert.Equal(t, page1, clamped)
}

func TestListComments_InvalidPage(t *testing.T) {
	env := setupTestEnv(t)

	resp := env.serve(httptest.NewRequest(http.MethodGet, "/api/comments?page=abc", nil), "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.JSONEq(t, `{"error":"Invalid page"}`, resp.Body.String())
}

func TestCreateComment(t *testing.T) {
	env := setupTestEnv(t)
	env.addUser(t, "alice", "pw", "/static/uploads/alice.png")

	body := map[string]string{"content": "hello"}

	resp := env.serve(testutils.JSONRequest(t, http.MethodPost, "/api/comments", body), "")
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.JSONEq(t, `{"error":"Login required"}`, resp.Body.String())

	resp = env.serve(testutils.JSONRequest(t, http.MethodPost, "/api/comments", body), "alice")
	require.Equal(t, http.StatusOK, resp.Code)

	var out struct {
		Message string         `json:"message"`
		Comment models.Comment `json:"comment"`
	}
	decode(t, resp, &out)
	assert.Equal(t, "Comment added", out.Message)
	assert.False(t, out.Comment.ID.IsZero())
	assert.Equal(t, "alice", out.Comment.Username)
	assert.Equal(t, "hello", out.Comment.Content)
	assert.Equal(t, int64(0), out.Comment.Likes)
	assert.Empty(t, out.Comment.Replies)
	assert.Equal(t, "/static/uploads/alice.png", out.Comment.ProfilePic)

	stored, err := env.comments.Get(context.Background(), out.Comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", stored.Content)
}

func TestCreateComment_Rejects(t *testing.T) {
	env := setupTestEnv(t)
	env.addUser(t, "alice", "pw", "")

	resp := env.serve(testutils.JSONRequest(t, http.MethodPost, "/api/comments", map[string]string{"content": "  "}), "alice")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.JSONEq(t, `{"error":"Comment content required"}`, resp.Body.String())

	// A session whose user record is gone cannot post.
	resp = env.serve(testutils.JSONRequest(t, http.MethodPost, "/api/comments", map[string]string{"content": "hi"}), "ghost")
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestLikeComment(t *testing.T) {
	env := setupTestEnv(t)
	c := env.addComment(t, "alice", "likeable")

	const n = 4
	for i := 0; i < n; i++ {
		// Same anonymous caller every time; likes are not deduplicated.
		resp := env.serve(testutils.JSONRequest(t, http.MethodPost, "/api/like_comment", map[string]string{"comment_id": c.ID.Hex()}), "")
		require.Equal(t, http.StatusOK, resp.Code)
		assert.JSONEq(t, `{"message":"Liked"}`, resp.Body.String())
	}

	stored, err := env.comments.Get(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(n), stored.Likes)
}

func TestLikeComment_Rejects(t *testing.T) {
	env := setupTestEnv(t)

	resp := env.serve(testutils.JSONRequest(t, http.MethodPost, "/api/like_comment", map[string]string{}), "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.JSONEq(t, `{"error":"No comment ID"}`, resp.Body.String())

	resp = env.serve(testutils.JSONRequest(t, http.MethodPost, "/api/like_comment", map[string]string{"comment_id": "nope"}), "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.JSONEq(t, `{"error":"Invalid comment ID"}`, resp.Body.String())

	resp = env.serve(testutils.JSONRequest(t, http.MethodPost, "/api/like_comment", map[string]string{"comment_id": primitive.NewObjectID().Hex()}), "")
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestDeleteComment(t *testing.T) {
	env := setupTestEnv(t)
	c := env.addComment(t, "alice", "mine")
	body := map[string]string{"comment_id": c.ID.Hex()}

	resp := env.serve(testutils.JSONRequest(t, http.MethodPost, "/api/delete_comment", body), "")
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = env.serve(testutils.JSONRequest(t, http.MethodPost, "/api/delete_comment", body), "bob")
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.JSONEq(t, `{"error":"Not authorized"}`, resp.Body.String())
	_, err := env.comments.Get(context.Background(), c.ID)
	require.NoError(t, err)

	resp = env.serve(testutils.JSONRequest(t, http.MethodPost, "/api/delete_comment", body), "alice")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"message":"Deleted"}`, resp.Body.String())
	_, err = env.comments.Get(context.Background(), c.ID)
	assert.Error(t, err)

	resp = env.serve(testutils.JSONRequest(t, http.MethodPost, "/api/delete_comment", body), "alice")
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestReplyToComment(t *testing.T) {
	env := setupTestEnv(t)
	env.addUser(t, "bob", "pw", "/static/uploads/bob-v1.png")
	c := env.addComment(t, "alice", "question")

	body := map[string]string{"comment_id": c.ID.Hex(), "reply": "answer"}

	resp := env.serve(testutils.JSONRequest(t, http.MethodPost, "/api/reply", body), "")
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = env.serve(testutils.JSONRequest(t, http.MethodPost, "/api/reply", body), "bob")
	require.Equal(t, http.StatusOK, resp.Code)

	var out struct {
		Message string       `json:"message"`
		Reply   models.Reply `json:"reply"`
	}
	decode(t, resp, &out)
	assert.Equal(t, "Reply added", out.Message)
	assert.Equal(t, models.Reply{Username: "bob", Content: "answer", ProfilePic: "/static/uploads/bob-v1.png"}, out.Reply)

	stored, err := env.comments.Get(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, stored.Replies, 1)
	assert.Equal(t, out.Reply, stored.Replies[0])

	// Later picture changes do not rewrite earlier replies.
	require.NoError(t, env.users.UpdateProfilePic(context.Background(), "bob", "/static/uploads/bob-v2.png"))
	resp = env.serve(testutils.JSONRequest(t, http.MethodPost, "/api/reply", body), "bob")
	require.Equal(t, http.StatusOK, resp.Code)

	stored, err = env.comments.Get(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, stored.Replies, 2)
	assert.Equal(t, "/static/uploads/bob-v1.png", stored.Replies[0].ProfilePic)
	assert.Equal(t, "/static/uploads/bob-v2.png", stored.Replies[1].ProfilePic)
}

func TestReplyToComment_Rejects(t *testing.T) {
	env := setupTestEnv(t)
	env.addUser(t, "bob", "pw", "")

	resp := env.serve(testutils.JSONRequest(t, http.MethodPost, "/api/reply", map[string]string{"reply": "x"}), "bob")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.JSONEq(t, `{"error":"No comment ID"}`, resp.Body.String())

	id := primitive.NewObjectID().Hex()
	resp = env.serve(testutils.JSONRequest(t, http.MethodPost, "/api/reply", map[string]string{"comment_id": id}), "bob")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.JSONEq(t, `{"error":"Reply content required"}`, resp.Body.String())

	resp = env.serve(testutils.JSONRequest(t, http.MethodPost, "/api/reply", map[string]string{"comment_id": id, "reply": "x"}), "bob")
	assert.Equal(t, http.StatusOK, resp.Code)
}
