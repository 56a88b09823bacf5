package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"echochats/middleware"
	"echochats/models"
	"echochats/store"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreateCommentRequest struct {
	Content string `json:"content"`
}

type CommentIDRequest struct {
	CommentID string `json:"comment_id"`
}

type ReplyRequest struct {
	CommentID string `json:"comment_id"`
	Reply     string `json:"reply"`
}

func (h *Handler) CommentsPage(c *gin.Context) {
	h.render(c, "comments.html", h.HeaderText, gin.H{"HeaderText": h.HeaderText})
}

// ListComments returns one page of CommentsPerPage comments. A short page
// means the end of the board.
func (h *Handler) ListComments(c *gin.Context) {
	page, err := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page"})
		return
	}
	if page < 1 {
		page = 1
	}
	// Pages whose offset does not fit in an int64 are past any real board.
	if page > math.MaxInt64/CommentsPerPage {
		c.JSON(http.StatusOK, []models.Comment{})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	comments, err := h.Comments.List(ctx, (page-1)*CommentsPerPage, CommentsPerPage)
	if err != nil {
		h.apiError(c, err, "Failed to fetch comments")
		return
	}

	c.JSON(http.StatusOK, comments)
}

func (h *Handler) CreateComment(c *gin.Context) {
	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment content required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	author, ok := h.currentUser(ctx, c)
	if !ok {
		return
	}

	comment := &models.Comment{
		Username:   author.Username,
		Content:    req.Content,
		Likes:      0,
		Replies:    []models.Reply{},
		ProfilePic: author.ProfilePic,
	}
	if err := h.Comments.Create(ctx, comment); err != nil {
		h.apiError(c, err, "Failed to create comment")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment added", "comment": comment})
}

// LikeComment needs no session and does not deduplicate: every call adds one.
func (h *Handler) LikeComment(c *gin.Context) {
	var req CommentIDRequest
	_ = c.ShouldBindJSON(&req)

	id, ok := parseCommentID(c, req.CommentID)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	if err := h.Comments.Like(ctx, id); err != nil {
		h.apiError(c, err, "Failed to like comment")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Liked"})
}

func (h *Handler) DeleteComment(c *gin.Context) {
	var req CommentIDRequest
	_ = c.ShouldBindJSON(&req)

	id, ok := parseCommentID(c, req.CommentID)
	if !ok {
		return
	}

	username, _ := middleware.CurrentUser(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	deleted, err := h.Comments.DeleteOwned(ctx, id, username)
	if err != nil {
		h.apiError(c, err, "Failed to delete comment")
		return
	}
	if !deleted {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}

// ReplyToComment appends a reply. An id that matches no comment is accepted
// and changes nothing.
func (h *Handler) ReplyToComment(c *gin.Context) {
	var req ReplyRequest
	_ = c.ShouldBindJSON(&req)

	id, ok := parseCommentID(c, req.CommentID)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Reply) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reply content required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	author, ok := h.currentUser(ctx, c)
	if !ok {
		return
	}

	reply := models.Reply{
		Username:   author.Username,
		Content:    req.Reply,
		Likes:      0,
		ProfilePic: author.ProfilePic,
	}
	if err := h.Comments.AddReply(ctx, id, reply); err != nil {
		h.apiError(c, err, "Failed to add reply")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reply added", "reply": reply})
}

// currentUser loads the session's user record, whose profile picture is
// copied onto new comments and replies. It writes the error response itself.
func (h *Handler) currentUser(ctx context.Context, c *gin.Context) (*models.User, bool) {
	username, _ := middleware.CurrentUser(c)

	user, err := h.Users.FindByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Login required"})
		return nil, false
	}
	if err != nil {
		h.apiError(c, err, "Failed to load user")
		return nil, false
	}
	return user, true
}

func parseCommentID(c *gin.Context, raw string) (primitive.ObjectID, bool) {
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No comment ID"})
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID"})
		return primitive.NilObjectID, false
	}
	return id, true
}
