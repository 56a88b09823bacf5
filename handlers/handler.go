package handlers

import (
	"context"
	"net/http"
	"time"

	"echochats/images"
	"echochats/middleware"
	"echochats/session"
	"echochats/store"
	"echochats/utils"

	"github.com/gin-gonic/gin"
)

const (
	CommentsPerPage = 5

	dbTimeout     = 10 * time.Second
	uploadTimeout = 30 * time.Second
)

// Handler carries the collaborators every route needs. It is built once in
// main and shared by all requests.
type Handler struct {
	Users      store.UserStore
	Comments   store.CommentStore
	Sessions   *session.Manager
	Images     images.Store
	HeaderText string
}

func New(users store.UserStore, comments store.CommentStore, sessions *session.Manager, imgs images.Store, headerText string) *Handler {
	return &Handler{
		Users:      users,
		Comments:   comments,
		Sessions:   sessions,
		Images:     imgs,
		HeaderText: headerText,
	}
}

// render executes an HTML page with the fields the layout expects.
func (h *Handler) render(c *gin.Context, page, title string, extra gin.H) {
	username, _ := middleware.CurrentUser(c)
	data := gin.H{
		"Title":    title,
		"Username": username,
		"Flash":    session.PopFlash(c),
	}
	for k, v := range extra {
		data[k] = v
	}
	c.HTML(http.StatusOK, page, data)
}

func (h *Handler) redirectWithFlash(c *gin.Context, location, message string) {
	session.SetFlash(c, message)
	c.Redirect(http.StatusFound, location)
}

func (h *Handler) pageError(c *gin.Context, err error, message string) {
	username, _ := middleware.CurrentUser(c)
	utils.LogErrorWithUser(username, err, message)
	c.String(http.StatusInternalServerError, message)
}

func (h *Handler) apiError(c *gin.Context, err error, message string) {
	username, _ := middleware.CurrentUser(c)
	utils.LogErrorWithUser(username, err, message)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}

// discardUpload removes a picture saved for a request that then failed.
func (h *Handler) discardUpload(ctx context.Context, url string) {
	remover, ok := h.Images.(images.Remover)
	if !ok {
		return
	}
	if err := remover.Remove(ctx, url); err != nil {
		utils.LogError(err, "Failed to remove unused upload")
	}
}
